package rel

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rtm0/mdk2nc/internal/grid"
)

// Column positions within a .rel data row.
const (
	latCol = 0
	lonCol = 1
	uCol   = 5
	vCol   = 6

	minFields = vCol + 1
)

// ParseError describes a data row that could not be turned into an
// observation.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	ErrFieldCount = errors.New("too few fields")
	ErrNotNumeric = errors.New("field is not numeric")
)

// Options control how a Scanner treats its input.
type Options struct {
	// Strict makes the first malformed row abort the scan. Otherwise
	// malformed rows are logged and skipped.
	Strict bool
}

// Scanner reads observations from a Medslik-II .rel export one data row
// at a time.
//
// Lines containing lowercase letters are dropped, and so is the first line
// left after that, which is the column header. Fields are separated by
// runs of whitespace.
type Scanner struct {
	logger  *slog.Logger
	opts    Options
	sc      *bufio.Scanner
	closer  io.Closer
	line    int
	header  bool
	obs     grid.Observation
	rows    int
	skipped int
	err     error
}

// NewScanner creates a new .rel scanner reading from r. A nil logger
// disables the warnings about skipped rows.
func NewScanner(logger *slog.Logger, r io.Reader, opts Options) *Scanner {
	return &Scanner{
		logger: logger,
		opts:   opts,
		sc:     bufio.NewScanner(r),
	}
}

// Open creates a new .rel scanner reading the named file.
func Open(logger *slog.Logger, path string, opts Options) (*Scanner, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := NewScanner(logger, f, opts)
	s.closer = f
	return s, nil
}

// Close closes the underlying file, if the scanner opened one.
func (s *Scanner) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Scan advances to the next observation. It returns false at the end of
// the input or when an error stops the scan; Err tells them apart.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for s.sc.Scan() {
		s.line++
		text := s.sc.Text()
		if hasLower(text) {
			continue
		}
		if !s.header {
			s.header = true
			continue
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		o, err := parseRow(fields)
		if err != nil {
			perr := &ParseError{Line: s.line, Text: text, Err: err}
			if s.opts.Strict {
				s.err = perr
				return false
			}
			s.skipped++
			if s.logger != nil {
				s.logger.Warn("Skipping malformed row", "err", perr)
			}
			continue
		}
		s.obs = o
		s.rows++
		return true
	}
	s.err = s.sc.Err()
	return false
}

// Observation returns the observation read by the last Scan call.
func (s *Scanner) Observation() grid.Observation {
	return s.obs
}

// Err returns the error that stopped the scan, if any.
func (s *Scanner) Err() error {
	return s.err
}

// Summary returns the summary information about the scan suitable for
// logging.
func (s *Scanner) Summary() []any {
	return []any{
		"lines", s.line,
		"rows", s.rows,
		"skipped", s.skipped,
	}
}

// Skipped returns the number of malformed rows skipped so far.
func (s *Scanner) Skipped() int {
	return s.skipped
}

func parseRow(fields []string) (grid.Observation, error) {
	if len(fields) < minFields {
		return grid.Observation{}, fmt.Errorf("%w: got %d, want at least %d", ErrFieldCount, len(fields), minFields)
	}
	for _, col := range []int{latCol, lonCol} {
		if _, err := parseFinite(fields, col); err != nil {
			return grid.Observation{}, err
		}
	}
	u, err := parseFinite(fields, uCol)
	if err != nil {
		return grid.Observation{}, err
	}
	v, err := parseFinite(fields, vCol)
	if err != nil {
		return grid.Observation{}, err
	}
	return grid.Observation{
		Lat:    fields[latCol],
		Lon:    fields[lonCol],
		Values: []float64{u, v},
	}, nil
}

// parseFinite parses fields[col]. NaN is reserved for cells without an
// observation, so NAN and INF tokens are rejected too.
func parseFinite(fields []string, col int) (float64, error) {
	f, err := strconv.ParseFloat(fields[col], 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: column %d", ErrNotNumeric, col)
	}
	return f, nil
}

func hasLower(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			return true
		}
	}
	return false
}

// Densify reads every observation from s into a new two-channel grid. A
// scan error aborts the whole read and no grid is returned.
func Densify(logger *slog.Logger, s *Scanner) (*grid.Grid, error) {
	d := grid.NewDensifier(logger, 2)
	for s.Scan() {
		d.Add(s.Observation())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if logger != nil {
		logger.Info("Read .rel input", append(s.Summary(), "duplicates", d.Duplicates())...)
	}
	return d.Grid(), nil
}
