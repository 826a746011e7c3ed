package dump

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rtm0/mdk2nc/internal/grid"
)

// ErrUnknownFormat is returned for a format not listed by Formats.
var ErrUnknownFormat = errors.New("unknown dump format")

// measurement is the InfluxDB measurement name of dumped cells.
const measurement = "mdk2nc"

// cell is one grid position together with the channel values found there.
type cell struct {
	ts     time.Time
	lat    string
	lon    string
	values []float64
}

type cellToTextFunc func(*strings.Builder, *cell, []string)

var cellToTextFuncs = map[string]cellToTextFunc{
	"csv":    cellToCSV,
	"influx": cellToInfluxDB,
}

var headerFuncs = map[string]func([]string) string{
	"csv": csvHeader,
}

// Formats returns the supported format names.
func Formats() []string {
	names := make([]string, 0, len(cellToTextFuncs))
	for name := range cellToTextFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write writes every cell of g as a line of text in the given format.
// names labels the channels.
func Write(w io.Writer, g *grid.Grid, ts time.Time, format string, names []string) error {
	cellToText := cellToTextFuncs[format]
	if cellToText == nil {
		return fmt.Errorf("%w %q, want one of %s", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
	}
	if len(names) != len(g.Channels) {
		return fmt.Errorf("got %d channel names for %d channels", len(names), len(g.Channels))
	}

	bw := bufio.NewWriter(w)
	if header := headerFuncs[format]; header != nil {
		bw.WriteString(header(names))
		bw.WriteString("\n")
	}
	var sb strings.Builder
	c := cell{ts: ts, values: make([]float64, len(g.Channels))}
	for i, la := range g.Lats {
		for j, lo := range g.Lons {
			c.lat, c.lon = la, lo
			for k, ch := range g.Channels {
				c.values[k] = ch[i][j]
			}
			sb.Reset()
			cellToText(&sb, &c, names)
			if sb.Len() == 0 {
				continue
			}
			sb.WriteString("\n")
			if _, err := bw.WriteString(sb.String()); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

func csvHeader(names []string) string {
	return "time,lat,lon," + strings.Join(names, ",")
}

// cellToCSV converts a cell into a CSV record. Missing values are left
// empty.
func cellToCSV(sb *strings.Builder, c *cell, _ []string) {
	sb.WriteString(c.ts.Format(time.RFC3339))
	sb.WriteString(",")
	sb.WriteString(c.lat)
	sb.WriteString(",")
	sb.WriteString(c.lon)
	for _, v := range c.values {
		sb.WriteString(",")
		if !grid.IsMissing(v) {
			sb.WriteString(formatFloat(v))
		}
	}
}

// cellToInfluxDB converts a cell into InfluxDB line protocol. Missing values
// are omitted, and a cell with no values produces no line.
func cellToInfluxDB(sb *strings.Builder, c *cell, names []string) {
	n := 0
	for k, v := range c.values {
		if grid.IsMissing(v) || math.IsInf(v, 0) {
			continue
		}
		if n == 0 {
			fmt.Fprintf(sb, "%s,lat=%s,lon=%s ", measurement, c.lat, c.lon)
		} else {
			sb.WriteString(",")
		}
		sb.WriteString(names[k])
		sb.WriteString("=")
		sb.WriteString(formatFloat(v))
		n++
	}
	if n > 0 {
		fmt.Fprintf(sb, " %d", c.ts.UnixMilli())
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
