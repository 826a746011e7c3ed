package ncfile

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/cdf"
	"github.com/batchatco/go-native-netcdf/netcdf/util"

	"github.com/rtm0/mdk2nc/internal/cftime"
	"github.com/rtm0/mdk2nc/internal/grid"
)

// DefaultChannels are the variable names Medslik-II expects for the two
// wind components.
var DefaultChannels = []string{"U10M", "V10M"}

var (
	// ErrEmptyGrid is returned when there is nothing to write.
	ErrEmptyGrid = errors.New("grid has no cells")
	// ErrChannelName is returned for a channel name that is empty, repeated
	// or taken by a coordinate variable.
	ErrChannelName = errors.New("invalid channel name")
)

// WriteOptions describe the single time slice being written.
type WriteOptions struct {
	// Time is the time of the slice.
	Time time.Time
	// Channels names the variable of each grid channel. Defaults to
	// DefaultChannels.
	Channels []string
	// Source is recorded in the global attributes, typically the input
	// file name.
	Source string
}

// Write writes g to a NetCDF file at path with lat, lon and time
// dimensions and one (time, lat, lon) variable per channel.
//
// The file is first written next to path and renamed on success, so path
// is left untouched when writing fails.
func Write(logger *slog.Logger, path string, g *grid.Grid, opts WriteOptions) error {
	if g.Empty() {
		return ErrEmptyGrid
	}
	names := opts.Channels
	if len(names) == 0 {
		names = DefaultChannels
	}
	if len(names) != len(g.Channels) {
		return fmt.Errorf("got %d channel names for %d channels", len(names), len(g.Channels))
	}
	if err := checkNames(names); err != nil {
		return err
	}
	lats, err := axisValues(g.Lats)
	if err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	lons, err := axisValues(g.Lons)
	if err != nil {
		return fmt.Errorf("lon: %w", err)
	}

	tmpPath := path + ".part"
	os.Remove(tmpPath)
	defer os.Remove(tmpPath)

	cw, err := cdf.OpenWriter(tmpPath)
	if err != nil {
		return err
	}
	if err := writeVars(cw, g, names, lats, lons, opts); err != nil {
		cw.Close()
		return err
	}
	if err := cw.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	nla, nlo := g.Shape()
	logger.Info("Wrote NetCDF file", "path", path, "laCnt", nla, "loCnt", nlo,
		"vars", names, "time", opts.Time.Format(time.RFC3339))
	return nil
}

// varWriter is the part of the CDF writer used to lay out a file.
type varWriter interface {
	AddVar(name string, vr api.Variable) error
	AddGlobalAttrs(attrs api.AttributeMap) error
}

func writeVars(cw varWriter, g *grid.Grid, names []string, lats, lons []float32, opts WriteOptions) error {
	globals, err := util.NewOrderedMap(
		[]string{"source", "history"},
		map[string]any{
			"source":  "Medslik-II .rel export " + opts.Source,
			"history": "created by mdk2nc on " + time.Now().UTC().Format(time.RFC3339),
		})
	if err != nil {
		return err
	}
	if err := cw.AddGlobalAttrs(globals); err != nil {
		return err
	}

	if err := addVar(cw, "lat", lats, []string{"lat"}, "units", "degrees_north"); err != nil {
		return err
	}
	if err := addVar(cw, "lon", lons, []string{"lon"}, "units", "degrees_east"); err != nil {
		return err
	}
	ts := []int32{cftime.Hours(opts.Time)}
	if err := addVar(cw, "time", ts, []string{"time"}, "units", cftime.Units); err != nil {
		return err
	}
	for c, name := range names {
		slice := [][][]float32{toFloat32(g.Channels[c])}
		if err := addVar(cw, name, slice, []string{"time", "lat", "lon"}); err != nil {
			return err
		}
	}
	return nil
}

// addVar adds a variable with attributes given as alternating keys and
// values.
func addVar(cw varWriter, name string, values any, dims []string, attrs ...string) error {
	var keys []string
	vals := make(map[string]any)
	for i := 0; i+1 < len(attrs); i += 2 {
		keys = append(keys, attrs[i])
		vals[attrs[i]] = attrs[i+1]
	}
	am, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		return err
	}
	err = cw.AddVar(name, api.Variable{
		Values:     values,
		Dimensions: dims,
		Attributes: am,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func checkNames(names []string) error {
	seen := map[string]bool{"lat": true, "lon": true, "time": true}
	for _, name := range names {
		if name == "" || seen[name] {
			return fmt.Errorf("%w %q", ErrChannelName, name)
		}
		seen[name] = true
	}
	return nil
}

func axisValues(keys []string) ([]float32, error) {
	v := make([]float32, len(keys))
	for i, k := range keys {
		f, err := strconv.ParseFloat(k, 32)
		if err != nil {
			return nil, err
		}
		v[i] = float32(f)
	}
	return v, nil
}

func toFloat32(data [][]float64) [][]float32 {
	out := make([][]float32, len(data))
	for i, row := range data {
		out[i] = make([]float32, len(row))
		for j, v := range row {
			out[i][j] = float32(v)
		}
	}
	return out
}
