package ncfile

import (
	"fmt"
	"sort"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"gonum.org/v1/gonum/floats"
)

// Bounds is the extent of a coordinate variable.
type Bounds struct {
	Min, Max float64
}

// Info summarises a NetCDF file.
type Info struct {
	Vars []string
	Lat  Bounds
	Lon  Bounds
}

// Summary returns the summary information about the file suitable for
// logging.
func (inf *Info) Summary() []any {
	return []any{
		"vars", inf.Vars,
		"latMin", inf.Lat.Min,
		"latMax", inf.Lat.Max,
		"lonMin", inf.Lon.Min,
		"lonMax", inf.Lon.Max,
	}
}

// Inspect lists the variables of a NetCDF file and the bounds of its
// latitude and longitude variables.
func Inspect(path, latVar, lonVar string) (*Info, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer nc.Close()

	inf := &Info{Vars: nc.ListVariables()}
	sort.Strings(inf.Vars)
	if inf.Lat, err = bounds(nc, latVar); err != nil {
		return nil, err
	}
	if inf.Lon, err = bounds(nc, lonVar); err != nil {
		return nil, err
	}
	return inf, nil
}

func bounds(nc api.Group, name string) (Bounds, error) {
	vr, err := nc.GetVariable(name)
	if err != nil {
		return Bounds{}, fmt.Errorf("variable %q: %w", name, err)
	}
	var v []float64
	switch vals := vr.Values.(type) {
	case []float64:
		v = vals
	case []float32:
		v = make([]float64, len(vals))
		for i, f := range vals {
			v[i] = float64(f)
		}
	default:
		return Bounds{}, fmt.Errorf("variable %q: unsupported type %T", name, vr.Values)
	}
	if len(v) == 0 {
		return Bounds{}, fmt.Errorf("variable %q is empty", name)
	}
	return Bounds{Min: floats.Min(v), Max: floats.Max(v)}, nil
}
