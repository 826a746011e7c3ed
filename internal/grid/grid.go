package grid

import (
	"log/slog"
	"math"
	"sort"
)

// Observation is a reading reported at a given geo location. The location
// keys are kept as the raw text tokens found in the input so that two
// observations share a cell only when their keys are byte-identical.
type Observation struct {
	Lat string
	Lon string

	// Values holds one value per channel. An observation may carry fewer
	// values than the densifier has channels; the missing channels are not
	// recorded for this location.
	Values []float64
}

// Grid is a dense lat x lon grid with one 2D array per channel.
// Channels[c][i][j] is the value of channel c at (Lats[i], Lons[j]).
type Grid struct {
	Lats     []string
	Lons     []string
	Channels [][][]float64
}

// Shape returns the number of latitudes and longitudes.
func (g *Grid) Shape() (int, int) {
	return len(g.Lats), len(g.Lons)
}

// Empty reports whether the grid has no cells.
func (g *Grid) Empty() bool {
	return len(g.Lats) == 0 || len(g.Lons) == 0
}

// IsMissing reports whether v is the no-data sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Densifier turns a sparse, irregularly ordered sequence of observations
// into a dense grid.
//
// The first value recorded for a (lat, lon) pair wins. Later observations
// of the same pair are counted and otherwise ignored.
type Densifier struct {
	logger *slog.Logger
	lats   map[string]struct{}
	lons   map[string]struct{}
	// sparse[c][lat][lon] is the first value seen for channel c.
	sparse []map[string]map[string]float64
	dups   int
}

// NewDensifier creates a densifier for the given number of channels.
func NewDensifier(logger *slog.Logger, channels int) *Densifier {
	d := &Densifier{
		logger: logger,
		lats:   make(map[string]struct{}),
		lons:   make(map[string]struct{}),
		sparse: make([]map[string]map[string]float64, channels),
	}
	for c := range d.sparse {
		d.sparse[c] = make(map[string]map[string]float64)
	}
	return d
}

// Add records an observation.
func (d *Densifier) Add(o Observation) {
	d.lats[o.Lat] = struct{}{}
	d.lons[o.Lon] = struct{}{}
	for c, idx := range d.sparse {
		if c >= len(o.Values) {
			break
		}
		row := idx[o.Lat]
		if row == nil {
			row = make(map[string]float64)
			idx[o.Lat] = row
		}
		if _, ok := row[o.Lon]; ok {
			d.dups++
			continue
		}
		row[o.Lon] = o.Values[c]
	}
}

// Duplicates returns the number of channel values that were ignored
// because their location had already been recorded.
func (d *Densifier) Duplicates() int {
	return d.dups
}

// Grid builds the dense grid from everything added so far. Both axes are
// sorted in string order, so "10" sorts before "2" unless the keys are
// zero padded.
func (d *Densifier) Grid() *Grid {
	g := &Grid{
		Lats:     sortedKeys(d.lats),
		Lons:     sortedKeys(d.lons),
		Channels: make([][][]float64, len(d.sparse)),
	}
	missing := 0
	for c, idx := range d.sparse {
		data := make([][]float64, len(g.Lats))
		for i, la := range g.Lats {
			data[i] = make([]float64, len(g.Lons))
			row := idx[la]
			for j, lo := range g.Lons {
				v, ok := row[lo]
				if !ok {
					v = math.NaN()
					missing++
				}
				data[i][j] = v
			}
		}
		g.Channels[c] = data
	}
	if d.logger != nil {
		d.logger.Debug("Densified grid",
			"laCnt", len(g.Lats),
			"loCnt", len(g.Lons),
			"channels", len(g.Channels),
			"missingCells", missing,
			"duplicates", d.dups)
	}
	return g
}

// Densify is a shortcut for adding all observations to a new densifier
// and building its grid.
func Densify(logger *slog.Logger, channels int, obs []Observation) *Grid {
	d := NewDensifier(logger, channels)
	for _, o := range obs {
		d.Add(o)
	}
	return d.Grid()
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
