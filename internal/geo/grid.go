package geo

import (
	"errors"
	"strings"
)

// GridCell pairs a geohash with its rectangle.
type GridCell struct {
	Geohash string `json:"geohash"`
	Bounds  Cell   `json:"bounds"`
}

// Grid is a cell and the neighbours around it that exist inside the working
// domain. It is what a map overlay needs to draw a 3x3 block.
type Grid struct {
	Center     GridCell               `json:"center"`
	Neighbours map[Direction]GridCell `json:"neighbours"`
}

// GridAround returns hash and its neighbours with their bounds. Unlike
// Neighbours, directions that step off the working domain are left out
// instead of failing the call, so an edge cell yields fewer than 8 entries.
func GridAround(hash string) (Grid, error) {
	center, err := Bounds(hash)
	if err != nil {
		return Grid{}, err
	}

	g := Grid{
		Center:     GridCell{Geohash: strings.ToLower(hash), Bounds: center},
		Neighbours: make(map[Direction]GridCell, len(directions)),
	}
	for _, d := range directions {
		n, err := Neighbour(hash, d)
		if errors.Is(err, ErrOutOfRange) {
			continue
		}
		if err != nil {
			return Grid{}, err
		}
		b, err := Bounds(n)
		if err != nil {
			return Grid{}, err
		}
		g.Neighbours[d] = GridCell{Geohash: n, Bounds: b}
	}
	return g, nil
}

// Cover returns the center hash followed by every in-domain neighbour. The
// spatial index scans these cells for proximity queries.
func Cover(hash string) ([]string, error) {
	g, err := GridAround(hash)
	if err != nil {
		return nil, err
	}
	cells := []string{g.Center.Geohash}
	for _, d := range directions {
		if c, ok := g.Neighbours[d]; ok {
			cells = append(cells, c.Geohash)
		}
	}
	return cells, nil
}

// maxBoxPrecision keeps 4^precision cells per axis inside a uint64.
const maxBoxPrecision = 31

// CoverBox returns every cell at precision that overlaps box, clipped to the
// working domain, south row first. The range is widened by one cell on each
// side so points sitting exactly on a cell edge are never missed.
//
// ok is false, and no cells are returned, when precision is outside
// [1, 31] or when more than limit cells would be needed; callers fall back
// to a full scan.
func CoverBox(box Cell, precision, limit int) (cells []string, ok bool) {
	if precision < 1 || precision > maxBoxPrecision || limit < 1 {
		return nil, false
	}
	if box.NE.Lat < MinLat || box.SW.Lat > MaxLat || box.NE.Lon < MinLon || box.SW.Lon > MaxLon {
		return []string{}, true
	}

	width := 2 * precision
	n := uint64(1) << uint(width)
	latLo, latHi := axisRange(box.SW.Lat, box.NE.Lat, MinLat, MaxLat, n)
	lonLo, lonHi := axisRange(box.SW.Lon, box.NE.Lon, MinLon, MaxLon, n)

	rows, cols := latHi-latLo+1, lonHi-lonLo+1
	if cols > uint64(limit) || rows > uint64(limit)/cols {
		return nil, false
	}

	cells = make([]string, 0, rows*cols)
	for lat := latLo; lat <= latHi; lat++ {
		for lon := lonLo; lon <= lonHi; lon++ {
			hash, err := BinaryToHex(interleave(padBits(lon, width), padBits(lat, width)))
			if err != nil {
				return nil, false
			}
			cells = append(cells, hash)
		}
	}
	return cells, true
}

// axisRange converts [lo, hi] to cell indexes along an axis of n cells,
// padded by one cell and clamped to [0, n).
func axisRange(lo, hi, min, max float64, n uint64) (uint64, uint64) {
	index := func(v float64) uint64 {
		f := (v - min) / (max - min) * float64(n)
		if f <= 0 {
			return 0
		}
		if f >= float64(n) {
			return n - 1
		}
		return uint64(f)
	}
	from, to := index(lo), index(hi)
	if from > 0 {
		from--
	}
	if to < n-1 {
		to++
	}
	return from, to
}
