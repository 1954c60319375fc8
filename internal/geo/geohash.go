// Package geo implements a base-16 geohash over a fixed regional working
// domain, plus a spatial index that buckets markers by geohash cell.
//
// A geohash encodes a latitude/longitude pair as a short string whose
// prefixes describe nested rectangles: every symbol adds 4 bits, and the bits
// alternately halve the longitude and the latitude range (longitude first).
// Two points that share a long prefix are close together.
//
// This scheme is deliberately not the standard base-32 geohash. It uses the
// alphabet 0-9a-f and the working domain latitude [6,36], longitude [68,98]
// instead of the whole globe, so hashes are not interchangeable with other
// geohash libraries. Coordinates outside the domain are not rejected by
// Encode; they simply pile up in the edge cells.
//
// Each symbol halves both axes twice, so the cell side shrinks by 4x per
// symbol (1° of latitude ≈ 111 km):
//
//	1 → 7.5°   ~830 km     5 → ~3.3 km     9  → ~13 m
//	2 → 1.9°   ~210 km     6 → ~810 m      10 → ~3.2 m
//	3 → 0.47°  ~52 km      7 → ~200 m      11 → ~0.8 m
//	4 → 0.12°  ~13 km      8 → ~51 m       12 → ~0.2 m
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Working domain of the scheme, in degrees.
const (
	MinLat = 6.0
	MaxLat = 36.0
	MinLon = 68.0
	MaxLon = 98.0
)

// MaxPrecision is the longest hash the automatic precision search will try.
// Longer explicit precisions are allowed but add no useful resolution.
const MaxPrecision = 12

// Coordinate is a latitude/longitude pair in degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Cell is the rectangle a geohash stands for.
type Cell struct {
	SW Coordinate `json:"sw"`
	NE Coordinate `json:"ne"`
}

// Center returns the exact midpoint of the cell, without any rounding.
func (c Cell) Center() Coordinate {
	return Coordinate{
		Lat: (c.SW.Lat + c.NE.Lat) / 2,
		Lon: (c.SW.Lon + c.NE.Lon) / 2,
	}
}

// Span returns the height and width of the cell in degrees.
func (c Cell) Span() (latSpan, lonSpan float64) {
	return c.NE.Lat - c.SW.Lat, c.NE.Lon - c.SW.Lon
}

// Contains reports whether p lies inside the cell, edges included.
func (c Cell) Contains(p Coordinate) bool {
	return p.Lat >= c.SW.Lat && p.Lat <= c.NE.Lat &&
		p.Lon >= c.SW.Lon && p.Lon <= c.NE.Lon
}

// InDomain reports whether a coordinate lies inside the working domain.
func InDomain(lat, lon float64) bool {
	return lat >= MinLat && lat <= MaxLat && lon >= MinLon && lon <= MaxLon
}

// Encode converts a coordinate to a geohash of the given precision (number of
// symbols).
//
// A precision of zero or less means "pick one": precisions 1 through
// MaxPrecision are tried in order and the first hash whose Decode gives back
// exactly (lat, lon) wins. When none does, the MaxPrecision hash is returned.
// Callers that care about speed should always pass an explicit precision.
//
// Only NaN and infinite inputs are rejected; the precision is not capped.
func Encode(lat, lon float64, precision int) (string, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return "", fmt.Errorf("%w: coordinate (%v, %v) is not a finite number", ErrInvalidInput, lat, lon)
	}
	if precision > 0 {
		return encode(lat, lon, precision), nil
	}

	for p := 1; p <= MaxPrecision; p++ {
		hash := encode(lat, lon, p)
		c, err := Decode(hash)
		if err == nil && c.Lat == lat && c.Lon == lon {
			return hash, nil
		}
	}
	return encode(lat, lon, MaxPrecision), nil
}

// EncodeString is Encode for textual input, such as query parameters. An
// empty precision means "pick one".
func EncodeString(lat, lon, precision string) (string, error) {
	latV, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return "", fmt.Errorf("%w: latitude %q is not a number", ErrInvalidInput, lat)
	}
	lonV, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return "", fmt.Errorf("%w: longitude %q is not a number", ErrInvalidInput, lon)
	}

	p := 0
	if s := strings.TrimSpace(precision); s != "" {
		p, err = strconv.Atoi(s)
		if err != nil {
			return "", fmt.Errorf("%w: precision %q is not an integer", ErrInvalidInput, precision)
		}
	}
	return Encode(latV, lonV, p)
}

// encode walks precision*4 bisection steps over the working domain.
//
// Algorithm:
//  1. Start with lat [6, 36] and lon [68, 98], longitude active.
//  2. Halve the active range; a value strictly above the midpoint gives bit 1
//     and keeps the upper half, anything else (midpoint included) gives bit 0
//     and keeps the lower half.
//  3. Switch to the other axis.
//  4. Every 4 bits become one symbol through the bit codec.
func encode(lat, lon float64, precision int) string {
	minLat, maxLat := MinLat, MaxLat
	minLon, maxLon := MinLon, MaxLon

	var hash strings.Builder
	hash.Grow(precision)
	group := make([]byte, 0, 4)
	isLon := true

	for i := 0; i < precision*4; i++ {
		if isLon {
			mid := (minLon + maxLon) / 2
			if lon > mid {
				group = append(group, '1')
				minLon = mid
			} else {
				group = append(group, '0')
				maxLon = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if lat > mid {
				group = append(group, '1')
				minLat = mid
			} else {
				group = append(group, '0')
				maxLat = mid
			}
		}
		isLon = !isLon

		if len(group) == 4 {
			hash.WriteByte(bitsToSymbol[string(group)])
			group = group[:0]
		}
	}

	return hash.String()
}

// Bounds returns the cell a geohash stands for. It replays the bisection of
// encode: bit 1 raises the minimum of the active axis to the midpoint, bit 0
// lowers the maximum.
func Bounds(hash string) (Cell, error) {
	if hash == "" {
		return Cell{}, fmt.Errorf("%w: empty hash", ErrInvalidGeohash)
	}
	bits, err := HexToBinary(hash)
	if err != nil {
		return Cell{}, err
	}

	minLat, maxLat := MinLat, MaxLat
	minLon, maxLon := MinLon, MaxLon
	isLon := true

	for i := 0; i < len(bits); i++ {
		if isLon {
			mid := (minLon + maxLon) / 2
			if bits[i] == '1' {
				minLon = mid
			} else {
				maxLon = mid
			}
		} else {
			mid := (minLat + maxLat) / 2
			if bits[i] == '1' {
				minLat = mid
			} else {
				maxLat = mid
			}
		}
		isLon = !isLon
	}

	return Cell{
		SW: Coordinate{Lat: minLat, Lon: minLon},
		NE: Coordinate{Lat: maxLat, Lon: maxLon},
	}, nil
}

// Decode returns the centre of a geohash's cell. Each axis is rounded to
// floor(2 - log10(span)) decimal places, so a coarse cell never reports more
// digits than it can resolve.
func Decode(hash string) (Coordinate, error) {
	cell, err := Bounds(hash)
	if err != nil {
		return Coordinate{}, err
	}

	center := cell.Center()
	latSpan, lonSpan := cell.Span()
	return Coordinate{
		Lat: roundTo(center.Lat, int(math.Floor(2-math.Log10(latSpan)))),
		Lon: roundTo(center.Lon, int(math.Floor(2-math.Log10(lonSpan)))),
	}, nil
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow10(digits)
	return math.Round(v*scale) / scale
}
