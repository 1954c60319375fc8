package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Direction is a compass direction used for neighbour lookups.
type Direction string

const (
	North     Direction = "n"
	NorthEast Direction = "ne"
	East      Direction = "e"
	SouthEast Direction = "se"
	South     Direction = "s"
	SouthWest Direction = "sw"
	West      Direction = "w"
	NorthWest Direction = "nw"
)

// directions lists all eight directions clockwise from north.
var directions = []Direction{North, NorthEast, East, SouthEast, South, SouthWest, West, NorthWest}

// diagonals maps each diagonal to the two cardinal steps it is made of. The
// north/south step is taken first.
var diagonals = map[Direction][2]Direction{
	NorthEast: {North, East},
	SouthEast: {South, East},
	SouthWest: {South, West},
	NorthWest: {North, West},
}

// Directions returns the eight compass directions clockwise from north.
func Directions() []Direction {
	out := make([]Direction, len(directions))
	copy(out, directions)
	return out
}

// ParseDirection accepts a direction name in any case.
func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range directions {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// IsCardinal reports whether d is one of n, e, s, w.
func (d Direction) IsCardinal() bool {
	return d == North || d == East || d == South || d == West
}

// maxAxisBits bounds the per-axis integer so it fits in a uint64.
const maxAxisBits = 64

// Adjacent returns the geohash of the same length one cell away in a cardinal
// direction.
//
// The hash is expanded to bits and split by position: even positions are the
// longitude bits, odd positions the latitude bits, mirroring the interleaving
// of Encode. Each half is read as an unsigned integer, the relevant one is
// moved by one, and both are written back at their original width and
// re-interleaved.
//
// There is no wraparound: stepping past an edge of the working domain
// returns ErrOutOfRange.
func Adjacent(hash string, dir Direction) (string, error) {
	if !dir.IsCardinal() {
		return "", fmt.Errorf("%w: %q is not one of n, e, s, w", ErrInvalidDirection, dir)
	}
	if hash == "" {
		return "", fmt.Errorf("%w: empty hash", ErrInvalidGeohash)
	}
	bits, err := HexToBinary(hash)
	if err != nil {
		return "", err
	}

	width := len(bits) / 2
	if width > maxAxisBits {
		return "", fmt.Errorf("%w: %d symbols is too long for neighbour lookup", ErrInvalidGeohash, len(hash))
	}

	lonBits := make([]byte, 0, width)
	latBits := make([]byte, 0, width)
	for i := 0; i < len(bits); i++ {
		if i%2 == 0 {
			lonBits = append(lonBits, bits[i])
		} else {
			latBits = append(latBits, bits[i])
		}
	}

	// width <= 64 and the input holds only '0'/'1', so parsing cannot fail.
	lon, _ := strconv.ParseUint(string(lonBits), 2, 64)
	lat, _ := strconv.ParseUint(string(latBits), 2, 64)

	switch dir {
	case North:
		lat, err = step(lat, +1, width)
	case South:
		lat, err = step(lat, -1, width)
	case East:
		lon, err = step(lon, +1, width)
	case West:
		lon, err = step(lon, -1, width)
	}
	if err != nil {
		return "", fmt.Errorf("%s of %q: %w", dir, hash, err)
	}

	return BinaryToHex(interleave(padBits(lon, width), padBits(lat, width)))
}

// step moves an axis index by delta, refusing to leave [0, 2^width).
func step(v uint64, delta int, width int) (uint64, error) {
	if delta < 0 {
		if v == 0 {
			return 0, ErrOutOfRange
		}
		return v - 1, nil
	}
	if width < maxAxisBits && v+1 >= uint64(1)<<uint(width) {
		return 0, ErrOutOfRange
	}
	if width == maxAxisBits && v == ^uint64(0) {
		return 0, ErrOutOfRange
	}
	return v + 1, nil
}

// padBits writes v in binary, left-padded with zeros to width digits.
func padBits(v uint64, width int) string {
	s := strconv.FormatUint(v, 2)
	if len(s) < width {
		s = strings.Repeat("0", width-len(s)) + s
	}
	return s
}

// interleave merges two equal-length bit strings, lon bit first.
func interleave(lon, lat string) string {
	out := make([]byte, 0, len(lon)+len(lat))
	for i := 0; i < len(lon); i++ {
		out = append(out, lon[i], lat[i])
	}
	return string(out)
}

// Neighbours returns the eight cells around hash keyed by direction. Diagonals
// are two cardinal steps, e.g. ne = Adjacent(Adjacent(hash, n), e).
//
// The result is all or nothing: if any neighbour falls outside the working
// domain the whole call fails with ErrOutOfRange. Use GridAround to get the
// neighbours that do exist.
func Neighbours(hash string) (map[Direction]string, error) {
	out := make(map[Direction]string, len(directions))
	for _, d := range directions {
		n, err := Neighbour(hash, d)
		if err != nil {
			return nil, err
		}
		out[d] = n
	}
	return out, nil
}

// Neighbour returns the adjacent cell in any of the eight directions.
func Neighbour(hash string, dir Direction) (string, error) {
	if dir.IsCardinal() {
		return Adjacent(hash, dir)
	}
	steps, ok := diagonals[dir]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
	first, err := Adjacent(hash, steps[0])
	if err != nil {
		return "", err
	}
	return Adjacent(first, steps[1])
}
