package geo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"gridhash/internal/domain/entities"
	"gridhash/pkg/utils"
)

// MarkerWithDistance pairs a marker with its computed distance from a search
// point. Used to return sorted proximity results.
type MarkerWithDistance struct {
	Marker   *entities.Marker `json:"marker"`
	Distance float64          `json:"distance_km"`
}

// SpatialIndex is an in-memory structure for "find markers near here" queries.
// Markers are grouped by geohash cell, so a proximity search only looks at the
// cells around the search circle instead of every marker.
//
// Go Learning Note — sync.RWMutex:
// RWMutex lets many goroutines hold a read lock at once (RLock) while a write
// lock (Lock) is exclusive. Searches vastly outnumber moves, so readers should
// not serialize behind each other.
//
// A second map, cellOf, remembers which cell each marker sits in so a move or
// removal is O(1) rather than a scan over every cell.
type SpatialIndex struct {
	mu        sync.RWMutex
	precision int
	markers   map[string]map[string]*entities.Marker // geohash -> markerID -> marker
	cellOf    map[string]string                      // markerID -> geohash
}

// NewSpatialIndex creates an empty spatial index with the given geohash precision.
func NewSpatialIndex(precision int) *SpatialIndex {
	if precision <= 0 {
		precision = 6
	}
	return &SpatialIndex{
		precision: precision,
		markers:   make(map[string]map[string]*entities.Marker),
		cellOf:    make(map[string]string),
	}
}

// Precision returns the geohash length markers are bucketed at.
func (s *SpatialIndex) Precision() int {
	return s.precision
}

// UpdateMarker places a marker at (lat, lon), moving it out of its previous
// cell if it had one. Points outside the working domain are refused with
// ErrOutOfRange: they would all collapse into the edge cells.
//
// Go Learning Note — defer:
// `defer s.mu.Unlock()` runs when the function returns, whichever return it
// takes, so an early error return can never leave the index locked.
func (s *SpatialIndex) UpdateMarker(id, label string, lat, lon float64) (*entities.Marker, error) {
	if !InDomain(lat, lon) {
		return nil, fmt.Errorf("marker %q at (%v, %v): %w", id, lat, lon, ErrOutOfRange)
	}
	geohash, err := Encode(lat, lon, s.precision)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	if _, exists := s.markers[geohash]; !exists {
		s.markers[geohash] = make(map[string]*entities.Marker)
	}
	marker := entities.NewMarker(id, label, lat, lon, geohash)
	s.markers[geohash][id] = marker
	s.cellOf[id] = geohash

	return marker, nil
}

// RemoveMarker drops a marker from the index. Unknown IDs are ignored.
func (s *SpatialIndex) RemoveMarker(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
}

func (s *SpatialIndex) removeLocked(id string) {
	gh, ok := s.cellOf[id]
	if !ok {
		return
	}
	delete(s.cellOf, id)

	cell := s.markers[gh]
	delete(cell, id)
	if len(cell) == 0 {
		delete(s.markers, gh) // Clean up empty cells to prevent memory leaks.
	}
}

// GetMarker returns a marker, or nil if it is not in the index.
func (s *SpatialIndex) GetMarker(id string) *entities.Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gh, ok := s.cellOf[id]
	if !ok {
		return nil
	}
	return s.markers[gh][id]
}

// FindNearby finds all markers within radiusKm of a point.
//
// Strategy: Coarse filter → Fine filter
//  1. Coarse: take the lat/lon box enclosing the search circle and collect
//     every in-domain cell overlapping it. When that takes more cells than
//     there are occupied buckets, scan the buckets instead.
//  2. Fine: keep candidates whose haversine distance is within the radius.
//  3. Sort nearest first.
func (s *SpatialIndex) FindNearby(ctx context.Context, lat, lon float64, radiusKm float64) ([]MarkerWithDistance, error) {
	if !InDomain(lat, lon) {
		return nil, fmt.Errorf("search at (%v, %v): %w", lat, lon, ErrOutOfRange)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cells, ok := CoverBox(searchBox(lat, lon, radiusKm), s.precision, len(s.markers))
	if !ok {
		cells = make([]string, 0, len(s.markers))
		for gh := range s.markers {
			cells = append(cells, gh)
		}
	}

	var candidates []MarkerWithDistance
	for _, gh := range cells {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, m := range s.markers[gh] {
			distance := utils.HaversineDistance(lat, lon, m.Location.Latitude, m.Location.Longitude)
			if distance <= radiusKm {
				candidates = append(candidates, MarkerWithDistance{
					Marker:   m,
					Distance: distance,
				})
			}
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Distance < candidates[j].Distance
	})

	return candidates, nil
}

// searchBox returns the lat/lon rectangle enclosing every point within
// radiusKm of (lat, lon) on the haversine sphere.
func searchBox(lat, lon, radiusKm float64) Cell {
	d := radiusKm / utils.EarthRadiusKm
	dLat := d * 180 / math.Pi

	dLon := 180.0
	if d < math.Pi/2 {
		if x := math.Sin(d) / math.Cos(lat*math.Pi/180); x < 1 {
			dLon = math.Asin(x) * 180 / math.Pi
		}
	}

	return Cell{
		SW: Coordinate{Lat: lat - dLat, Lon: lon - dLon},
		NE: Coordinate{Lat: lat + dLat, Lon: lon + dLon},
	}
}

// FindNearbyIDs returns just the marker IDs within range, nearest first.
func (s *SpatialIndex) FindNearbyIDs(ctx context.Context, lat, lon float64, radiusKm float64) ([]string, error) {
	nearby, err := s.FindNearby(ctx, lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(nearby))
	for i, d := range nearby {
		ids[i] = d.Marker.ID
	}
	return ids, nil
}

// Count returns the total number of markers in the index.
func (s *SpatialIndex) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.cellOf)
}
