package memory

import (
	"context"
	"sync"

	"gridhash/internal/domain/entities"
	"gridhash/internal/repository"
)

// MarkerRepository stores markers with a secondary geohash index for cell
// queries. It maintains two data structures:
//   - markers: markerID → Marker (primary lookup)
//   - geohashIndex: geohash → markerID → Marker (cell lookup)
//
// Both indices must be kept in sync on every write.
type MarkerRepository struct {
	mu           sync.RWMutex
	markers      map[string]*entities.Marker
	geohashIndex map[string]map[string]*entities.Marker
}

var _ repository.MarkerRepository = (*MarkerRepository)(nil)

func NewMarkerRepository() *MarkerRepository {
	return &MarkerRepository{
		markers:      make(map[string]*entities.Marker),
		geohashIndex: make(map[string]map[string]*entities.Marker),
	}
}

// Save upserts a marker, maintaining both indices. If the marker moved to a
// different cell, the old cell's entry is cleaned up first.
func (r *MarkerRepository) Save(ctx context.Context, marker *entities.Marker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, exists := r.markers[marker.ID]; exists && old.Geohash != marker.Geohash {
		r.unindexLocked(old)
	}

	r.markers[marker.ID] = marker

	if _, exists := r.geohashIndex[marker.Geohash]; !exists {
		r.geohashIndex[marker.Geohash] = make(map[string]*entities.Marker)
	}
	r.geohashIndex[marker.Geohash][marker.ID] = marker

	return nil
}

// Get returns a marker or repository.ErrMarkerNotFound.
func (r *MarkerRepository) Get(ctx context.Context, id string) (*entities.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	marker, exists := r.markers[id]
	if !exists {
		return nil, repository.ErrMarkerNotFound
	}
	return marker, nil
}

// Delete removes a marker from both indices, or reports
// repository.ErrMarkerNotFound.
func (r *MarkerRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	marker, exists := r.markers[id]
	if !exists {
		return repository.ErrMarkerNotFound
	}
	r.unindexLocked(marker)
	delete(r.markers, id)
	return nil
}

func (r *MarkerRepository) unindexLocked(marker *entities.Marker) {
	cell, ok := r.geohashIndex[marker.Geohash]
	if !ok {
		return
	}
	delete(cell, marker.ID)
	if len(cell) == 0 {
		delete(r.geohashIndex, marker.Geohash) // Clean up empty cells.
	}
}

// ListInCell returns all markers in one geohash cell.
func (r *MarkerRepository) ListInCell(ctx context.Context, geohash string) ([]*entities.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var markers []*entities.Marker
	for _, m := range r.geohashIndex[geohash] {
		markers = append(markers, m)
	}
	return markers, nil
}

// List returns every stored marker, in no particular order.
func (r *MarkerRepository) List(ctx context.Context) ([]*entities.Marker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	markers := make([]*entities.Marker, 0, len(r.markers))
	for _, m := range r.markers {
		markers = append(markers, m)
	}
	return markers, nil
}
