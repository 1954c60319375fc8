package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gridhash/internal/domain/entities"
	"gridhash/internal/geo"
	"gridhash/internal/logger"
	"gridhash/internal/metrics"
	"gridhash/internal/repository"
	"gridhash/pkg/utils"
)

var (
	ErrMarkerNotFound = repository.ErrMarkerNotFound
	ErrInvalidRadius  = errors.New("radius must be positive")
)

// MarkerService keeps the spatial index and the marker repository in step.
// The index answers proximity queries; the repository is the durable copy the
// index is rebuilt from on startup.
type MarkerService struct {
	spatialIndex  *geo.SpatialIndex
	markerRepo    repository.MarkerRepository
	defaultRadius float64
	log           *slog.Logger
}

func NewMarkerService(
	spatialIndex *geo.SpatialIndex,
	markerRepo repository.MarkerRepository,
	defaultRadiusKm float64,
	log *slog.Logger,
) *MarkerService {
	if log == nil {
		log = logger.L()
	}
	return &MarkerService{
		spatialIndex:  spatialIndex,
		markerRepo:    markerRepo,
		defaultRadius: defaultRadiusKm,
		log:           log,
	}
}

// Restore loads every stored marker into the spatial index and returns how
// many were indexed. Markers the index refuses are logged and skipped.
func (s *MarkerService) Restore(ctx context.Context) (int, error) {
	markers, err := s.markerRepo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("restore markers: %w", err)
	}
	for _, m := range markers {
		if _, err := s.spatialIndex.UpdateMarker(m.ID, m.Label, m.Location.Latitude, m.Location.Longitude); err != nil {
			s.log.Warn("marker_restore_skipped", "id", m.ID, "err", err)
		}
	}
	metrics.MarkersIndexed.Set(float64(s.spatialIndex.Count()))
	return s.spatialIndex.Count(), nil
}

// PutMarker creates or moves a marker. An empty id gets a fresh UUID.
func (s *MarkerService) PutMarker(ctx context.Context, id, label string, lat, lon float64) (*entities.Marker, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = utils.GenerateID()
	}

	prev := s.spatialIndex.GetMarker(id)
	marker, err := s.spatialIndex.UpdateMarker(id, label, lat, lon)
	if err != nil {
		return nil, err
	}
	if err := s.markerRepo.Save(ctx, marker); err != nil {
		s.rollback(id, prev)
		return nil, err
	}

	metrics.MarkersIndexed.Set(float64(s.spatialIndex.Count()))
	s.log.Debug("marker_put", "id", id, "geohash", marker.Geohash)
	return marker, nil
}

// rollback puts the index back to prev after a failed save: the previous
// position if the marker existed, otherwise nothing.
func (s *MarkerService) rollback(id string, prev *entities.Marker) {
	if prev == nil {
		s.spatialIndex.RemoveMarker(id)
		return
	}
	if _, err := s.spatialIndex.UpdateMarker(id, prev.Label, prev.Location.Latitude, prev.Location.Longitude); err != nil {
		s.log.Warn("marker_rollback_failed", "id", id, "err", err)
	}
}

// GetMarker returns a marker from the repository.
func (s *MarkerService) GetMarker(ctx context.Context, id string) (*entities.Marker, error) {
	return s.markerRepo.Get(ctx, id)
}

// RemoveMarker deletes a marker. Removing an unknown marker reports
// ErrMarkerNotFound.
func (s *MarkerService) RemoveMarker(ctx context.Context, id string) error {
	if err := s.markerRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.spatialIndex.RemoveMarker(id)
	metrics.MarkersIndexed.Set(float64(s.spatialIndex.Count()))
	return nil
}

// FindNearby returns the markers within radiusKm of a point, nearest first.
// A zero radius means the configured default.
func (s *MarkerService) FindNearby(ctx context.Context, lat, lon, radiusKm float64) ([]geo.MarkerWithDistance, error) {
	if radiusKm == 0 {
		radiusKm = s.defaultRadius
	}
	if radiusKm < 0 {
		return nil, ErrInvalidRadius
	}
	return s.spatialIndex.FindNearby(ctx, lat, lon, radiusKm)
}
