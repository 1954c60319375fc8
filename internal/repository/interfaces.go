package repository

import (
	"context"
	"errors"

	"gridhash/internal/domain/entities"
)

// ErrMarkerNotFound is returned by Get and Delete for an unknown marker ID.
var ErrMarkerNotFound = errors.New("marker not found")

// MarkerRepository persists markers and looks them up by ID or by geohash
// cell. Save is an upsert: saving a marker that moved to another cell removes
// it from the old one.
type MarkerRepository interface {
	Save(ctx context.Context, marker *entities.Marker) error
	Get(ctx context.Context, id string) (*entities.Marker, error)
	Delete(ctx context.Context, id string) error
	ListInCell(ctx context.Context, geohash string) ([]*entities.Marker, error)
	List(ctx context.Context) ([]*entities.Marker, error)
}
