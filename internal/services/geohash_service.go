package services

import (
	"log/slog"
	"time"

	"gridhash/internal/geo"
	"gridhash/internal/logger"
	"gridhash/internal/metrics"
)

// GeohashService exposes the geo package's operations to the HTTP layer,
// recording a metric per call and logging failures at debug level. It holds
// no state of its own.
type GeohashService struct {
	log *slog.Logger
}

// NewGeohashService builds the service. A nil log means the process default.
func NewGeohashService(log *slog.Logger) *GeohashService {
	if log == nil {
		log = logger.L()
	}
	return &GeohashService{log: log}
}

// track starts timing op; call the returned func with a pointer to the
// operation's named error once it is known: defer s.track(...)(&err).
func (s *GeohashService) track(op string, args ...any) func(errp *error) {
	start := time.Now()
	return func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		metrics.Observe(op, start, err)
		if err != nil {
			s.log.Debug("geohash_op_failed", append([]any{"op", op, "err", err}, args...)...)
		}
	}
}

// Encode parses textual coordinates and encodes them. An empty precision
// means the automatic precision search.
func (s *GeohashService) Encode(lat, lon, precision string) (hash string, err error) {
	defer s.track("encode", "lat", lat, "lon", lon, "precision", precision)(&err)
	return geo.EncodeString(lat, lon, precision)
}

// Decode returns the rounded centroid of a hash.
func (s *GeohashService) Decode(hash string) (c geo.Coordinate, err error) {
	defer s.track("decode", "hash", hash)(&err)
	return geo.Decode(hash)
}

// Bounds returns the rectangle of a hash.
func (s *GeohashService) Bounds(hash string) (cell geo.Cell, err error) {
	defer s.track("bounds", "hash", hash)(&err)
	return geo.Bounds(hash)
}

// Adjacent returns the neighbouring hash in a cardinal direction.
func (s *GeohashService) Adjacent(hash, direction string) (out string, err error) {
	defer s.track("adjacent", "hash", hash, "direction", direction)(&err)

	dir, err := geo.ParseDirection(direction)
	if err != nil {
		return "", err
	}
	return geo.Adjacent(hash, dir)
}

// Neighbours returns all eight neighbours of a hash.
func (s *GeohashService) Neighbours(hash string) (out map[geo.Direction]string, err error) {
	defer s.track("neighbours", "hash", hash)(&err)
	return geo.Neighbours(hash)
}

// Grid returns a hash and its in-domain neighbours with their bounds.
func (s *GeohashService) Grid(hash string) (g geo.Grid, err error) {
	defer s.track("grid", "hash", hash)(&err)
	return geo.GridAround(hash)
}
