// Package redisstore keeps markers in Redis so they survive restarts and can
// be shared by several service instances.
//
// Layout:
//
//	<prefix>marker:<id>     hash   label, lat, lon, geohash, updated_at
//	<prefix>cell:<geohash>  set    IDs of the markers in that cell
//	<prefix>markers         set    every marker ID
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"gridhash/internal/domain/entities"
	"gridhash/internal/repository"
)

// DefaultPrefix namespaces every key the repository writes.
const DefaultPrefix = "gridhash:"

// MarkerRepository is a repository.MarkerRepository backed by Redis.
type MarkerRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

var _ repository.MarkerRepository = (*MarkerRepository)(nil)

// NewMarkerRepository wraps an existing client. An empty prefix means
// DefaultPrefix.
func NewMarkerRepository(rdb redis.UniversalClient, prefix string) *MarkerRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &MarkerRepository{rdb: rdb, prefix: prefix}
}

// Open connects to Redis and checks the connection with PING.
func Open(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redisstore: ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *MarkerRepository) markerKey(id string) string { return r.prefix + "marker:" + id }
func (r *MarkerRepository) cellKey(gh string) string { return r.prefix + "cell:" + gh }
func (r *MarkerRepository) allKey() string { return r.prefix + "markers" }

// maxTxAttempts bounds the optimistic-lock retries of Save and Delete.
const maxTxAttempts = 10

// watch runs fn in a WATCH on the marker's hash, retrying while another
// client changes the hash between the read and EXEC.
func (r *MarkerRepository) watch(ctx context.Context, id string, fn func(tx *redis.Tx) error) error {
	for i := 0; i < maxTxAttempts; i++ {
		err := r.rdb.Watch(ctx, fn, r.markerKey(id))
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return redis.TxFailedErr
}

// Save upserts a marker. The old cell is read under WATCH and the cell sets
// and the marker hash are written in one MULTI/EXEC, so concurrent saves of
// one marker never leave it in two cells.
func (r *MarkerRepository) Save(ctx context.Context, marker *entities.Marker) error {
	key := r.markerKey(marker.ID)
	err := r.watch(ctx, marker.ID, func(tx *redis.Tx) error {
		oldCell, err := tx.HGet(ctx, key, "geohash").Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if oldCell != "" && oldCell != marker.Geohash {
				pipe.SRem(ctx, r.cellKey(oldCell), marker.ID)
			}
			pipe.HSet(ctx, key,
				"label", marker.Label,
				"lat", strconv.FormatFloat(marker.Location.Latitude, 'g', -1, 64),
				"lon", strconv.FormatFloat(marker.Location.Longitude, 'g', -1, 64),
				"geohash", marker.Geohash,
				"updated_at", marker.UpdatedAt.UTC().Format(time.RFC3339Nano),
			)
			pipe.SAdd(ctx, r.cellKey(marker.Geohash), marker.ID)
			pipe.SAdd(ctx, r.allKey(), marker.ID)
			return nil
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("redisstore: save %s: %w", marker.ID, err)
	}
	return nil
}

// Get returns a marker or repository.ErrMarkerNotFound.
func (r *MarkerRepository) Get(ctx context.Context, id string) (*entities.Marker, error) {
	fields, err := r.rdb.HGetAll(ctx, r.markerKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: get %s: %w", id, err)
	}
	if len(fields) == 0 {
		return nil, repository.ErrMarkerNotFound
	}
	return parseMarker(id, fields)
}

// Delete removes a marker and its cell membership, or reports
// repository.ErrMarkerNotFound.
func (r *MarkerRepository) Delete(ctx context.Context, id string) error {
	key := r.markerKey(id)
	err := r.watch(ctx, id, func(tx *redis.Tx) error {
		cell, err := tx.HGet(ctx, key, "geohash").Result()
		if errors.Is(err, redis.Nil) {
			return repository.ErrMarkerNotFound
		}
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.SRem(ctx, r.cellKey(cell), id)
			pipe.SRem(ctx, r.allKey(), id)
			return nil
		})
		return err
	})
	if errors.Is(err, repository.ErrMarkerNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("redisstore: delete %s: %w", id, err)
	}
	return nil
}

// ListInCell returns the markers in one geohash cell.
func (r *MarkerRepository) ListInCell(ctx context.Context, geohash string) ([]*entities.Marker, error) {
	ids, err := r.rdb.SMembers(ctx, r.cellKey(geohash)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list cell %s: %w", geohash, err)
	}
	return r.fetch(ctx, ids)
}

// List returns every stored marker.
func (r *MarkerRepository) List(ctx context.Context) ([]*entities.Marker, error) {
	ids, err := r.rdb.SMembers(ctx, r.allKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redisstore: list: %w", err)
	}
	return r.fetch(ctx, ids)
}

// fetch loads several markers in one round trip. IDs whose hash has vanished
// in the meantime are skipped.
func (r *MarkerRepository) fetch(ctx context.Context, ids []string) ([]*entities.Marker, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err := r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, r.markerKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redisstore: fetch: %w", err)
	}

	markers := make([]*entities.Marker, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		m, err := parseMarker(ids[i], fields)
		if err != nil {
			return nil, err
		}
		markers = append(markers, m)
	}
	return markers, nil
}

func parseMarker(id string, fields map[string]string) (*entities.Marker, error) {
	lat, err := strconv.ParseFloat(fields["lat"], 64)
	if err != nil {
		return nil, fmt.Errorf("redisstore: marker %s: bad lat: %w", id, err)
	}
	lon, err := strconv.ParseFloat(fields["lon"], 64)
	if err != nil {
		return nil, fmt.Errorf("redisstore: marker %s: bad lon: %w", id, err)
	}
	updated, err := time.Parse(time.RFC3339Nano, fields["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("redisstore: marker %s: bad updated_at: %w", id, err)
	}

	m := entities.NewMarker(id, fields["label"], lat, lon, fields["geohash"])
	m.UpdatedAt = updated
	return m, nil
}
