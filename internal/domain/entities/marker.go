package entities

import "time"

// Location represents a geographic coordinate pair (latitude/longitude).
//
// Go Learning Note — Value Types vs Reference Types:
// Location is a small, immutable data holder passed by value. A Marker is
// returned as a pointer because the index and the repositories hand the same
// record around and replace it wholesale on every move.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Marker is a named point pinned to the map. The Geohash field is the cell the
// marker lives in at the index precision, which lets the spatial index and the
// repositories look markers up by cell without re-encoding.
type Marker struct {
	ID        string    `json:"id"`
	Label     string    `json:"label,omitempty"`
	Location  Location  `json:"location"`
	Geohash   string    `json:"geohash"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLocation creates a Location value from latitude and longitude.
func NewLocation(lat, lon float64) Location {
	return Location{
		Latitude:  lat,
		Longitude: lon,
	}
}

// NewMarker creates a Marker stamped with the current time. The geohash
// parameter should be pre-computed by the geo package.
func NewMarker(id, label string, lat, lon float64, geohash string) *Marker {
	return &Marker{
		ID:        id,
		Label:     label,
		Location:  NewLocation(lat, lon),
		Geohash:   geohash,
		UpdatedAt: time.Now(),
	}
}
