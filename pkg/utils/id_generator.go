// Package utils holds small helpers shared by the geo index and the services:
// marker ID generation and great-circle distance.
package utils

import (
	"github.com/google/uuid"
)

// GenerateID returns a random (v4) UUID string, used for markers created
// without a caller-supplied ID.
//
// Go Learning Note — "github.com/google/uuid":
// uuid.New() panics only if the system random source fails, which is why it
// has no error return. Use uuid.NewRandom() when you want that error instead.
func GenerateID() string {
	return uuid.New().String()
}
