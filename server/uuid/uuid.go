package uuid

import (
	"github.com/google/uuid"
	"github.com/mirrorcast/mirrorcast/server/basen"
)

var defaultEncoder = basen.NewEncoder(basen.AlphabetBase62)

// New returns a new base62-encoded UUID.
func New() string {
	value := uuid.New()

	return defaultEncoder.Encode(value[:])
}
