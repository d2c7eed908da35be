package util

import (
	"time"

	"github.com/google/uuid"
)

const newUUIDAttempts = 10

// NewUUID returns a time ordered v7 id, falling back to v4 when the v7
// generator keeps failing.
func NewUUID() string {
	for i := 0; i < newUUIDAttempts; i++ {
		if id, err := uuid.NewV7(); err == nil {
			return id.String()
		}
		// just over v7's 100ns precision
		time.Sleep(200 * time.Nanosecond)
	}
	return uuid.New().String()
}
