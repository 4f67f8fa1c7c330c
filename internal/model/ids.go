package model

import "github.com/google/uuid"

// NewID returns prefix + "_" + a time-ordered UUIDv7, so ids sort by creation.
func NewID(prefix string) string {
	id, err := uuid.NewV7()
	if err != nil {
		return prefix + "_" + uuid.NewString()
	}
	return prefix + "_" + id.String()
}
