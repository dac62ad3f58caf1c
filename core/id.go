package core

import "github.com/google/uuid"

// NewID returns a unique identifier for runs.
func NewID() string {
	return uuid.NewString()
}
