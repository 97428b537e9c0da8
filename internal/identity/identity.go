// Package identity generates the unique ids assigned to events and users.
package identity

import "github.com/google/uuid"

// Generator returns a fresh id on every call.
type Generator func() string

// NewID returns a random (version 4) UUID string. Generators need no shared
// state, so ids from separate processes do not collide in practice.
func NewID() string {
	return uuid.NewString()
}
