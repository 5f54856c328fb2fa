// Package replica models the per-participant replicated state record and its
// backends. The record is owned by the remote participant but any peer may
// write it; conflict resolution is last-writer-wins per key and belongs to
// the backend, not to callers.
package replica

import (
	"encoding/json"
	"errors"
)

// KeyPosition holds the participant's {x,y,z} position.
const KeyPosition = "pos"

// ErrUnavailable marks a backend that could not serve a read or write.
var ErrUnavailable = errors.New("replica: state unavailable")

// Profile is the participant's published presentation data.
type Profile struct {
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// Store is one participant's replicated record. No atomicity is promised
// across a Get/Set pair.
type Store interface {
	// ID returns the participant's stable identity token.
	ID() (string, error)
	// Get returns the raw JSON under key; ok is false when the key is unset.
	Get(key string) (raw json.RawMessage, ok bool, err error)
	// Set JSON-encodes value under key.
	Set(key string, value any) error
	// Color returns the participant's chosen color, "" when unset.
	Color() (string, error)
	// Profile returns the participant's profile, nil when unset.
	Profile() (*Profile, error)
}
