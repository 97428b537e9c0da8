// Package store persists record collections. Every backend treats a collection
// as an ordered snapshot: Load returns all of it, Save replaces all of it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
)

// Collection names.
const (
	EventsCollection = "events"
	UsersCollection  = "users"
)

// ErrCorrupt is returned when persisted content cannot be parsed.
var ErrCorrupt = errors.New("corrupt store")

// Store is the storage contract shared by the file, memory and SQL backends.
type Store interface {
	// Load returns the collection in stored order. A collection that was never
	// written, or is empty, loads as an empty slice.
	Load(ctx context.Context, collection string) ([]codec.Record, error)
	// Save replaces the whole collection with records, keeping their order.
	Save(ctx context.Context, collection string, records []codec.Record) error
	// UpdateOne applies mutate to the first record whose id matches and
	// persists the collection. No match is not an error.
	UpdateOne(ctx context.Context, collection, id string, mutate func(codec.Record)) error
	Close() error
}

// LoadMode decides what a corrupt collection loads as.
type LoadMode string

const (
	// Lenient loads a corrupt collection as empty.
	Lenient LoadMode = "lenient"
	// Strict surfaces corruption to the caller.
	Strict LoadMode = "strict"
)

// ParseLoadMode validates a configured load mode. "" means Lenient.
func ParseLoadMode(s string) (LoadMode, error) {
	switch LoadMode(s) {
	case "", Lenient:
		return Lenient, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("unknown load mode %q (want %q or %q)", s, Lenient, Strict)
	}
}

// updateFirst mutates the first record with a matching id in place.
func updateFirst(records []codec.Record, id string, mutate func(codec.Record)) bool {
	for _, r := range records {
		if r.ID() == id {
			mutate(r)
			return true
		}
	}
	return false
}

// decodeBody parses one stored record.
func decodeBody(body []byte, collection string) (codec.Record, error) {
	var rec codec.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s record: %v", ErrCorrupt, collection, err)
	}
	return rec, nil
}
