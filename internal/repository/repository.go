// Package repository maps events and users onto a store.Store. It owns the
// load-mode policy: in lenient mode an unreadable collection loads as empty
// and a malformed record is skipped.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
	"github.com/Shivanand-hulikatti/eventspark/internal/model"
	"github.com/Shivanand-hulikatti/eventspark/internal/store"
)

// collection binds one store collection to the codec for its entity type.
type collection[T any] struct {
	store store.Store
	name  string
	codec codec.Codec[T]
	mode  store.LoadMode
}

func (c *collection[T]) list(ctx context.Context) ([]T, error) {
	recs, err := c.store.Load(ctx, c.name)
	if err != nil {
		if c.mode != store.Strict && errors.Is(err, store.ErrCorrupt) {
			logging.Warnf("%s: unreadable data, starting with an empty collection: %v", c.name, err)
			return []T{}, nil
		}
		return nil, fmt.Errorf("load %s: %w", c.name, err)
	}
	if c.mode == store.Strict {
		items, err := codec.DecodeAll(c.codec, recs)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", c.name, err)
		}
		return items, nil
	}

	items := make([]T, 0, len(recs))
	for i, r := range recs {
		item, err := c.codec.Decode(r)
		if err != nil {
			logging.Warnf("%s: skipping record %d: %v", c.name, i, err)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (c *collection[T]) saveAll(ctx context.Context, items []T) error {
	if err := c.store.Save(ctx, c.name, codec.EncodeAll(c.codec, items)); err != nil {
		return fmt.Errorf("save %s: %w", c.name, err)
	}
	return nil
}

// setList replaces one list field of the record with the given id.
func (c *collection[T]) setList(ctx context.Context, id, field string, values []string) error {
	values = append([]string{}, values...)
	err := c.store.UpdateOne(ctx, c.name, id, func(r codec.Record) {
		r[field] = values
	})
	if err != nil {
		return fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	return nil
}

// EventRepository handles persistence for events.
type EventRepository struct {
	c collection[*model.Event]
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(s store.Store, mode store.LoadMode) *EventRepository {
	return &EventRepository{c: collection[*model.Event]{
		store: s,
		name:  store.EventsCollection,
		codec: codec.EventCodec{},
		mode:  mode,
	}}
}

// List returns all stored events in stored order.
func (r *EventRepository) List(ctx context.Context) ([]*model.Event, error) {
	return r.c.list(ctx)
}

// SaveAll replaces the stored events with events.
func (r *EventRepository) SaveAll(ctx context.Context, events []*model.Event) error {
	return r.c.saveAll(ctx, events)
}

// UpdateAttendees persists e's attendee list without rewriting other fields.
func (r *EventRepository) UpdateAttendees(ctx context.Context, e *model.Event) error {
	return r.c.setList(ctx, e.ID, codec.FieldAttendees, e.Attendees)
}

// UserRepository handles persistence for users.
type UserRepository struct {
	c collection[*model.User]
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(s store.Store, mode store.LoadMode) *UserRepository {
	return &UserRepository{c: collection[*model.User]{
		store: s,
		name:  store.UsersCollection,
		codec: codec.UserCodec{},
		mode:  mode,
	}}
}

// List returns all stored users in stored order.
func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	return r.c.list(ctx)
}

// SaveAll replaces the stored users with users.
func (r *UserRepository) SaveAll(ctx context.Context, users []*model.User) error {
	return r.c.saveAll(ctx, users)
}

// UpdateParticipatedEvents persists u's participation list.
func (r *UserRepository) UpdateParticipatedEvents(ctx context.Context, u *model.User) error {
	return r.c.setList(ctx, u.ID, codec.FieldParticipatedEvents, u.ParticipatedEvents)
}
