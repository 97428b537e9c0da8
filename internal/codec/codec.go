package codec

import (
	"fmt"

	"github.com/Shivanand-hulikatti/eventspark/internal/model"
)

// Record field names shared by the codecs and the stores that update
// membership lists in place.
const (
	FieldID                 = "id"
	FieldAttendees          = "attendees"
	FieldParticipatedEvents = "participated_events"
)

// Codec converts one entity type to and from a Record.
type Codec[T any] interface {
	Encode(T) Record
	Decode(Record) (T, error)
}

// EventCodec encodes events.
type EventCodec struct{}

// Encode returns a record holding exactly the event's attributes.
func (EventCodec) Encode(e *model.Event) Record {
	return Record{
		FieldID:        e.ID,
		"name":         e.Name,
		"description":  e.Description,
		"date":         e.Date,
		"location":     e.Location,
		FieldAttendees: append([]string{}, e.Attendees...),
	}
}

// Decode rebuilds an event. Missing text fields decode as "" and a missing
// attendee list as empty; a missing id is malformed.
func (EventCodec) Decode(r Record) (*model.Event, error) {
	f := fieldReader{rec: r}
	e := &model.Event{
		ID:          f.id(),
		Name:        f.str("name"),
		Description: f.str("description"),
		Date:        f.str("date"),
		Location:    f.str("location"),
		Attendees:   f.list(FieldAttendees),
	}
	if f.err != nil {
		return nil, fmt.Errorf("decode event: %w", f.err)
	}
	return e, nil
}

// UserCodec encodes users.
type UserCodec struct{}

// Encode returns a record holding exactly the user's attributes.
func (UserCodec) Encode(u *model.User) Record {
	return Record{
		FieldID:                 u.ID,
		"name":                  u.Name,
		"email":                 u.Email,
		"password":              u.Password,
		FieldParticipatedEvents: append([]string{}, u.ParticipatedEvents...),
	}
}

// Decode rebuilds a user; see EventCodec.Decode for the tolerated gaps.
func (UserCodec) Decode(r Record) (*model.User, error) {
	f := fieldReader{rec: r}
	u := &model.User{
		ID:                 f.id(),
		Name:               f.str("name"),
		Email:              f.str("email"),
		Password:           f.str("password"),
		ParticipatedEvents: f.list(FieldParticipatedEvents),
	}
	if f.err != nil {
		return nil, fmt.Errorf("decode user: %w", f.err)
	}
	return u, nil
}

// EncodeAll encodes items in order.
func EncodeAll[T any](c Codec[T], items []T) []Record {
	recs := make([]Record, 0, len(items))
	for _, item := range items {
		recs = append(recs, c.Encode(item))
	}
	return recs
}

// DecodeAll decodes records in order and stops at the first bad one.
func DecodeAll[T any](c Codec[T], recs []Record) ([]T, error) {
	items := make([]T, 0, len(recs))
	for i, r := range recs {
		item, err := c.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

var (
	_ Codec[*model.Event] = EventCodec{}
	_ Codec[*model.User]  = UserCodec{}
)
