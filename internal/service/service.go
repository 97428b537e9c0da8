// Package service implements the event management workflow: it owns the
// in-memory events and users and keeps the store in step with them.
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Shivanand-hulikatti/eventspark/internal/identity"
	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
	"github.com/Shivanand-hulikatti/eventspark/internal/model"
)

var (
	// ErrEventNotFound is returned when an event id matches no event.
	ErrEventNotFound = errors.New("event not found")
	// ErrUserRequired is returned when a sign-up has no user.
	ErrUserRequired = errors.New("user is required")
)

// EventRepository is the event persistence the service needs.
type EventRepository interface {
	List(ctx context.Context) ([]*model.Event, error)
	SaveAll(ctx context.Context, events []*model.Event) error
	UpdateAttendees(ctx context.Context, e *model.Event) error
}

// UserRepository is the user persistence the service needs.
type UserRepository interface {
	List(ctx context.Context) ([]*model.User, error)
	SaveAll(ctx context.Context, users []*model.User) error
	UpdateParticipatedEvents(ctx context.Context, u *model.User) error
}

// Option configures an EventService.
type Option func(*EventService)

// withIDGenerator replaces the UUID generator.
func withIDGenerator(g identity.Generator) Option {
	return func(s *EventService) { s.newID = g }
}

// EventService orchestrates event and user operations. It is not safe for
// concurrent use; the dashboard drives it one operation at a time.
type EventService struct {
	events EventRepository
	users  UserRepository
	newID  identity.Generator
	admin  model.Admin

	eventList []*model.Event
	userList  []*model.User
}

// NewEventService constructs an EventService with its dependencies. Call Load
// before use to read the stored collections.
func NewEventService(events EventRepository, users UserRepository, opts ...Option) *EventService {
	s := &EventService{
		events:    events,
		users:     users,
		newID:     identity.NewID,
		admin:     model.DefaultAdmin(),
		eventList: []*model.Event{},
		userList:  []*model.User{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collections with the stored ones.
func (s *EventService) Load(ctx context.Context) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	events, err := s.events.List(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	s.userList, s.eventList = users, events
	logging.Debugf("loaded %d events and %d users", len(events), len(users))
	return nil
}

// CreateEvent adds an event with a fresh id and persists all events. Fields
// are stored as given.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	event := model.NewEvent(s.newID(), req)
	s.eventList = append(s.eventList, event)
	if err := s.events.SaveAll(ctx, s.eventList); err != nil {
		s.eventList = s.eventList[:len(s.eventList)-1]
		return nil, fmt.Errorf("create event: %w", err)
	}
	logging.Infof("created event %s (%s)", event.ID, event.Name)
	return event, nil
}

// RegisterUser adds a user with a fresh id and persists all users. Emails are
// not checked for uniqueness.
func (s *EventService) RegisterUser(ctx context.Context, req model.RegisterUserRequest) (*model.User, error) {
	user := model.NewUser(s.newID(), req)
	s.userList = append(s.userList, user)
	if err := s.users.SaveAll(ctx, s.userList); err != nil {
		s.userList = s.userList[:len(s.userList)-1]
		return nil, fmt.Errorf("register user: %w", err)
	}
	logging.Infof("registered user %s", user.ID)
	return user, nil
}

// LoginUser returns the first user whose email and password match exactly.
func (s *EventService) LoginUser(email, password string) (*model.User, bool) {
	for _, u := range s.userList {
		if u.Matches(email, password) {
			return u, true
		}
	}
	return nil, false
}

// LoginAdmin checks the credentials against the built-in admin.
func (s *EventService) LoginAdmin(name, password string) (*model.Admin, bool) {
	if !s.admin.Matches(name, password) {
		return nil, false
	}
	admin := s.admin
	return &admin, true
}

// FindEvent returns the event with the given id.
func (s *EventService) FindEvent(id string) (*model.Event, bool) {
	for _, e := range s.eventList {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// FindUser returns the user with the given id.
func (s *EventService) FindUser(id string) (*model.User, bool) {
	for _, u := range s.userList {
		if u.ID == id {
			return u, true
		}
	}
	return nil, false
}

// SignUpForEvent records user as an attendee of the event and the event as
// one of the user's participated events.
//
// The event side is persisted first. If the user side then fails, the event
// keeps the attendee (as on disk) and the error is returned; a crash between
// the two writes likewise leaves the event as the record of who attended.
// A missing event returns ErrEventNotFound and changes nothing.
func (s *EventService) SignUpForEvent(ctx context.Context, eventID string, user *model.User) error {
	if user == nil {
		return ErrUserRequired
	}
	event, ok := s.FindEvent(eventID)
	if !ok {
		return ErrEventNotFound
	}

	event.AddAttendee(user.ID)
	if err := s.events.UpdateAttendees(ctx, event); err != nil {
		event.Attendees = event.Attendees[:len(event.Attendees)-1]
		return fmt.Errorf("sign up: record attendee: %w", err)
	}

	user.AddParticipatedEvent(event.ID)
	if err := s.users.UpdateParticipatedEvents(ctx, user); err != nil {
		user.ParticipatedEvents = user.ParticipatedEvents[:len(user.ParticipatedEvents)-1]
		return fmt.Errorf("sign up: record participation: %w", err)
	}

	logging.Infof("user %s signed up for event %s", user.ID, event.ID)
	return nil
}

// ListEvents returns all events in creation order.
func (s *EventService) ListEvents() []*model.Event {
	return slices.Clone(s.eventList)
}

// ListUsers returns all users in registration order.
func (s *EventService) ListUsers() []*model.User {
	return slices.Clone(s.userList)
}

// Participants resolves an event's attendee ids to users, in sign-up order.
// Ids with no matching user are skipped.
func (s *EventService) Participants(eventID string) ([]*model.User, error) {
	event, ok := s.FindEvent(eventID)
	if !ok {
		return nil, ErrEventNotFound
	}
	users := make([]*model.User, 0, len(event.Attendees))
	for _, id := range event.Attendees {
		if u, ok := s.FindUser(id); ok {
			users = append(users, u)
		}
	}
	return users, nil
}

// ParticipatedEvents resolves a user's event ids to events. Ids with no
// matching event are skipped.
func (s *EventService) ParticipatedEvents(user *model.User) []*model.Event {
	if user == nil {
		return nil
	}
	events := make([]*model.Event, 0, len(user.ParticipatedEvents))
	for _, id := range user.ParticipatedEvents {
		if e, ok := s.FindEvent(id); ok {
			events = append(events, e)
		}
	}
	return events
}
