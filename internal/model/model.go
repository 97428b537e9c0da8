// Package model defines the core domain types for the event registration system.
package model

// Event is something users can sign up for. Attendees holds user ids in
// sign-up order; the same id may appear more than once.
type Event struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
}

// NewEvent returns an event with the given id and an empty attendee list.
func NewEvent(id string, req CreateEventRequest) *Event {
	return &Event{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		Location:    req.Location,
		Attendees:   []string{},
	}
}

// AddAttendee appends a user id to the attendee list.
func (e *Event) AddAttendee(userID string) {
	e.Attendees = append(e.Attendees, userID)
}

// User is a registered participant. Password is stored and compared as plain text.
type User struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	ParticipatedEvents []string `json:"participated_events"`
}

// NewUser returns a user with the given id and no participated events.
func NewUser(id string, req RegisterUserRequest) *User {
	return &User{
		ID:                 id,
		Name:               req.Name,
		Email:              req.Email,
		Password:           req.Password,
		ParticipatedEvents: []string{},
	}
}

// AddParticipatedEvent appends an event id to the user's participation list.
func (u *User) AddParticipatedEvent(eventID string) {
	u.ParticipatedEvents = append(u.ParticipatedEvents, eventID)
}

// Matches reports whether the credentials equal the user's exactly.
func (u *User) Matches(email, password string) bool {
	return u.Email == email && u.Password == password
}

// Admin is the single built-in administrator account.
type Admin struct {
	Name     string
	Password string
}

// DefaultAdmin returns the administrator credentials every process starts with.
func DefaultAdmin() Admin {
	return Admin{Name: "admin", Password: "admin123"}
}

// Matches reports whether the credentials equal the admin's exactly.
func (a Admin) Matches(name, password string) bool {
	return a.Name == name && a.Password == password
}

// CreateEventRequest is the input for creating a new event.
type CreateEventRequest struct {
	Name        string
	Description string
	Date        string
	Location    string
}

// RegisterUserRequest is the input for registering a new user.
type RegisterUserRequest struct {
	Name     string
	Email    string
	Password string
}
