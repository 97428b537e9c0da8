package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEvent_StartsWithNoAttendees(t *testing.T) {
	e := NewEvent("e1", CreateEventRequest{Name: "GoConf", Date: "2026-11-02", Location: "Berlin"})
	assert.Equal(t, "e1", e.ID)
	assert.Equal(t, "GoConf", e.Name)
	assert.NotNil(t, e.Attendees)
	assert.Empty(t, e.Attendees)
}

func TestEvent_AddAttendeeKeepsDuplicates(t *testing.T) {
	e := NewEvent("e1", CreateEventRequest{})
	e.AddAttendee("u1")
	e.AddAttendee("u2")
	e.AddAttendee("u1")

	assert.Equal(t, []string{"u1", "u2", "u1"}, e.Attendees)
}

func TestUser_Matches(t *testing.T) {
	u := NewUser("u1", RegisterUserRequest{Name: "Ana", Email: "ana@example.com", Password: "pw"})
	assert.True(t, u.Matches("ana@example.com", "pw"))
	assert.False(t, u.Matches("ana@example.com", "PW"))
	assert.False(t, u.Matches("Ana@example.com", "pw"))

	u.AddParticipatedEvent("e1")
	assert.Equal(t, []string{"e1"}, u.ParticipatedEvents)
}

func TestDefaultAdmin(t *testing.T) {
	a := DefaultAdmin()
	assert.True(t, a.Matches("admin", "admin123"))
	assert.False(t, a.Matches("admin", "admin"))
	assert.False(t, a.Matches("root", "admin123"))
}
