package repository

import (
	"context"
	"os"
	"testing"

	"github.com/Shivanand-hulikatti/eventspark/internal/codec"
	"github.com/Shivanand-hulikatti/eventspark/internal/model"
	"github.com/Shivanand-hulikatti/eventspark/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestEventRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewEventRepository(newFileStore(t), store.Lenient)

	a := model.NewEvent("e1", model.CreateEventRequest{Name: "A", Date: "2026-01-01"})
	b := model.NewEvent("e2", model.CreateEventRequest{Name: "B", Location: "Oslo"})
	b.AddAttendee("u1")
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{a, b}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*model.Event{a, b}, got)
}

func TestUserRepository_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore(), store.Lenient)

	u := model.NewUser("u1", model.RegisterUserRequest{Name: "Ana", Email: "ana@x", Password: "pw"})
	require.NoError(t, repo.SaveAll(ctx, []*model.User{u}))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []*model.User{u}, got)
}

func TestList_CorruptFile(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	require.NoError(t, os.WriteFile(s.Path(store.EventsCollection), []byte("[{"), 0o600))

	got, err := NewEventRepository(s, store.Lenient).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = NewEventRepository(s, store.Strict).List(ctx)
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestList_MalformedRecord(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.Save(ctx, store.UsersCollection, []codec.Record{
		{"id": "u1", "name": "ok"},
		{"id": "u2", "name": map[string]any{"first": "x"}},
		{"id": "u3", "name": "also ok"},
	}))

	got, err := NewUserRepository(s, store.Lenient).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].ID)
	assert.Equal(t, "u3", got[1].ID)

	_, err = NewUserRepository(s, store.Strict).List(ctx)
	assert.ErrorIs(t, err, codec.ErrMalformed)
}

func TestList_NumericFieldKeepsCollection(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	data := `[
  {"id": "a", "name": "Valid", "date": "2024-01-01", "attendees": []},
  {"id": "b", "name": "Numeric date", "date": 20240101, "attendees": []}
]`
	require.NoError(t, os.WriteFile(s.Path(store.EventsCollection), []byte(data), 0o600))
	repo := NewEventRepository(s, store.Lenient)

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "20240101", got[1].Date)

	got = append(got, model.NewEvent("c", model.CreateEventRequest{Name: "New"}))
	require.NoError(t, repo.SaveAll(ctx, got))

	reloaded, err := NewEventRepository(s, store.Strict).List(ctx)
	require.NoError(t, err)
	require.Len(t, reloaded, 3)
	assert.Equal(t, "a", reloaded[0].ID)
	assert.Equal(t, "Valid", reloaded[0].Name)
}

func TestList_MissingFileIsEmptyInStrictMode(t *testing.T) {
	got, err := NewEventRepository(newFileStore(t), store.Strict).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestUpdateAttendees_OnlyChangesMatchingEvent(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	repo := NewEventRepository(s, store.Strict)

	a := model.NewEvent("e1", model.CreateEventRequest{Name: "A"})
	b := model.NewEvent("e2", model.CreateEventRequest{Name: "B"})
	require.NoError(t, repo.SaveAll(ctx, []*model.Event{a, b}))

	b.AddAttendee("u1")
	b.Name = "renamed in memory only"
	require.NoError(t, repo.UpdateAttendees(ctx, b))

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Empty(t, got[0].Attendees)
	assert.Equal(t, []string{"u1"}, got[1].Attendees)
	assert.Equal(t, "B", got[1].Name)
}

func TestUpdateParticipatedEvents(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(store.NewMemoryStore(), store.Strict)

	u := model.NewUser("u1", model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, repo.SaveAll(ctx, []*model.User{u}))

	u.AddParticipatedEvent("e1")
	require.NoError(t, repo.UpdateParticipatedEvents(ctx, u))
	u.AddParticipatedEvent("e2") // not persisted

	got, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []string{"e1"}, got[0].ParticipatedEvents)
}
