package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/Shivanand-hulikatti/eventspark/internal/model"
	"github.com/Shivanand-hulikatti/eventspark/internal/repository"
	"github.com/Shivanand-hulikatti/eventspark/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingEvents wraps the real repository and fails chosen calls.
type failingEvents struct {
	*repository.EventRepository
	saveErr   error
	updateErr error
}

func (f *failingEvents) SaveAll(ctx context.Context, events []*model.Event) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.EventRepository.SaveAll(ctx, events)
}

func (f *failingEvents) UpdateAttendees(ctx context.Context, e *model.Event) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.EventRepository.UpdateAttendees(ctx, e)
}

// failingUsers wraps the real repository and fails chosen calls.
type failingUsers struct {
	*repository.UserRepository
	updateErr error
}

func (f *failingUsers) UpdateParticipatedEvents(ctx context.Context, u *model.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.UserRepository.UpdateParticipatedEvents(ctx, u)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newService(t *testing.T, s store.Store, mode store.LoadMode) *EventService {
	t.Helper()
	svc := NewEventService(
		repository.NewEventRepository(s, mode),
		repository.NewUserRepository(s, mode),
	)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestCreateEvent_ThenFind(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)

	created, err := svc.CreateEvent(ctx, model.CreateEventRequest{
		Name: "GoConf", Description: "talks", Date: "2026-11-02", Location: "Berlin",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Empty(t, created.Attendees)

	found, ok := svc.FindEvent(created.ID)
	require.True(t, ok)
	assert.Equal(t, created, found)

	_, ok = svc.FindEvent("nope")
	assert.False(t, ok)
}

func TestCreateEvent_AcceptsEmptyFields(t *testing.T) {
	svc := newService(t, store.NewMemoryStore(), store.Lenient)
	e, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{Date: "not a date"})
	require.NoError(t, err)
	assert.Equal(t, "", e.Name)
	assert.Equal(t, "not a date", e.Date)
}

func TestCreateEvent_PersistsWholeCollection(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	svc := newService(t, fs, store.Strict)

	a, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "B"})
	require.NoError(t, err)

	reloaded := newService(t, fs, store.Strict)
	assert.Equal(t, []*model.Event{a, b}, reloaded.ListEvents())
}

func TestCreateEvent_SaveFailureLeavesListUnchanged(t *testing.T) {
	s := store.NewMemoryStore()
	boom := errors.New("disk full")
	svc := NewEventService(
		&failingEvents{EventRepository: repository.NewEventRepository(s, store.Lenient), saveErr: boom},
		repository.NewUserRepository(s, store.Lenient),
	)

	_, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{Name: "A"})
	require.ErrorIs(t, err, boom)
	assert.Empty(t, svc.ListEvents())
}

func TestIDGenerator(t *testing.T) {
	s := store.NewMemoryStore()
	svc := NewEventService(
		repository.NewEventRepository(s, store.Lenient),
		repository.NewUserRepository(s, store.Lenient),
		withIDGenerator(sequentialIDs()),
	)
	e, err := svc.CreateEvent(context.Background(), model.CreateEventRequest{})
	require.NoError(t, err)
	u, err := svc.RegisterUser(context.Background(), model.RegisterUserRequest{})
	require.NoError(t, err)

	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, "id-2", u.ID)
}

func TestRegisterUser_ThenLogin(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)

	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "A", Email: "a@x", Password: "p"})
	require.NoError(t, err)
	assert.Empty(t, u.ParticipatedEvents)

	got, ok := svc.LoginUser("a@x", "p")
	require.True(t, ok)
	assert.Same(t, u, got)

	_, ok = svc.LoginUser("a@x", "wrong")
	assert.False(t, ok)
	_, ok = svc.LoginUser("A@x", "p")
	assert.False(t, ok)
}

func TestLoginUser_DuplicateEmailMatchesFirst(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)

	first, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "first", Email: "dup@x", Password: "p"})
	require.NoError(t, err)
	second, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "second", Email: "dup@x", Password: "p"})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, svc.ListUsers(), 2)

	got, ok := svc.LoginUser("dup@x", "p")
	require.True(t, ok)
	assert.Equal(t, "first", got.Name)
}

func TestLoginAdmin(t *testing.T) {
	svc := newService(t, store.NewMemoryStore(), store.Lenient)

	admin, ok := svc.LoginAdmin("admin", "admin123")
	require.True(t, ok)
	assert.Equal(t, "admin", admin.Name)

	for _, creds := range [][2]string{{"admin", "admin"}, {"Admin", "admin123"}, {"", ""}, {"root", "admin123"}} {
		_, ok := svc.LoginAdmin(creds[0], creds[1])
		assert.False(t, ok, "credentials %v", creds)
	}
}

func TestSignUpForEvent_UpdatesBothSidesAndPersists(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	svc := newService(t, fs, store.Strict)

	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "GoConf"})
	require.NoError(t, err)
	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana", Email: "ana@x", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, svc.SignUpForEvent(ctx, e.ID, u))
	assert.Equal(t, []string{u.ID}, e.Attendees)
	assert.Equal(t, []string{e.ID}, u.ParticipatedEvents)

	reloaded := newService(t, fs, store.Strict)
	re, ok := reloaded.FindEvent(e.ID)
	require.True(t, ok)
	assert.Equal(t, []string{u.ID}, re.Attendees)
	ru, ok := reloaded.LoginUser("ana@x", "pw")
	require.True(t, ok)
	assert.Equal(t, []string{e.ID}, ru.ParticipatedEvents)
}

func TestSignUpForEvent_RepeatAppendsAgain(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)
	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "GoConf"})
	require.NoError(t, err)
	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, err)

	require.NoError(t, svc.SignUpForEvent(ctx, e.ID, u))
	require.NoError(t, svc.SignUpForEvent(ctx, e.ID, u))

	assert.Equal(t, []string{u.ID, u.ID}, e.Attendees)
	assert.Equal(t, []string{e.ID, e.ID}, u.ParticipatedEvents)
}

func TestSignUpForEvent_MissingEventChangesNothing(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	svc := newService(t, fs, store.Strict)
	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "GoConf"})
	require.NoError(t, err)
	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, err)

	eventsBefore, err := os.ReadFile(fs.Path(store.EventsCollection))
	require.NoError(t, err)
	usersBefore, err := os.ReadFile(fs.Path(store.UsersCollection))
	require.NoError(t, err)

	err = svc.SignUpForEvent(ctx, "no-such-event", u)
	require.ErrorIs(t, err, ErrEventNotFound)

	assert.Empty(t, e.Attendees)
	assert.Empty(t, u.ParticipatedEvents)
	eventsAfter, err := os.ReadFile(fs.Path(store.EventsCollection))
	require.NoError(t, err)
	usersAfter, err := os.ReadFile(fs.Path(store.UsersCollection))
	require.NoError(t, err)
	assert.Equal(t, eventsBefore, eventsAfter)
	assert.Equal(t, usersBefore, usersAfter)
}

func TestSignUpForEvent_NilUser(t *testing.T) {
	svc := newService(t, store.NewMemoryStore(), store.Lenient)
	assert.ErrorIs(t, svc.SignUpForEvent(context.Background(), "x", nil), ErrUserRequired)
}

func TestSignUpForEvent_EventWriteFails(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	events := &failingEvents{EventRepository: repository.NewEventRepository(s, store.Strict)}
	users := repository.NewUserRepository(s, store.Strict)
	svc := NewEventService(events, users)

	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "GoConf"})
	require.NoError(t, err)
	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, err)

	boom := errors.New("read-only file system")
	events.updateErr = boom
	require.ErrorIs(t, svc.SignUpForEvent(ctx, e.ID, u), boom)

	assert.Empty(t, e.Attendees)
	assert.Empty(t, u.ParticipatedEvents)
	stored, err := users.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored[0].ParticipatedEvents)
}

func TestSignUpForEvent_UserWriteFailsKeepsEventSide(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	events := repository.NewEventRepository(s, store.Strict)
	users := &failingUsers{UserRepository: repository.NewUserRepository(s, store.Strict)}
	svc := NewEventService(events, users)

	e, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "GoConf"})
	require.NoError(t, err)
	u, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, err)

	boom := errors.New("disk full")
	users.updateErr = boom
	require.ErrorIs(t, svc.SignUpForEvent(ctx, e.ID, u), boom)

	assert.Equal(t, []string{u.ID}, e.Attendees)
	assert.Empty(t, u.ParticipatedEvents)
	stored, err := events.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{u.ID}, stored[0].Attendees)
}

func TestParticipantsAndParticipatedEvents(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)

	e1, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "one"})
	require.NoError(t, err)
	e2, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "two"})
	require.NoError(t, err)
	ana, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Ana"})
	require.NoError(t, err)
	bo, err := svc.RegisterUser(ctx, model.RegisterUserRequest{Name: "Bo"})
	require.NoError(t, err)

	require.NoError(t, svc.SignUpForEvent(ctx, e1.ID, bo))
	require.NoError(t, svc.SignUpForEvent(ctx, e1.ID, ana))
	require.NoError(t, svc.SignUpForEvent(ctx, e2.ID, ana))
	e1.AddAttendee("ghost")
	ana.AddParticipatedEvent("gone")

	people, err := svc.Participants(e1.ID)
	require.NoError(t, err)
	assert.Equal(t, []*model.User{bo, ana}, people)

	assert.Equal(t, []*model.Event{e1, e2}, svc.ParticipatedEvents(ana))
	assert.Nil(t, svc.ParticipatedEvents(nil))

	_, err = svc.Participants("missing")
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestLoad_CorruptEvents(t *testing.T) {
	fs := newFileStore(t)
	require.NoError(t, os.WriteFile(fs.Path(store.EventsCollection), []byte("{broken"), 0o600))

	lenient := newService(t, fs, store.Lenient)
	assert.Empty(t, lenient.ListEvents())

	strict := NewEventService(
		repository.NewEventRepository(fs, store.Strict),
		repository.NewUserRepository(fs, store.Strict),
	)
	err := strict.Load(context.Background())
	assert.ErrorIs(t, err, store.ErrCorrupt)
}

func TestCreateEvent_KeepsRecordsWithNumericFields(t *testing.T) {
	ctx := context.Background()
	fs := newFileStore(t)
	data := `[{"id":"a","name":"A","date":"2024-01-01","attendees":[]},{"id":"b","name":"B","date":20240101,"attendees":[]}]`
	require.NoError(t, os.WriteFile(fs.Path(store.EventsCollection), []byte(data), 0o600))

	svc := newService(t, fs, store.Lenient)
	require.Len(t, svc.ListEvents(), 2)
	_, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "C"})
	require.NoError(t, err)

	reloaded := newService(t, fs, store.Strict)
	a, ok := reloaded.FindEvent("a")
	require.True(t, ok)
	assert.Equal(t, "A", a.Name)
	b, ok := reloaded.FindEvent("b")
	require.True(t, ok)
	assert.Equal(t, "20240101", b.Date)
	assert.Len(t, reloaded.ListEvents(), 3)
}

func TestLoad_MissingFilesStartEmpty(t *testing.T) {
	svc := newService(t, newFileStore(t), store.Strict)
	assert.Empty(t, svc.ListEvents())
	assert.Empty(t, svc.ListUsers())
}

func TestListEvents_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, store.NewMemoryStore(), store.Lenient)
	_, err := svc.CreateEvent(ctx, model.CreateEventRequest{Name: "A"})
	require.NoError(t, err)

	list := svc.ListEvents()
	list[0] = nil
	assert.NotNil(t, svc.ListEvents()[0])
}
