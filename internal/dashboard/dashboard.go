// Package dashboard is the interactive, line-oriented terminal front end. It
// shows one of three menus depending on who is logged in and reads numbered
// choices from its input until Close is chosen or the input ends.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Shivanand-hulikatti/eventspark/internal/i18n"
	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
	"github.com/Shivanand-hulikatti/eventspark/internal/model"
	"github.com/Shivanand-hulikatti/eventspark/internal/service"
)

const (
	rule         = "----------------------------------"
	clearScreen  = "\033[H\033[2J"
	defaultPause = 2 * time.Second
)

// errClosed ends the menu loop.
var errClosed = errors.New("dashboard closed")

// Backend is the part of the event service the dashboard drives.
type Backend interface {
	ListEvents() []*model.Event
	FindEvent(id string) (*model.Event, bool)
	CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error)
	RegisterUser(ctx context.Context, req model.RegisterUserRequest) (*model.User, error)
	LoginUser(email, password string) (*model.User, bool)
	LoginAdmin(name, password string) (*model.Admin, bool)
	SignUpForEvent(ctx context.Context, eventID string, user *model.User) error
	Participants(eventID string) ([]*model.User, error)
	ParticipatedEvents(user *model.User) []*model.Event
}

var _ Backend = (*service.EventService)(nil)

// PasswordReader reads one password without echoing it. It returns ctx.Err()
// if ctx ends first.
type PasswordReader func(ctx context.Context) (string, error)

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithPause sets how long status messages stay on screen before the next
// redraw. Zero disables the pause.
func WithPause(d time.Duration) Option {
	return func(db *Dashboard) { db.pause = d }
}

// WithPasswordReader replaces line input for password prompts.
func WithPasswordReader(r PasswordReader) Option {
	return func(db *Dashboard) { db.readPassword = r }
}

// Dashboard holds the session state: the logged-in user or admin, if any.
type Dashboard struct {
	svc          Backend
	lines        *lineReader
	out          io.Writer
	pause        time.Duration
	readPassword PasswordReader

	title lipgloss.Style
	head  lipgloss.Style

	user  *model.User
	admin *model.Admin
}

// New creates a Dashboard reading choices from in and writing to out.
func New(svc Backend, in io.Reader, out io.Writer, opts ...Option) *Dashboard {
	r := lipgloss.NewRenderer(out)
	d := &Dashboard{
		svc:   svc,
		lines: newLineReader(in),
		out:   out,
		pause: defaultPause,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#8655B1")).
			Width(len(rule)).
			Align(lipgloss.Center),
		head: r.NewStyle().Bold(true),
	}
	d.readPassword = d.lines.read
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Run shows menus until Close is chosen, the input ends or ctx is done. A
// prompt waiting for input is abandoned as soon as ctx ends, and Run then
// returns ctx.Err().
func (d *Dashboard) Run(ctx context.Context) error {
	defer d.lines.close()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		switch {
		case d.admin != nil:
			err = d.adminMenu(ctx)
		case d.user != nil:
			err = d.userMenu(ctx)
		default:
			err = d.mainMenu(ctx)
		}
		switch {
		case errors.Is(err, errClosed), errors.Is(err, io.EOF):
			d.println(i18n.T("app.goodbye"))
			return nil
		case err != nil && ctx.Err() != nil:
			// Leave the interrupted prompt's line.
			d.println("")
			d.println(i18n.T("app.goodbye"))
			return ctx.Err()
		case err != nil:
			return err
		}
	}
}

func (d *Dashboard) mainMenu(ctx context.Context) error {
	d.header(i18n.T("app.welcome"))
	d.listEvents()
	d.navbar("menu.login", "menu.signup", "menu.admin_login", "menu.close")

	choice, err := d.choice(ctx)
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		return d.login(ctx)
	case 2:
		return d.signUp(ctx)
	case 3:
		return d.adminLogin(ctx)
	case 4:
		return errClosed
	default:
		return d.invalid(ctx)
	}
}

func (d *Dashboard) userMenu(ctx context.Context) error {
	d.header(i18n.Tf("user.welcome_back", map[string]any{"Name": d.user.Name}))
	d.println(d.head.Render(i18n.T("events.participated")))
	for _, e := range d.svc.ParticipatedEvents(d.user) {
		d.println(i18n.Tf("events.participated_line", map[string]any{"ID": e.ID, "Name": e.Name, "Date": e.Date}))
	}
	d.println(rule)
	d.listEvents()
	d.navbar("menu.participate", "menu.logout", "menu.close")

	choice, err := d.choice(ctx)
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		return d.participate(ctx)
	case 2:
		d.user = nil
		return nil
	case 3:
		return errClosed
	default:
		return d.invalid(ctx)
	}
}

func (d *Dashboard) adminMenu(ctx context.Context) error {
	d.header(i18n.T("admin.welcome"))
	d.listEvents()
	d.navbar("menu.create_event", "menu.see_participants", "menu.logout", "menu.close")

	choice, err := d.choice(ctx)
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		return d.createEvent(ctx)
	case 2:
		return d.participants(ctx)
	case 3:
		d.admin = nil
		return nil
	case 4:
		return errClosed
	default:
		return d.invalid(ctx)
	}
}

func (d *Dashboard) login(ctx context.Context) error {
	email, err := d.prompt(ctx, "prompt.email")
	if err != nil {
		return err
	}
	password, err := d.promptPassword(ctx, "prompt.password")
	if err != nil {
		return err
	}
	if u, ok := d.svc.LoginUser(email, password); ok {
		d.user = u
		return d.status(ctx, i18n.T("user.login_ok"))
	}
	return d.status(ctx, i18n.T("user.login_failed"))
}

func (d *Dashboard) signUp(ctx context.Context) error {
	name, err := d.prompt(ctx, "prompt.name")
	if err != nil {
		return err
	}
	email, err := d.prompt(ctx, "prompt.email")
	if err != nil {
		return err
	}
	password, err := d.promptPassword(ctx, "prompt.password")
	if err != nil {
		return err
	}
	u, err := d.svc.RegisterUser(ctx, model.RegisterUserRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return d.failed(ctx, err)
	}
	d.user = u
	return d.status(ctx, i18n.T("user.signup_ok"))
}

func (d *Dashboard) adminLogin(ctx context.Context) error {
	name, err := d.prompt(ctx, "prompt.admin_name")
	if err != nil {
		return err
	}
	password, err := d.promptPassword(ctx, "prompt.admin_password")
	if err != nil {
		return err
	}
	if a, ok := d.svc.LoginAdmin(name, password); ok {
		d.admin = a
		return d.status(ctx, i18n.T("admin.login_ok"))
	}
	return d.status(ctx, i18n.T("admin.login_failed"))
}

func (d *Dashboard) participate(ctx context.Context) error {
	id, err := d.prompt(ctx, "prompt.event_id")
	if err != nil {
		return err
	}
	err = d.svc.SignUpForEvent(ctx, id, d.user)
	switch {
	case errors.Is(err, service.ErrEventNotFound):
		return d.status(ctx, i18n.T("error.invalid_event"))
	case err != nil:
		return d.failed(ctx, err)
	}
	e, _ := d.svc.FindEvent(id)
	return d.status(ctx, i18n.Tf("user.signed_up", map[string]any{"User": d.user.Name, "Event": e.Name}))
}

func (d *Dashboard) createEvent(ctx context.Context) error {
	var req model.CreateEventRequest
	for _, f := range []struct {
		id  string
		dst *string
	}{
		{"prompt.event_name", &req.Name},
		{"prompt.event_description", &req.Description},
		{"prompt.event_date", &req.Date},
		{"prompt.event_location", &req.Location},
	} {
		v, err := d.prompt(ctx, f.id)
		if err != nil {
			return err
		}
		*f.dst = v
	}
	if _, err := d.svc.CreateEvent(ctx, req); err != nil {
		return d.failed(ctx, err)
	}
	return d.status(ctx, i18n.T("admin.event_created"))
}

// participants looks up events until the admin enters b.
func (d *Dashboard) participants(ctx context.Context) error {
	for {
		id, err := d.prompt(ctx, "prompt.participants_event_id")
		if err != nil {
			return err
		}
		if strings.EqualFold(id, "b") {
			return nil
		}
		e, ok := d.svc.FindEvent(id)
		if !ok {
			d.println(i18n.T("error.invalid_event"))
			continue
		}
		if len(e.Attendees) == 0 {
			d.println(i18n.T("admin.no_participants"))
			continue
		}
		users, err := d.svc.Participants(id)
		if err != nil {
			return err
		}
		d.println(i18n.Tf("admin.participants_for", map[string]any{"ID": e.ID, "Name": e.Name}))
		for _, u := range users {
			d.println(i18n.Tf("admin.participant_line", map[string]any{"Name": u.Name, "Email": u.Email}))
		}
	}
}

func (d *Dashboard) header(greeting string) {
	fmt.Fprint(d.out, clearScreen)
	d.println(rule)
	d.println(d.title.Render(i18n.T("app.title")))
	d.println(rule)
	d.println(greeting)
	d.println(rule)
}

func (d *Dashboard) listEvents() {
	d.println(d.head.Render(i18n.T("events.available")))
	events := d.svc.ListEvents()
	if len(events) == 0 {
		d.println(i18n.T("events.none"))
	}
	for _, e := range events {
		d.println(i18n.Tf("events.line", map[string]any{"ID": e.ID, "Name": e.Name, "Date": e.Date}))
		d.println(i18n.Tf("events.details", map[string]any{"Description": e.Description, "Location": e.Location}))
		d.println(rule)
	}
	d.println(rule)
}

func (d *Dashboard) navbar(items ...string) {
	d.println(d.head.Render(i18n.T("menu.navbar")))
	for i, id := range items {
		d.println(fmt.Sprintf("%d. %s", i+1, i18n.T(id)))
	}
	d.println(rule)
}

// choice reads a menu number. Anything that is not a number yields 0.
func (d *Dashboard) choice(ctx context.Context) (int, error) {
	line, err := d.prompt(ctx, "menu.choice")
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, nil
	}
	return n, nil
}

func (d *Dashboard) invalid(ctx context.Context) error {
	return d.status(ctx, i18n.T("menu.invalid"))
}

func (d *Dashboard) failed(ctx context.Context, err error) error {
	logging.Errorf("dashboard: %v", err)
	return d.status(ctx, i18n.Tf("error.operation_failed", map[string]any{"Err": err}))
}

// status prints msg and holds it on screen for the configured pause.
func (d *Dashboard) status(ctx context.Context, msg string) error {
	d.println(msg)
	if d.pause <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.pause):
		return nil
	}
}

func (d *Dashboard) prompt(ctx context.Context, id string) (string, error) {
	fmt.Fprint(d.out, i18n.T(id))
	return d.lines.read(ctx)
}

func (d *Dashboard) promptPassword(ctx context.Context, id string) (string, error) {
	fmt.Fprint(d.out, i18n.T(id))
	return d.readPassword(ctx)
}

func (d *Dashboard) println(s string) {
	fmt.Fprintln(d.out, s)
}
