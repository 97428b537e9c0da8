package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Shivanand-hulikatti/eventspark/internal/config"
	"github.com/Shivanand-hulikatti/eventspark/internal/dashboard"
	"github.com/Shivanand-hulikatti/eventspark/internal/i18n"
	"github.com/Shivanand-hulikatti/eventspark/internal/model"
)

var errInvalidCredentials = errors.New("invalid email or password")

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List and create events",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, e := range a.svc.ListEvents() {
				rows = append(rows, []string{e.ID, e.Name, e.Date, e.Location, fmt.Sprint(len(e.Attendees))})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "DATE", "LOCATION", "ATTENDEES"}, rows)
			return nil
		},
	}

	var req model.CreateEventRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.svc.CreateEvent(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("admin.event_created"))
			fmt.Fprintln(cmd.OutOrStdout(), e.ID)
			return nil
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "event name")
	create.Flags().StringVar(&req.Description, "description", "", "event description")
	create.Flags().StringVar(&req.Date, "date", "", "event date (YYYY-MM-DD)")
	create.Flags().StringVar(&req.Location, "location", "", "event location")
	_ = create.MarkFlagRequired("name")

	participants := &cobra.Command{
		Use:   "participants <event-id>",
		Short: "List the users signed up for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.svc.Participants(args[0])
			if err != nil {
				return fmt.Errorf("event %s: %w", args[0], err)
			}
			if len(users) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("admin.no_participants"))
				return nil
			}
			rows := make([][]string, 0, len(users))
			for _, u := range users {
				rows = append(rows, []string{u.ID, u.Name, u.Email})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL"}, rows)
			return nil
		},
	}

	cmd.AddCommand(list, create, participants)
	return cmd
}

func newUsersCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and register users",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all registered users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0)
			for _, u := range a.svc.ListUsers() {
				rows = append(rows, []string{u.ID, u.Name, u.Email, fmt.Sprint(len(u.ParticipatedEvents))})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "EMAIL", "EVENTS"}, rows)
			return nil
		},
	}

	var req model.RegisterUserRequest
	register := &cobra.Command{
		Use:   "register",
		Short: "Register a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFromFlagOrTerminal(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pw
			u, err := a.svc.RegisterUser(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), i18n.T("user.signup_ok"))
			fmt.Fprintln(cmd.OutOrStdout(), u.ID)
			return nil
		},
	}
	register.Flags().StringVar(&req.Name, "name", "", "user name")
	register.Flags().StringVar(&req.Email, "email", "", "user email")
	register.Flags().StringVar(&req.Password, "password", "", "user password (prompted when omitted on a terminal)")
	_ = register.MarkFlagRequired("email")

	cmd.AddCommand(list, register)
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signup <event-id>",
		Short: "Sign a user up for an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := passwordFromFlagOrTerminal(cmd, password)
			if err != nil {
				return err
			}
			u, ok := a.svc.LoginUser(email, pw)
			if !ok {
				return errInvalidCredentials
			}
			if err := a.svc.SignUpForEvent(cmd.Context(), args[0], u); err != nil {
				return fmt.Errorf("event %s: %w", args[0], err)
			}
			e, _ := a.svc.FindEvent(args[0])
			fmt.Fprintln(cmd.OutOrStdout(), i18n.Tf("user.signed_up", map[string]any{"User": u.Name, "Event": e.Name}))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email of the registered user")
	cmd.Flags().StringVar(&password, "password", "", "password of the registered user (prompted when omitted on a terminal)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage the configuration file",
		Annotations: map[string]string{skipStore: "true"},
	}

	var path string
	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipStore: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteFile(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "path", "", "where to write the file (default is the user config dir)")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

// passwordFromFlagOrTerminal returns flagValue, or prompts without echo when
// it is empty and stdin is a terminal.
func passwordFromFlagOrTerminal(cmd *cobra.Command, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return "", nil
	}
	fmt.Fprint(cmd.OutOrStdout(), i18n.T("prompt.password"))
	return terminalPassword(f, cmd.OutOrStdout())(cmd.Context())
}

// terminalPassword reads a password from the terminal f without echo. If ctx
// ends first the terminal state is restored and ctx.Err() returned.
func terminalPassword(f *os.File, out io.Writer) dashboard.PasswordReader {
	return func(ctx context.Context) (string, error) {
		fd := int(f.Fd())
		state, err := term.GetState(fd)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}

		type result struct {
			b   []byte
			err error
		}
		done := make(chan result, 1)
		go func() {
			b, err := term.ReadPassword(fd)
			done <- result{b, err}
		}()

		select {
		case <-ctx.Done():
			_ = term.Restore(fd, state)
			fmt.Fprintln(out)
			return "", ctx.Err()
		case r := <-done:
			fmt.Fprintln(out)
			if r.err != nil {
				return "", fmt.Errorf("read password: %w", r.err)
			}
			return string(r.b), nil
		}
	}
}
