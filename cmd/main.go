// cmd/main.go is the application entry point.
// It wires together all layers and runs the dashboard or a one-shot command.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Shivanand-hulikatti/eventspark/internal/config"
	"github.com/Shivanand-hulikatti/eventspark/internal/dashboard"
	"github.com/Shivanand-hulikatti/eventspark/internal/database"
	"github.com/Shivanand-hulikatti/eventspark/internal/i18n"
	"github.com/Shivanand-hulikatti/eventspark/internal/logging"
	"github.com/Shivanand-hulikatti/eventspark/internal/repository"
	"github.com/Shivanand-hulikatti/eventspark/internal/service"
	"github.com/Shivanand-hulikatti/eventspark/internal/store"
)

// skipStore marks commands that run without opening the store.
const skipStore = "eventspark/skip-store"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// A second interrupt kills the process if shutdown hangs.
	context.AfterFunc(ctx, stop)

	cmd, a := newRootCmd()
	err := execute(ctx, cmd, a)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		stop()
		os.Exit(130)
	default:
		logging.Errorf("%v", err)
		stop()
		os.Exit(1)
	}
}

// execute runs cmd and closes whatever store it opened, also when the
// command fails.
func execute(ctx context.Context, cmd *cobra.Command, a *app) error {
	err := cmd.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil {
		logging.Errorf("close store: %v", cerr)
		if err == nil {
			err = cerr
		}
	}
	return err
}

// app is the state shared by the root command and its subcommands.
type app struct {
	cfg   config.Config
	store store.Store
	svc   *service.EventService
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "eventspark",
		Short: "EventsPark is a small event registration tool.",
		Long: `EventsPark keeps a list of events and registered users, lets users
sign up for events and lets the administrator create events and see who
signed up.

Running without a subcommand launches the interactive dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return err
			}
			a.cfg = cfg
			logging.SetOutput(cmd.ErrOrStderr())
			if err := logging.SetLevel(cfg.LogLevel); err != nil {
				return err
			}
			i18n.Init(cfg.Language)
			if cmd.Annotations[skipStore] == "true" {
				return nil
			}
			return a.open(cmd.Context())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []dashboard.Option
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				opts = append(opts, dashboard.WithPasswordReader(terminalPassword(f, cmd.OutOrStdout())))
			} else {
				// Scripted input has nobody to read status messages.
				opts = append(opts, dashboard.WithPause(0))
			}
			d := dashboard.New(a.svc, cmd.InOrStdin(), cmd.OutOrStdout(), opts...)
			return d.Run(cmd.Context())
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/eventspark/eventspark.yaml)")
	cmd.PersistentFlags().String("data-dir", ".", "directory holding events.json and users.json")
	cmd.PersistentFlags().String("store", config.BackendFile, `storage backend ("file", "sqlite", "postgres", "memory")`)
	cmd.PersistentFlags().String("dsn", "", "database connection string for the sqlite and postgres backends")
	cmd.PersistentFlags().String("load-mode", string(store.Lenient), `how unreadable data is handled ("lenient", "strict")`)
	cmd.PersistentFlags().String("lang", "en", `dashboard language ("en", "de")`)
	cmd.PersistentFlags().String("log-level", "warn", `log level ("debug", "info", "warn", "error")`)

	cmd.AddCommand(
		newEventsCmd(a),
		newUsersCmd(a),
		newSignupCmd(a),
		newConfigCmd(),
	)
	return cmd, a
}

// open connects the configured store and loads the service state.
func (a *app) open(ctx context.Context) error {
	mode, err := a.cfg.Mode()
	if err != nil {
		return err
	}
	s, err := openStore(ctx, a.cfg)
	if err != nil {
		return err
	}
	a.store = s

	a.svc = service.NewEventService(
		repository.NewEventRepository(s, mode),
		repository.NewUserRepository(s, mode),
	)
	if err := a.svc.Load(ctx); err != nil {
		_ = a.close()
		return err
	}
	return nil
}

func (a *app) close() error {
	if a.store == nil {
		return nil
	}
	err := a.store.Close()
	a.store = nil
	return err
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := database.OpenSQLite(cfg.SQLiteDSN())
		if err != nil {
			return nil, err
		}
		s, err := store.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		logging.Debugf("using sqlite store %s", cfg.SQLiteDSN())
		return s, nil
	case config.BackendMemory:
		logging.Debugf("using memory store; nothing is persisted")
		return store.NewMemoryStore(), nil
	case config.BackendPostgres:
		pool, err := database.NewPool(ctx, cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		s, err := store.NewPostgresStore(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		logging.Debugf("using postgres store")
		return s, nil
	default:
		s, err := store.NewFileStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		logging.Debugf("using file store in %s", cfg.DataDir)
		return s, nil
	}
}
