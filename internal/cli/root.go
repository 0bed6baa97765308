package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/keyring"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/notifier"
	"github.com/julianstephens/nudge/internal/permission"
	"github.com/julianstephens/nudge/internal/reminder"
	"github.com/julianstephens/nudge/internal/scheduler"
	"github.com/julianstephens/nudge/internal/storage"
	"github.com/julianstephens/nudge/internal/storage/postgres"
	"github.com/julianstephens/nudge/internal/storage/sqlite"
)

// Context carries the wired components to every command.
type Context struct {
	Ctx       context.Context
	Store     storage.Provider
	Center    *notifier.LocalCenter
	Gate      *permission.Gate
	Scheduler *scheduler.Scheduler
	Manager   *reminder.Manager
	StateDir  string
}

// Options configures NewContext.
type Options struct {
	StateDir string
	Title    string
	Prompter notifier.Prompter
}

// NewContext wires the notification center, permission gate, scheduler and
// reminder manager around store.
func NewContext(ctx context.Context, store storage.Provider, opts Options) *Context {
	if opts.Prompter == nil {
		opts.Prompter = notifier.NewConfirmPrompter()
	}

	center := notifier.NewLocalCenter(opts.StateDir, opts.Prompter)
	gate := permission.New(center)
	sched := scheduler.New(center, scheduler.WithTitle(opts.Title))

	return &Context{
		Ctx:       ctx,
		Store:     store,
		Center:    center,
		Gate:      gate,
		Scheduler: sched,
		Manager:   reminder.New(store, sched, gate),
		StateDir:  opts.StateDir,
	}
}

// Close drains in-flight trigger registrations and closes the store.
func (c *Context) Close() error {
	waitErr := c.Manager.Close(context.Background())
	return errors.Join(waitErr, c.Store.Close())
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func isPostgresConfig(config string) bool {
	return postgres.IsConnString(config) || strings.Contains(config, "host=")
}

// OpenStore selects the reminder store for config. A PostgreSQL connection
// string selects PostgreSQL and must not embed a password. With the default
// path, a connection string from NUDGE_DB_CONNECTION or the OS keyring wins
// over the local SQLite file.
func OpenStore(config string) (storage.Provider, error) {
	if isPostgresConfig(config) {
		if _, err := postgres.ValidateConnString(config); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("%w: use %s, .pgpass or 'nudge keyring set' instead",
					err, constants.DBConnectionEnvVar)
			}
			return nil, err
		}
		return postgres.New(config), nil
	}

	if config == constants.DefaultConfigPath {
		connStr, source, err := keyring.ResolveConnectionString("")
		switch {
		case err == nil:
			logger.Debug("Using PostgreSQL connection", "source", source)
			return postgres.New(connStr), nil
		case !errors.Is(err, keyring.ErrNotFound):
			return nil, err
		}
	}

	path, err := ExpandPath(config)
	if err != nil {
		return nil, err
	}
	return sqlite.NewStore(path), nil
}
