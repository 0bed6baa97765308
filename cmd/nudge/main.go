package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/cli/reminders"
	"github.com/julianstephens/nudge/internal/cli/system"
	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/errors"
	"github.com/julianstephens/nudge/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path or PostgreSQL connection string. Credentials must NOT be embedded in the connection string; use NUDGE_DB_CONNECTION, .pgpass or the OS keyring instead." default:"${default_config}" env:"NUDGE_CONFIG"`
	StateDir string `help:"Directory holding notification state and logs." type:"path" default:"${default_state_dir}" env:"NUDGE_STATE_DIR"`
	Title    string `help:"Notification title." default:"${default_title}" env:"NUDGE_TITLE"`
	Debug    bool   `help:"Log to stderr at debug level." env:"NUDGE_DEBUG"`

	Init       system.InitCmd       `cmd:"" help:"Initialize nudge storage."`
	Tui        system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Add        reminders.AddCmd     `cmd:"" help:"Set a daily or weekly reminder."`
	List       reminders.ListCmd    `cmd:"" help:"List reminders ordered by time of day."`
	Edit       reminders.EditCmd    `cmd:"" help:"Replace a reminder's schedule or message."`
	Delete     reminders.DeleteCmd  `cmd:"" help:"Delete a reminder and cancel its notification."`
	Permission system.PermissionCmd `cmd:"" help:"Inspect or request notification permission."`
	Daemon     system.DaemonCmd     `cmd:"" help:"Fire scheduled notifications until interrupted."`
	Doctor     system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Keyring    system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

// needsStore lists the commands that read or write reminders.
var needsStore = map[string]bool{
	"tui":    true,
	"add":    true,
	"list":   true,
	"edit":   true,
	"delete": true,
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Recurring daily and weekly reminders"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":           constants.Version,
			"default_config":    constants.DefaultConfigPath,
			"default_state_dir": constants.DefaultStateDir,
			"default_title":     constants.DefaultTitle,
		},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: CLI.StateDir,
		Stderr:    kctx.Command() == "daemon",
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	store, err := cli.OpenStore(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(ctx, store, cli.Options{
		StateDir: CLI.StateDir,
		Title:    CLI.Title,
	})

	if selected := kctx.Selected(); selected != nil && needsStore[selected.Name] {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	runErr := kctx.Run(appCtx)
	if err := appCtx.Close(); err != nil {
		logger.Warn("Failed to close cleanly", "error", err)
	}
	if runErr != nil {
		stop()
		errors.Fatal(runErr)
	}
}
