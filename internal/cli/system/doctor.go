package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/nudge/internal/backup"
	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/notifier"
	"github.com/julianstephens/nudge/internal/storage/sqlite"
)

type DoctorCmd struct {
	Fix bool `help:"Re-register missing triggers and cancel orphaned ones."`
}

// migrationChecker is implemented by stores backed by the migration runner.
type migrationChecker interface {
	PendingMigrations() (bool, error)
}

// trayCheck is swapped out in tests.
var trayCheck = func() error { return notifier.NewTrayDeliverer().Available() }

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	fmt.Println("Running diagnostics...")
	fmt.Println()

	hasError := false
	dbReachable := false

	if err := ctx.Store.Load(); err != nil {
		fail("Database reachable", err)
		hasError = true
	} else {
		pass("Database reachable")
		dbReachable = true
	}

	if dbReachable {
		if err := checkMigrationsComplete(ctx); err != nil {
			fail("Migrations complete", err)
			hasError = true
		} else {
			pass("Migrations complete")
		}
	} else {
		skip("Migrations complete")
	}

	authorized := false
	if st, err := ctx.Gate.CheckStatus(ctx.Ctx); err != nil {
		fail("Notification permission", err)
		hasError = true
	} else if !st.Authorized {
		warn("Notification permission", errors.New(describeStatus(st)))
	} else {
		pass("Notification permission")
		authorized = true
	}

	if dbReachable && authorized {
		missing, orphaned, err := checkTriggers(ctx)
		switch {
		case err != nil:
			fail("Triggers in sync", err)
			hasError = true
		case missing == 0 && orphaned == 0:
			pass("Triggers in sync")
		case cmd.Fix:
			registered, pruned, err := ctx.Manager.Resync(ctx.Ctx)
			if err != nil {
				fail("Triggers in sync", err)
				hasError = true
			} else {
				fmt.Printf("✓ Triggers in sync: FIXED (%d registered, %d pruned)\n", registered, pruned)
			}
		default:
			fail("Triggers in sync", fmt.Errorf("%d missing, %d orphaned (run 'nudge doctor --fix')", missing, orphaned))
			hasError = true
		}
	} else {
		skip("Triggers in sync")
	}

	if err := checkBackups(ctx); err != nil {
		warn("Backups present", err)
	} else {
		pass("Backups present")
	}

	if err := trayCheck(); err != nil {
		warn("Tray app", err)
	} else {
		pass("Tray app")
	}

	if err := checkClockTimezone(); err != nil {
		fail("Clock/timezone", err)
		hasError = true
	} else {
		pass("Clock/timezone")
	}

	fmt.Println()
	if hasError {
		return errors.New("diagnostics found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

func pass(name string) {
	fmt.Printf("✓ %s: OK\n", name)
}

func fail(name string, err error) {
	fmt.Printf("❌ %s: FAIL\n", name)
	fmt.Printf("   Error: %v\n", err)
}

func warn(name string, err error) {
	fmt.Printf("⚠ %s: WARNING\n", name)
	fmt.Printf("   %v\n", err)
}

func skip(name string) {
	fmt.Printf("⊘ %s: SKIPPED\n", name)
}

func checkMigrationsComplete(ctx *cli.Context) error {
	mc, ok := ctx.Store.(migrationChecker)
	if !ok {
		return nil
	}
	pending, err := mc.PendingMigrations()
	if err != nil {
		return err
	}
	if pending {
		return errors.New("database schema is behind, run 'nudge init'")
	}
	return nil
}

// checkTriggers compares stored reminders with pending triggers.
func checkTriggers(ctx *cli.Context) (missing, orphaned int, err error) {
	reminders, err := ctx.Store.GetAllReminders()
	if err != nil {
		return 0, 0, err
	}
	pending, err := ctx.Center.Pending(ctx.Ctx)
	if err != nil {
		return 0, 0, err
	}

	scheduled := make(map[string]bool, len(pending))
	for _, req := range pending {
		scheduled[req.ID] = true
	}
	owned := make(map[string]bool, len(reminders))
	for _, r := range reminders {
		owned[r.NotificationID] = true
		if !scheduled[r.NotificationID] {
			missing++
		}
	}
	for id := range scheduled {
		if !owned[id] {
			orphaned++
		}
	}
	return missing, orphaned, nil
}

// checkBackups only applies to SQLite; PostgreSQL backups are managed elsewhere.
func checkBackups(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return nil
	}
	backups, err := backup.NewManager(ctx.Store.GetConfigPath()).List()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return errors.New("no backups found (one is taken by 'nudge init --force')")
	}
	return nil
}

func checkClockTimezone() error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if zone, _ := now.Zone(); zone == "" {
		return errors.New("local time zone has no name")
	}
	return nil
}
