package system

import (
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/nudge/internal/cli"
	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/notifier"
)

type DaemonCmd struct {
	DryRun bool `help:"Log notifications instead of showing them."`
	Once   bool `help:"Print the scheduled triggers and exit."`
}

func (c *DaemonCmd) deliverer() notifier.Deliverer {
	logDeliverer := notifier.LogDeliverer{Logger: logger.With("component", "deliver")}
	if c.DryRun {
		return logDeliverer
	}

	return notifier.NewRateLimitedDeliverer(notifier.FallbackDeliverer{
		Primary:   notifier.NewTrayDeliverer(),
		Secondary: logDeliverer,
		Logger:    logger.With("component", "deliver"),
	}, constants.DeliveryRatePerSec, constants.DeliveryBurst)
}

func (c *DaemonCmd) Run(ctx *cli.Context) error {
	d := notifier.NewDaemon(ctx.Center, c.deliverer(), notifier.WithLogger(logger.With("component", "daemon")))

	if c.Once {
		if _, _, err := d.Sync(ctx.Ctx); err != nil {
			return err
		}
		printSchedule(d, time.Now())
		return nil
	}

	if !c.DryRun {
		if err := notifier.NewTrayDeliverer().Available(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠ Tray app unavailable, notifications will only be logged: %v\n", err)
		}
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", ctx.Center.StatePath())
	if err := d.Run(ctx.Ctx); err != nil && ctx.Ctx.Err() == nil {
		return err
	}
	return nil
}

func printSchedule(d *notifier.Daemon, now time.Time) {
	specs := d.Scheduled()
	if len(specs) == 0 {
		fmt.Println("No triggers scheduled.")
		return
	}

	for _, id := range d.Upcoming(now) {
		fmt.Printf("%-12s %s\n", specs[id], id)
	}
}
