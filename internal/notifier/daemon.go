package notifier

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"

	"github.com/julianstephens/nudge/internal/constants"
)

type scheduledEntry struct {
	entryID cron.EntryID
	spec    string
	content Content
}

// Daemon fires the pending requests of a LocalCenter on their cron schedule
// and follows changes to the state file.
type Daemon struct {
	center    *LocalCenter
	deliverer Deliverer
	log       *log.Logger
	debounce  time.Duration
	location  *time.Location

	mu      sync.Mutex
	cron    *cron.Cron
	entries map[string]scheduledEntry
	runCtx  context.Context
}

type DaemonOption func(*Daemon)

// WithLogger sets the daemon logger. Without one, log output is discarded.
func WithLogger(l *log.Logger) DaemonOption {
	return func(d *Daemon) { d.log = l }
}

// WithDebounce sets how long the daemon waits after a state file change before resyncing.
func WithDebounce(wait time.Duration) DaemonOption {
	return func(d *Daemon) { d.debounce = wait }
}

// WithLocation evaluates triggers in loc instead of the local time zone.
func WithLocation(loc *time.Location) DaemonOption {
	return func(d *Daemon) { d.location = loc }
}

func NewDaemon(center *LocalCenter, deliverer Deliverer, opts ...DaemonOption) *Daemon {
	d := &Daemon{
		center:    center,
		deliverer: deliverer,
		debounce:  constants.StateReloadDebounce,
		entries:   map[string]scheduledEntry{},
		runCtx:    context.Background(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.log == nil {
		d.log = log.New(io.Discard)
	}
	cronOpts := []cron.Option{cron.WithChain(cron.Recover(d.cronLogger()))}
	if d.location != nil {
		cronOpts = append(cronOpts, cron.WithLocation(d.location))
	}
	d.cron = cron.New(cronOpts...)
	return d
}

func (d *Daemon) cronLogger() cron.Logger {
	return cron.PrintfLogger(d.log.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}))
}

// Sync reconciles the cron entries with the center's pending requests. When
// notifications are not authorized every entry is removed.
func (d *Daemon) Sync(ctx context.Context) (added, removed int, err error) {
	status, err := d.center.AuthorizationStatus(ctx)
	if err != nil {
		return 0, 0, err
	}

	desired := map[string]Request{}
	if status == constants.AuthorizationAuthorized {
		pending, err := d.center.Pending(ctx)
		if err != nil {
			return 0, 0, err
		}
		for _, req := range pending {
			desired[req.ID] = req
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for id, entry := range d.entries {
		req, ok := desired[id]
		if ok {
			spec, specErr := req.Trigger.CronSpec()
			if specErr == nil && spec == entry.spec && req.Content == entry.content {
				delete(desired, id)
				continue
			}
		}
		d.cron.Remove(entry.entryID)
		delete(d.entries, id)
		removed++
	}

	for id, req := range desired {
		spec, specErr := req.Trigger.CronSpec()
		if specErr != nil {
			d.log.Warn("Skipping invalid trigger", "id", id, "error", specErr)
			continue
		}

		content := req.Content
		entryID, addErr := d.cron.AddFunc(spec, func() { d.fire(id, content) })
		if addErr != nil {
			d.log.Warn("Failed to register trigger", "id", id, "spec", spec, "error", addErr)
			continue
		}
		d.entries[id] = scheduledEntry{entryID: entryID, spec: spec, content: content}
		added++
	}

	if added > 0 || removed > 0 {
		d.log.Info("Triggers synced", "added", added, "removed", removed, "active", len(d.entries), "authorization", status)
	}
	return added, removed, nil
}

// Scheduled returns the cron expression of every active trigger keyed by request ID.
func (d *Daemon) Scheduled() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[string]string, len(d.entries))
	for id, e := range d.entries {
		out[id] = e.spec
	}
	return out
}

// Upcoming lists active request IDs ordered by their next firing after from.
func (d *Daemon) Upcoming(from time.Time) []string {
	d.mu.Lock()
	type next struct {
		id string
		at time.Time
	}
	var list []next
	for id, e := range d.entries {
		schedule, err := cron.ParseStandard(e.spec)
		if err != nil {
			continue
		}
		list = append(list, next{id: id, at: schedule.Next(from)})
	}
	d.mu.Unlock()

	sort.Slice(list, func(i, j int) bool {
		if list[i].at.Equal(list[j].at) {
			return list[i].id < list[j].id
		}
		return list[i].at.Before(list[j].at)
	})

	ids := make([]string, len(list))
	for i, n := range list {
		ids[i] = n.id
	}
	return ids
}

func (d *Daemon) fire(id string, content Content) {
	d.mu.Lock()
	ctx := d.runCtx
	d.mu.Unlock()

	d.log.Debug("Trigger fired", "id", id)
	if err := d.deliverer.Deliver(ctx, content); err != nil {
		d.log.Error("Failed to deliver notification", "id", id, "error", err)
	}
}

// Run starts the cron scheduler, performs an initial sync and then resyncs
// whenever the state file changes. It blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	dir := filepath.Dir(d.center.StatePath())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create state watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	d.mu.Lock()
	d.runCtx = ctx
	d.mu.Unlock()

	if _, _, err := d.Sync(ctx); err != nil {
		d.log.Error("Initial sync failed", "error", err)
	}

	d.cron.Start()
	defer func() {
		<-d.cron.Stop().Done()
	}()

	d.log.Info("Daemon started", "state", d.center.StatePath(), "triggers", len(d.Scheduled()))
	return d.watch(ctx, watcher)
}

func (d *Daemon) watch(ctx context.Context, watcher *fsnotify.Watcher) error {
	base := filepath.Base(d.center.StatePath())

	var timer *time.Timer
	var reload <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			d.log.Info("Daemon stopping")
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("state watcher closed")
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(d.debounce)
			} else {
				timer.Reset(d.debounce)
			}
			reload = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("state watcher closed")
			}
			d.log.Warn("State watcher error", "error", err)

		case <-reload:
			reload = nil
			if _, _, err := d.Sync(ctx); err != nil {
				d.log.Error("Resync failed", "error", err)
			}
		}
	}
}
