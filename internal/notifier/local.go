package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/logger"
)

// Prompter asks the user whether notifications may be shown.
type Prompter interface {
	Prompt(ctx context.Context, opts Options) (bool, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, opts Options) (bool, error)

func (f PrompterFunc) Prompt(ctx context.Context, opts Options) (bool, error) {
	return f(ctx, opts)
}

type centerState struct {
	Authorization constants.AuthorizationStatus `json:"authorization"`
	Pending       map[string]Request            `json:"pending"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

// LocalCenter is a file-backed Center. The state file is shared with the
// daemon, which reads it and fires the pending triggers.
type LocalCenter struct {
	path     string
	prompter Prompter

	mu sync.Mutex
}

// NewLocalCenter keeps its state in dir. A nil prompter makes authorization
// requests fail with ErrNoPrompter unless a decision is already recorded.
func NewLocalCenter(dir string, prompter Prompter) *LocalCenter {
	return &LocalCenter{
		path:     filepath.Join(dir, constants.DefaultStateFile),
		prompter: prompter,
	}
}

// StatePath returns the location of the state file.
func (c *LocalCenter) StatePath() string {
	return c.path
}

// SetPrompter replaces the prompter used by RequestAuthorization.
func (c *LocalCenter) SetPrompter(p Prompter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompter = p
}

func (c *LocalCenter) load() (centerState, error) {
	st := centerState{
		Authorization: constants.AuthorizationNotDetermined,
		Pending:       map[string]Request{},
	}

	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return st, nil
	}
	if err != nil {
		return st, fmt.Errorf("failed to read notification state: %w", err)
	}

	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("failed to parse notification state %s: %w", c.path, err)
	}
	if st.Pending == nil {
		st.Pending = map[string]Request{}
	}
	switch st.Authorization {
	case constants.AuthorizationAuthorized, constants.AuthorizationDenied:
	default:
		st.Authorization = constants.AuthorizationNotDetermined
	}
	return st, nil
}

// save writes the state atomically so the daemon never observes a partial file.
func (c *LocalCenter) save(st centerState) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode notification state: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".notifications-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write notification state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write notification state: %w", err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace notification state: %w", err)
	}
	return nil
}

func (c *LocalCenter) AuthorizationStatus(ctx context.Context) (constants.AuthorizationStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.load()
	if err != nil {
		return constants.AuthorizationNotDetermined, err
	}
	return st.Authorization, nil
}

// RequestAuthorization prompts only while the decision is undetermined. A
// recorded denial is returned as-is; Reset clears it.
func (c *LocalCenter) RequestAuthorization(ctx context.Context, opts Options) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.load()
	if err != nil {
		return false, err
	}

	switch st.Authorization {
	case constants.AuthorizationAuthorized:
		return true, nil
	case constants.AuthorizationDenied:
		return false, nil
	}

	if c.prompter == nil {
		return false, ErrNoPrompter
	}

	granted, err := c.prompter.Prompt(ctx, opts)
	if err != nil {
		return false, fmt.Errorf("permission prompt failed: %w", err)
	}

	st.Authorization = constants.AuthorizationDenied
	if granted {
		st.Authorization = constants.AuthorizationAuthorized
	}
	if err := c.save(st); err != nil {
		return false, err
	}

	logger.Info("Notification permission decided", "status", st.Authorization)
	return granted, nil
}

func (c *LocalCenter) Schedule(ctx context.Context, req Request) error {
	if err := req.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.load()
	if err != nil {
		return err
	}
	if st.Authorization != constants.AuthorizationAuthorized {
		return ErrNotAuthorized
	}

	st.Pending[req.ID] = req
	return c.save(st)
}

func (c *LocalCenter) Cancel(ctx context.Context, ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.load()
	if err != nil {
		return err
	}

	changed := false
	for _, id := range ids {
		if _, ok := st.Pending[id]; ok {
			delete(st.Pending, id)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return c.save(st)
}

// Pending returns the scheduled requests ordered by time of day, then ID.
func (c *LocalCenter) Pending(ctx context.Context) ([]Request, error) {
	c.mu.Lock()
	st, err := c.load()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}

	out := make([]Request, 0, len(st.Pending))
	for _, req := range st.Pending {
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Trigger, out[j].Trigger
		if a.Hour != b.Hour {
			return a.Hour < b.Hour
		}
		if a.Minute != b.Minute {
			return a.Minute < b.Minute
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Reset returns authorization to not-determined so the next request prompts
// again. Pending requests are kept.
func (c *LocalCenter) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, err := c.load()
	if err != nil {
		return err
	}
	st.Authorization = constants.AuthorizationNotDetermined
	return c.save(st)
}
