package permission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/nudge/internal/constants"
	"github.com/julianstephens/nudge/internal/logger"
	"github.com/julianstephens/nudge/internal/notifier"
)

// ErrPermission is returned when notification permission has not been granted.
var ErrPermission = errors.New("notification permission not granted")

// Status is the result of querying the notification capability.
type Status struct {
	Authorized bool
	Denied     bool
}

// State is the gate's view of the permission lifecycle:
// unknown -> requested -> granted | denied.
type State struct {
	HasPermission       bool
	PermissionRequested bool
	PermissionDenied    bool
}

// Gate tracks and requests notification authorization.
type Gate struct {
	center notifier.Center

	mu    sync.RWMutex
	state State
}

func New(center notifier.Center) *Gate {
	return &Gate{center: center}
}

// CheckStatus queries the capability without prompting and records the result.
func (g *Gate) CheckStatus(ctx context.Context) (Status, error) {
	status, err := g.center.AuthorizationStatus(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read notification permission: %w", err)
	}

	st := Status{
		Authorized: status == constants.AuthorizationAuthorized,
		Denied:     status == constants.AuthorizationDenied,
	}
	g.record(st)
	return st, nil
}

// RequestAuthorization asks for alert and sound permission. The capability
// returns true immediately when permission is already granted.
func (g *Gate) RequestAuthorization(ctx context.Context) (bool, error) {
	granted, err := g.center.RequestAuthorization(ctx, notifier.Options{Alert: true, Sound: true})
	if err != nil {
		return false, fmt.Errorf("failed to request notification permission: %w", err)
	}

	g.record(Status{Authorized: granted, Denied: !granted})
	logger.Info("Notification permission requested", "granted", granted)
	return granted, nil
}

// State returns the last known permission state.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Require re-checks the capability and returns ErrPermission unless authorized.
func (g *Gate) Require(ctx context.Context) error {
	st, err := g.CheckStatus(ctx)
	if err != nil {
		return err
	}
	if !st.Authorized {
		return ErrPermission
	}
	return nil
}

func (g *Gate) record(st Status) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = State{
		HasPermission:       st.Authorized,
		PermissionRequested: st.Authorized || st.Denied,
		PermissionDenied:    st.Denied,
	}
}
