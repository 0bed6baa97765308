package notifier

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/julianstephens/nudge/internal/constants"
)

// Deliverer surfaces fired notification content to the user.
type Deliverer interface {
	Deliver(ctx context.Context, c Content) error
}

// DelivererFunc adapts a function to Deliverer.
type DelivererFunc func(ctx context.Context, c Content) error

func (f DelivererFunc) Deliver(ctx context.Context, c Content) error {
	return f(ctx, c)
}

// LogDeliverer writes notifications to a logger instead of showing them.
type LogDeliverer struct {
	Logger *log.Logger
}

func (d LogDeliverer) Deliver(ctx context.Context, c Content) error {
	if d.Logger == nil {
		return nil
	}
	d.Logger.Info("Notification", "title", c.Title, "body", c.Body, "sound", c.Sound)
	return nil
}

// FallbackDeliverer tries Primary and hands the content to Secondary when it fails.
type FallbackDeliverer struct {
	Primary   Deliverer
	Secondary Deliverer
	Logger    *log.Logger
}

func (d FallbackDeliverer) Deliver(ctx context.Context, c Content) error {
	err := d.Primary.Deliver(ctx, c)
	if err == nil {
		return nil
	}
	if d.Logger != nil {
		d.Logger.Warn("Primary delivery failed, falling back", "error", err)
	}
	if d.Secondary == nil {
		return err
	}
	if ferr := d.Secondary.Deliver(ctx, c); ferr != nil {
		return fmt.Errorf("delivery failed: %w (fallback: %v)", err, ferr)
	}
	return nil
}

// RateLimitedDeliverer spaces out deliveries, e.g. when many triggers fire at
// once after the machine wakes.
type RateLimitedDeliverer struct {
	next    Deliverer
	limiter *rate.Limiter
}

func NewRateLimitedDeliverer(next Deliverer, perSecond float64, burst int) *RateLimitedDeliverer {
	if perSecond <= 0 {
		perSecond = constants.DeliveryRatePerSec
	}
	if burst <= 0 {
		burst = constants.DeliveryBurst
	}
	return &RateLimitedDeliverer{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (d *RateLimitedDeliverer) Deliver(ctx context.Context, c Content) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("delivery rate limit: %w", err)
	}
	return d.next.Deliver(ctx, c)
}
