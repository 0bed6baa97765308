package notifier

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type recordingDeliverer struct {
	err       error
	delivered []Content
}

func (r *recordingDeliverer) Deliver(ctx context.Context, c Content) error {
	if r.err != nil {
		return r.err
	}
	r.delivered = append(r.delivered, c)
	return nil
}

func TestLogDeliverer(t *testing.T) {
	var buf bytes.Buffer
	d := LogDeliverer{Logger: log.New(&buf)}

	if err := d.Deliver(context.Background(), Content{Title: "T", Body: "drink water"}); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if !strings.Contains(buf.String(), "drink water") {
		t.Errorf("expected body in log output, got %q", buf.String())
	}

	if err := (LogDeliverer{}).Deliver(context.Background(), Content{}); err != nil {
		t.Errorf("nil logger should be a no-op, got %v", err)
	}
}

func TestFallbackDeliverer(t *testing.T) {
	ctx := context.Background()
	content := Content{Title: "T", Body: "B"}

	primary := &recordingDeliverer{}
	secondary := &recordingDeliverer{}
	d := FallbackDeliverer{Primary: primary, Secondary: secondary}
	if err := d.Deliver(ctx, content); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if len(primary.delivered) != 1 || len(secondary.delivered) != 0 {
		t.Errorf("expected primary only, got %d/%d", len(primary.delivered), len(secondary.delivered))
	}

	primary.err = ErrTrayUnavailable
	if err := d.Deliver(ctx, content); err != nil {
		t.Fatalf("expected fallback to succeed, got %v", err)
	}
	if len(secondary.delivered) != 1 {
		t.Errorf("expected secondary delivery, got %d", len(secondary.delivered))
	}

	secondary.err = errors.New("also broken")
	if err := d.Deliver(ctx, content); !errors.Is(err, ErrTrayUnavailable) {
		t.Errorf("expected primary error to be reported, got %v", err)
	}

	noFallback := FallbackDeliverer{Primary: primary}
	if err := noFallback.Deliver(ctx, content); !errors.Is(err, ErrTrayUnavailable) {
		t.Errorf("expected primary error without secondary, got %v", err)
	}
}

func TestRateLimitedDeliverer(t *testing.T) {
	next := &recordingDeliverer{}
	d := NewRateLimitedDeliverer(next, 1, 1)

	ctx := context.Background()
	if err := d.Deliver(ctx, Content{Body: "first"}); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}

	// The bucket is empty; a short deadline cannot wait a full second.
	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if err := d.Deliver(short, Content{Body: "second"}); err == nil {
		t.Error("expected rate limit to reject the immediate second delivery")
	}

	if len(next.delivered) != 1 {
		t.Errorf("expected exactly one delivery, got %d", len(next.delivered))
	}
}

func TestRateLimitedDeliverer_Defaults(t *testing.T) {
	d := NewRateLimitedDeliverer(&recordingDeliverer{}, 0, 0)
	if d.limiter.Burst() <= 0 {
		t.Errorf("expected a positive default burst, got %d", d.limiter.Burst())
	}
}
