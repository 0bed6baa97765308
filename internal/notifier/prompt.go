package notifier

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/nudge/internal/constants"
)

// ConfirmPrompter asks for permission with an interactive huh confirm dialog.
type ConfirmPrompter struct {
	input  io.Reader
	output io.Writer
}

func NewConfirmPrompter() *ConfirmPrompter {
	return &ConfirmPrompter{}
}

// WithInput sets the reader the dialog reads keys from.
func (p *ConfirmPrompter) WithInput(r io.Reader) *ConfirmPrompter {
	p.input = r
	return p
}

// WithOutput sets the writer the dialog renders to.
func (p *ConfirmPrompter) WithOutput(w io.Writer) *ConfirmPrompter {
	p.output = w
	return p
}

// Prompt returns false when the user declines or aborts the dialog.
func (p *ConfirmPrompter) Prompt(ctx context.Context, opts Options) (bool, error) {
	granted := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(`"` + constants.AppName + `" would like to send you notifications`).
				Description(describeOptions(opts)).
				Affirmative("Allow").
				Negative("Don't Allow").
				Value(&granted),
		),
	)
	if p.input != nil {
		form = form.WithInput(p.input)
	}
	if p.output != nil {
		form = form.WithOutput(p.output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return granted, nil
}

func describeOptions(opts Options) string {
	var parts []string
	if opts.Alert {
		parts = append(parts, "alerts")
	}
	if opts.Sound {
		parts = append(parts, "sounds")
	}
	if opts.Badge {
		parts = append(parts, "badges")
	}
	if len(parts) == 0 {
		return "Notifications may include reminders you schedule."
	}
	return "Notifications may include " + strings.Join(parts, ", ") + "."
}
