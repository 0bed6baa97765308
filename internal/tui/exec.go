package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/nudge/internal/notifier"
)

// permissionExec runs the permission prompt while bubbletea has released the
// terminal.
type permissionExec struct {
	m      Model
	stdin  io.Reader
	stdout io.Writer
	result permissionMsg
}

func (e *permissionExec) SetStdin(r io.Reader)  { e.stdin = r }
func (e *permissionExec) SetStdout(w io.Writer) { e.stdout = w }
func (e *permissionExec) SetStderr(io.Writer)   {}

func (e *permissionExec) Run() error {
	if e.m.center != nil {
		p := notifier.NewConfirmPrompter()
		if e.stdin != nil {
			p = p.WithInput(e.stdin)
		}
		if e.stdout != nil {
			p = p.WithOutput(e.stdout)
		}
		e.m.center.SetPrompter(p)
	}

	if _, err := e.m.gate.RequestAuthorization(e.m.ctx); err != nil {
		e.result.err = err
		return err
	}
	e.result.status, e.result.err = e.m.gate.CheckStatus(e.m.ctx)
	return e.result.err
}

func (m Model) requestPermission() tea.Cmd {
	e := &permissionExec{m: m}
	return tea.Exec(e, func(err error) tea.Msg {
		if err != nil {
			return permissionMsg{err: err}
		}
		return e.result
	})
}
