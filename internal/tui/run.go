package tui

import (
	"context"
	"fmt"
	"sync/atomic"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/omnimind/internal/controller"
)

// Notifier forwards controller state changes to a running program. Pass
// Notifier.Observe to controller.WithObserver before the program starts.
type Notifier struct {
	program atomic.Pointer[tea.Program]
}

// Observe is a controller.Observer. It never blocks, so it is safe to call
// from inside the update loop.
func (n *Notifier) Observe(controller.State) {
	if p := n.program.Load(); p != nil {
		go p.Send(stateChangedMsg{})
	}
}

// Run starts the interactive UI and blocks until the user quits.
func Run(ctx context.Context, opts Options, n *Notifier) error {
	model := NewModel(ctx, opts)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	if n != nil {
		n.program.Store(p)
		defer n.program.Store(nil)
	}

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}
	return nil
}
