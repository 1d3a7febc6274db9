package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"traitline/internal/engine"
)

// RunBoard opens the interactive research board. timerHours is used when a
// timer is started from the board.
func RunBoard(ctx context.Context, svc *engine.Service, out io.Writer, timerHours float64) error {
	m := newBoardModel(ctx, svc, timerHours)
	p := tea.NewProgram(m, tea.WithOutput(out), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
