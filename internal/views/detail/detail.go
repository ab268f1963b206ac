// Package detail renders a single todo looked up by id.
package detail

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoview/internal/gateway"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/ui"
)

// LoadedMsg carries the result of resolving a todo id.
type LoadedMsg struct {
	ID   int
	Todo model.Todo
	Err  error
}

// Model is the detail view for one id. A fresh Model is built on every
// navigation to a detail path.
type Model struct {
	id      int
	gw      gateway.Gateway
	timeout time.Duration

	todo *model.Todo
	err  error
}

func New(gw gateway.Gateway, id int, timeout time.Duration) *Model {
	return &Model{id: id, gw: gw, timeout: timeout}
}

func (m *Model) ID() int { return m.id }

// Init starts resolving the id.
func (m *Model) Init() tea.Cmd {
	gw, id, timeout := m.gw, m.id, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		todo, err := gw.FetchTodo(ctx, id)
		return LoadedMsg{ID: id, Todo: todo, Err: err}
	}
}

// Update consumes LoadedMsg for this id; anything else is ignored.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	loaded, ok := msg.(LoadedMsg)
	if !ok || loaded.ID != m.id {
		return m, nil
	}
	if loaded.Err != nil {
		m.err = loaded.Err
		return m, nil
	}
	todo := loaded.Todo
	m.todo, m.err = &todo, nil
	return m, nil
}

func (m *Model) Loading() bool { return m.todo == nil && m.err == nil }

func (m *Model) View() string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(t.Title.Render(fmt.Sprintf("Todo #%d", m.id)) + "\n\n")

	switch {
	case m.err != nil:
		b.WriteString(t.Error.Render(fmt.Sprintf("could not load todo %d", m.id)) + "\n")
		b.WriteString(t.Muted.Render(m.err.Error()) + "\n")
	case m.todo == nil:
		b.WriteString(t.Muted.Render("loading...") + "\n")
	default:
		status := t.Pending.Render(t.SymPending + " pending")
		title := m.todo.Title
		if m.todo.Completed {
			status = t.Success.Render(t.SymDone + " done")
			title = t.Done.Render(title)
		}
		fmt.Fprintf(&b, "  %s %s\n", t.Accent.Render("title "), title)
		fmt.Fprintf(&b, "  %s %s\n", t.Accent.Render("status"), status)
		fmt.Fprintf(&b, "  %s %d\n", t.Accent.Render("user  "), m.todo.UserID)
	}
	return b.String()
}
