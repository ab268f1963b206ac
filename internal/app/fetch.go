package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/idilsaglam/todoview/internal/gateway"
	"github.com/idilsaglam/todoview/internal/model"
)

// RequestFetchMsg clears the list and issues a new fetch.
type RequestFetchMsg struct{}

// FetchCompletedMsg is delivered once per issued fetch. Err is set for
// every kind of failure; Todos is meaningful only when Err is nil.
type FetchCompletedMsg struct {
	FetchID    uuid.UUID
	Generation uint64
	Todos      []model.Todo
	Err        error
}

// Fetch identifies an in-flight request. The App keeps the latest one
// but never cancels or waits on it.
type Fetch struct {
	ID         uuid.UUID
	Generation uint64
	IssuedAt   time.Time
}

// RequestFetch is the command the refresh control emits.
func RequestFetch() tea.Msg { return RequestFetchMsg{} }

func fetchTodos(gw gateway.Gateway, f Fetch, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		todos, err := gw.FetchTodos(ctx)
		return FetchCompletedMsg{
			FetchID:    f.ID,
			Generation: f.Generation,
			Todos:      todos,
			Err:        err,
		}
	}
}
