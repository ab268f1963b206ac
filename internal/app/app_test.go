package app

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/todoview/internal/gateway"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/route"
	"github.com/idilsaglam/todoview/internal/router"
	"github.com/idilsaglam/todoview/internal/views/detail"
)

type stubGateway struct {
	todos       []model.Todo
	err         error
	listCalls   int
	detailCalls []int
}

func (s *stubGateway) FetchTodos(context.Context) ([]model.Todo, error) {
	s.listCalls++
	return s.todos, s.err
}

func (s *stubGateway) FetchTodo(_ context.Context, id int) (model.Todo, error) {
	s.detailCalls = append(s.detailCalls, id)
	for _, td := range s.todos {
		if int(td.ID) == id {
			return td, nil
		}
	}
	return model.Todo{}, gateway.ErrFetch
}

var (
	todoA = []model.Todo{{UserID: 1, ID: 1, Title: "a", Completed: false}}
	todoB = []model.Todo{
		{UserID: 2, ID: 2, Title: "buy milk", Completed: true},
		{UserID: 2, ID: 3, Title: "call mom", Completed: false},
	}
)

// collect runs cmd and any batched commands, returning their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func completions(msgs []tea.Msg) []FetchCompletedMsg {
	var out []FetchCompletedMsg
	for _, m := range msgs {
		if c, ok := m.(FetchCompletedMsg); ok {
			out = append(out, c)
		}
	}
	return out
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// loaded returns an App that has completed its first fetch with todos.
func loaded(t *testing.T, gw *stubGateway, opts ...Option) *App {
	t.Helper()
	a := New(gw, opts...)
	done := completions(collect(a.Init()))
	require.Len(t, done, 1)
	render, _ := a.Handle(done[0])
	require.True(t, render)
	require.True(t, a.State().Loaded)
	return a
}

// --- Init ---

func TestInit_IssuesExactlyOneFetch(t *testing.T) {
	gw := &stubGateway{todos: todoA}
	a := New(gw)
	assert.Nil(t, a.Pending(), "nothing issued before Init")

	cmd := a.Init()
	require.NotNil(t, a.Pending())
	assert.Equal(t, uint64(1), a.Pending().Generation)
	assert.Equal(t, State{}, a.State(), "todos are absent while the first fetch is in flight")

	done := completions(collect(cmd))
	require.Len(t, done, 1)
	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, a.Pending().ID, done[0].FetchID)
}

func TestInit_DetailStartPathResolvesDetail(t *testing.T) {
	gw := &stubGateway{todos: todoB}
	a := New(gw, WithStartPath("/todo/3"))

	msgs := collect(a.Init())
	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, []int{3}, gw.detailCalls)

	var found bool
	for _, m := range msgs {
		if l, ok := m.(detail.LoadedMsg); ok {
			found = true
			a.Update(l)
		}
	}
	require.True(t, found)
	assert.Contains(t, a.View(), "Todo #3")
}

// --- Fetch state machine ---

func TestFetchCompleted_SuccessReplacesState(t *testing.T) {
	a := New(&stubGateway{})
	a.Handle(RequestFetchMsg{})

	render, cmd := a.Handle(FetchCompletedMsg{Todos: todoA})
	assert.True(t, render)
	assert.Nil(t, cmd)
	assert.Equal(t, State{Todos: todoA, Loaded: true}, a.State())
}

func TestFetchCompleted_EmptyArrayIsLoaded(t *testing.T) {
	a := New(&stubGateway{})
	a.Handle(RequestFetchMsg{})

	a.Handle(FetchCompletedMsg{Todos: nil})
	assert.Equal(t, State{Todos: []model.Todo{}, Loaded: true}, a.State())
}

func TestFetchCompleted_FailureLeavesStateUnchanged(t *testing.T) {
	t.Run("from loaded", func(t *testing.T) {
		a := loaded(t, &stubGateway{todos: todoB})
		before := a.State()

		render, _ := a.Handle(FetchCompletedMsg{Err: gateway.ErrFetch})
		assert.True(t, render, "a failed fetch still asks for a render")
		assert.Equal(t, before, a.State())
	})

	t.Run("from absent", func(t *testing.T) {
		a := New(&stubGateway{})
		a.Handle(RequestFetchMsg{})

		render, _ := a.Handle(FetchCompletedMsg{Err: errors.New("boom"), Todos: todoA})
		assert.True(t, render)
		assert.Equal(t, State{}, a.State())
	})
}

func TestRequestFetch_ClearsSynchronously(t *testing.T) {
	gw := &stubGateway{todos: todoB}
	a := loaded(t, gw)
	require.Len(t, a.State().Todos, 2)

	render, cmd := a.Handle(RequestFetchMsg{})
	assert.True(t, render)
	require.NotNil(t, cmd)
	assert.Equal(t, State{}, a.State(), "cleared before any result arrives")
	assert.Equal(t, 1, gw.listCalls, "fetch runs only when the command runs")
}

func TestRequestFetch_ReplacesPendingHandle(t *testing.T) {
	a := New(&stubGateway{})
	a.Handle(RequestFetchMsg{})
	first := a.Pending()
	a.Handle(RequestFetchMsg{})
	second := a.Pending()

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Generation+1, second.Generation)
}

func TestHandle_IgnoresForeignMessages(t *testing.T) {
	a := New(&stubGateway{})
	render, cmd := a.Handle(tea.WindowSizeMsg{Width: 10, Height: 10})
	assert.False(t, render)
	assert.Nil(t, cmd)
}

func TestRace_LastDeliveredWins(t *testing.T) {
	a := New(&stubGateway{})
	_, first := a.Handle(RequestFetchMsg{})
	_, second := a.Handle(RequestFetchMsg{})
	require.NotNil(t, first)
	require.NotNil(t, second)

	a.Handle(FetchCompletedMsg{Generation: 1, Todos: todoA})
	a.Handle(FetchCompletedMsg{Generation: 2, Todos: todoB})
	assert.Equal(t, todoB, a.State().Todos)

	// The older request delivered last still wins.
	a.Handle(RequestFetchMsg{})
	a.Handle(RequestFetchMsg{})
	a.Handle(FetchCompletedMsg{Generation: 4, Todos: todoA})
	a.Handle(FetchCompletedMsg{Generation: 3, Todos: todoB})
	assert.Equal(t, todoB, a.State().Todos)
}

func TestRace_StaleGuardDropsSuperseded(t *testing.T) {
	a := New(&stubGateway{}, WithStaleGuard(true))
	a.Handle(RequestFetchMsg{})
	a.Handle(RequestFetchMsg{})

	render, _ := a.Handle(FetchCompletedMsg{Generation: 2, Todos: todoA})
	assert.True(t, render)
	render, _ = a.Handle(FetchCompletedMsg{Generation: 1, Todos: todoB})
	assert.True(t, render)
	assert.Equal(t, todoA, a.State().Todos)
}

func TestSetProps_NeverRenders(t *testing.T) {
	a := New(&stubGateway{})
	assert.False(t, a.SetProps(Props{}))
}

func TestState_IsACopy(t *testing.T) {
	a := loaded(t, &stubGateway{todos: todoB})
	st := a.State()
	st.Todos[0].Title = "mutated"
	assert.Equal(t, "buy milk", a.State().Todos[0].Title)
}

// --- Logging and render hook ---

func TestRequestFetch_LogsIntent(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	a := New(&stubGateway{}, WithLogger(logger))

	a.Handle(RequestFetchMsg{})
	assert.Contains(t, buf.String(), "fetching todos")

	a.Handle(FetchCompletedMsg{Err: gateway.ErrFetch})
	assert.Contains(t, buf.String(), "fetch failed")
}

func TestView_CallsRenderHook(t *testing.T) {
	var seen []State
	a := loaded(t, &stubGateway{todos: todoA}, WithRenderHook(func(s State) {
		seen = append(seen, s)
	}))

	a.View()
	a.View()
	require.Len(t, seen, 2)
	assert.Equal(t, State{Todos: todoA, Loaded: true}, seen[1])
}

// --- Rendering ---

func TestView_PlaceholderWhileAbsent(t *testing.T) {
	a := New(&stubGateway{})
	a.Init()
	view := a.View()
	assert.Contains(t, view, "loading todos")
	assert.Contains(t, view, "refresh")
}

func TestView_ListsTodos(t *testing.T) {
	a := loaded(t, &stubGateway{todos: todoB})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	view := a.View()
	assert.Contains(t, view, "Todos")
	assert.Contains(t, view, "buy milk")
	assert.Contains(t, view, "call mom")
	assert.NotContains(t, view, "loading todos")
}

func TestView_UnmatchedPath(t *testing.T) {
	a := New(&stubGateway{}, WithStartPath("/todo/abc"))
	a.Init()
	assert.Contains(t, a.View(), "no route for /todo/abc")
}

// --- Keys and navigation ---

func TestRefreshKey_EmitsOneRequest(t *testing.T) {
	a := loaded(t, &stubGateway{todos: todoA})

	_, cmd := a.Update(runeKey('r'))
	require.NotNil(t, cmd)
	assert.Equal(t, []tea.Msg{RequestFetchMsg{}}, collect(cmd))
}

func TestRefreshKey_OnlyOnHome(t *testing.T) {
	gw := &stubGateway{todos: todoA}
	a := loaded(t, gw)
	collect(a.navigate("/todo/1"))

	_, cmd := a.Update(runeKey('r'))
	assert.Nil(t, cmd)
}

func TestOpen_NavigatesToSelectedTodo(t *testing.T) {
	a := loaded(t, &stubGateway{todos: todoB})
	a.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, []tea.Msg{router.NavigateMsg{Path: "/todo/2"}}, collect(cmd))
}

func TestNavigate_DoesNotFetchList(t *testing.T) {
	gw := &stubGateway{todos: todoB}
	a := loaded(t, gw)
	before := a.State()

	_, cmd := a.Update(router.NavigateMsg{Path: "/todo/3"})
	cur, ok := a.Router().Current()
	require.True(t, ok)
	assert.Equal(t, route.Detail{ID: 3}, cur)

	for _, m := range collect(cmd) {
		a.Update(m)
	}
	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, []int{3}, gw.detailCalls)
	assert.Contains(t, a.View(), "Todo #3")

	// Home anchor goes back without fetching and keeps the list.
	_, cmd = a.Update(runeKey('h'))
	require.NotNil(t, cmd)
	msgs := collect(cmd)
	assert.Equal(t, []tea.Msg{router.NavigateMsg{Path: "/"}}, msgs)
	_, cmd = a.Update(msgs[0])
	assert.Nil(t, cmd)

	assert.Equal(t, 1, gw.listCalls)
	assert.Equal(t, before, a.State())
	assert.Equal(t, "/", a.Router().Path())
}

func TestNavigate_EachVisitBuildsFreshDetail(t *testing.T) {
	gw := &stubGateway{todos: todoB}
	a := loaded(t, gw)

	collect(a.navigate("/todo/2"))
	collect(a.navigate("/"))
	collect(a.navigate("/todo/2"))
	assert.Equal(t, []int{2, 2}, gw.detailCalls)
}

func TestPathBar(t *testing.T) {
	a := loaded(t, &stubGateway{todos: todoA})

	a.Update(runeKey(':'))
	require.True(t, a.editing)

	// keys go to the path bar, not the refresh control
	a.Update(runeKey('r'))
	assert.Equal(t, "/r", a.pathBar.Value())
	assert.True(t, a.State().Loaded)

	a.pathBar.SetValue("/todo/1")
	_, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, a.editing)
	assert.Equal(t, []tea.Msg{router.NavigateMsg{Path: "/todo/1"}}, collect(cmd))

	a.Update(runeKey(':'))
	_, cmd = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.editing)
	assert.Nil(t, cmd)
}

func TestQuit(t *testing.T) {
	a := New(&stubGateway{})
	_, cmd := a.Update(runeKey('q'))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}
