// Package app is the root component: it owns the fetched todos, issues
// fetches and projects the current route through the router.
package app

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/idilsaglam/todoview/internal/gateway"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/route"
	"github.com/idilsaglam/todoview/internal/router"
	"github.com/idilsaglam/todoview/internal/views/detail"
)

// State is a snapshot of the component's data. Loaded is false while
// the todos are absent: before the first successful fetch and after
// every refresh request.
type State struct {
	Todos  []model.Todo
	Loaded bool
}

// Props is empty; the root component takes no external properties.
type Props struct{}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger used for fetch and render diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithRenderHook registers fn to be called with the current state on
// every render.
func WithRenderHook(fn func(State)) Option {
	return func(a *App) { a.renderHook = fn }
}

// WithStaleGuard drops completions of fetches that were superseded by a
// later request. Off by default: the last completion delivered wins.
func WithStaleGuard(enabled bool) Option {
	return func(a *App) { a.staleGuard = enabled }
}

// WithStartPath sets the initial navigation path.
func WithStartPath(path string) Option {
	return func(a *App) { a.startPath = path }
}

// WithTimeout bounds each fetch.
func WithTimeout(d time.Duration) Option {
	return func(a *App) { a.timeout = d }
}

// App implements tea.Model.
type App struct {
	gw         gateway.Gateway
	logger     *log.Logger
	renderHook func(State)
	staleGuard bool
	timeout    time.Duration
	startPath  string

	todos      []model.Todo
	loaded     bool
	pending    *Fetch
	generation uint64

	router  *router.Router
	detail  *detail.Model
	list    list.Model
	spinner spinner.Model
	pathBar textinput.Model
	editing bool
	help    help.Model
	keys    keyMap
	width   int
	height  int
}

func New(gw gateway.Gateway, opts ...Option) *App {
	a := &App{
		gw:        gw,
		logger:    log.New(io.Discard),
		startPath: "/",
		keys:      defaultKeyMap(),
		help:      help.New(),
		list:      newList(),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		pathBar:   textinput.New(),
		width:     80,
		height:    24,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.pathBar.Prompt = "path: "
	a.pathBar.Placeholder = "/todo/1"
	a.pathBar.CharLimit = 64
	a.router = router.New(a.startPath)
	a.resize()
	return a
}

// Init processes the initial RequestFetchMsg before the program
// delivers any other message, then resolves the start route.
func (a *App) Init() tea.Cmd {
	_, fetch := a.Handle(RequestFetchMsg{})
	return tea.Batch(fetch, a.spinner.Tick, a.project())
}

// Handle runs the fetch state machine. It reports render=true for every
// RequestFetchMsg and FetchCompletedMsg, whether or not the state
// changed, and render=false for messages it does not own.
func (a *App) Handle(msg tea.Msg) (render bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case RequestFetchMsg:
		return true, a.requestFetch()
	case FetchCompletedMsg:
		a.complete(msg)
		return true, nil
	}
	return false, nil
}

// SetProps reports whether new props need a render. There are no props,
// so never.
func (a *App) SetProps(Props) bool { return false }

// State returns a copy of the current data.
func (a *App) State() State {
	return State{Todos: slices.Clone(a.todos), Loaded: a.loaded}
}

// Pending returns the most recently issued fetch, if any.
func (a *App) Pending() *Fetch { return a.pending }

// Router exposes the navigation state.
func (a *App) Router() *router.Router { return a.router }

func (a *App) requestFetch() tea.Cmd {
	a.todos, a.loaded = nil, false
	a.list.SetItems(nil)
	a.generation++
	f := Fetch{ID: uuid.New(), Generation: a.generation, IssuedAt: time.Now()}
	a.pending = &f
	a.logger.Info("fetching todos", "fetch_id", f.ID, "generation", f.Generation)
	return fetchTodos(a.gw, f, a.timeout)
}

func (a *App) complete(msg FetchCompletedMsg) {
	if msg.Err != nil {
		a.logger.Debug("fetch failed", "fetch_id", msg.FetchID, "err", msg.Err)
		return
	}
	if a.staleGuard && msg.Generation < a.generation {
		a.logger.Debug("dropping superseded fetch", "fetch_id", msg.FetchID,
			"generation", msg.Generation, "latest", a.generation)
		return
	}
	todos := msg.Todos
	if todos == nil {
		todos = []model.Todo{}
	}
	a.todos, a.loaded = todos, true
	a.list.SetItems(toItems(todos))
	a.logger.Debug("todos loaded", "fetch_id", msg.FetchID, "count", len(todos))
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if render, cmd := a.Handle(msg); render {
		if _, ok := msg.(RequestFetchMsg); ok {
			cmd = tea.Batch(cmd, a.spinner.Tick)
		}
		return a, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.resize()
		return a, nil
	case router.NavigateMsg:
		return a, a.navigate(msg.Path)
	case detail.LoadedMsg:
		if a.detail == nil {
			return a, nil
		}
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		return a, cmd
	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	case tea.KeyMsg:
		return a, a.handleKey(msg)
	}

	var cmd tea.Cmd
	switch {
	case a.editing:
		a.pathBar, cmd = a.pathBar.Update(msg)
	case a.onHome():
		a.list, cmd = a.list.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	if a.editing {
		return a.handlePathKey(msg)
	}
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}
	// Let the list's filter input have every key while it is open.
	if a.onHome() && a.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		a.list, cmd = a.list.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, a.keys.Quit):
		return tea.Quit
	case key.Matches(msg, a.keys.Goto):
		a.editing = true
		a.pathBar.SetValue(a.router.Path())
		a.pathBar.CursorEnd()
		return a.pathBar.Focus()
	case key.Matches(msg, a.keys.Home):
		if a.onHome() && msg.String() == "backspace" {
			break
		}
		return router.Navigate("/")
	}

	if !a.onHome() {
		return nil
	}
	switch {
	case key.Matches(msg, a.keys.Refresh):
		return RequestFetch
	case key.Matches(msg, a.keys.Open):
		if it, ok := a.list.SelectedItem().(todoItem); ok {
			return router.Navigate(route.Detail{ID: int(it.todo.ID)}.Path())
		}
		return nil
	}
	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return cmd
}

func (a *App) handlePathKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		path := strings.TrimSpace(a.pathBar.Value())
		a.closePathBar()
		return router.Navigate(path)
	case tea.KeyEsc, tea.KeyCtrlC:
		a.closePathBar()
		return nil
	}
	var cmd tea.Cmd
	a.pathBar, cmd = a.pathBar.Update(msg)
	return cmd
}

func (a *App) closePathBar() {
	a.editing = false
	a.pathBar.SetValue("")
	a.pathBar.Blur()
}

// navigate switches the router and rebuilds the projected view. It never
// issues a list fetch.
func (a *App) navigate(path string) tea.Cmd {
	if !a.router.Navigate(path) {
		return nil
	}
	a.logger.Debug("navigate", "path", a.router.Path())
	return a.project()
}

// project builds the component for the current route.
func (a *App) project() tea.Cmd {
	a.detail = nil
	r, ok := a.router.Current()
	if !ok {
		return nil
	}
	if d, isDetail := r.(route.Detail); isDetail {
		a.detail = detail.New(a.gw, d.ID, a.timeout)
		return a.detail.Init()
	}
	return nil
}

func (a *App) onHome() bool {
	r, ok := a.router.Current()
	if !ok {
		return false
	}
	_, home := r.(route.Home)
	return home
}

func (a *App) resize() {
	// frame, nav bar, refresh button, header and help
	h := a.height - 12
	if h < 3 {
		h = 3
	}
	w := a.width - 4
	if w < 20 {
		w = 20
	}
	a.list.SetSize(w, h)
	a.help.Width = w
	a.pathBar.Width = w - len(a.pathBar.Prompt) - 1
}
