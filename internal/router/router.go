// Package router projects the current navigation path onto the view
// that should be shown.
package router

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/route"
)

// ViewDescriptor names the view to render and carries its inputs.
type ViewDescriptor interface {
	isView()
}

// ListView shows the todo collection. Loaded is false while the
// collection is absent.
type ListView struct {
	Todos  []model.Todo
	Loaded bool
}

// DetailView shows one todo, resolved by the detail component.
type DetailView struct {
	TodoID int
}

// NotFoundView is the fallback for paths no route matches.
type NotFoundView struct {
	Path string
}

func (ListView) isView()     {}
func (DetailView) isView()   {}
func (NotFoundView) isView() {}

// Compose maps a route to its view.
func Compose(r route.Route, todos []model.Todo, loaded bool) ViewDescriptor {
	switch r := r.(type) {
	case route.Home:
		return ListView{Todos: todos, Loaded: loaded}
	case route.Detail:
		return DetailView{TodoID: r.ID}
	}
	panic("router: unknown route type")
}

// NavigateMsg asks the router to switch to Path.
type NavigateMsg struct {
	Path string
}

// Navigate returns a command that emits a NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// HomeAnchor is the key that returns to "/". It never triggers a fetch.
var HomeAnchor = key.NewBinding(
	key.WithKeys("h", "backspace"),
	key.WithHelp("h", "home"),
)

// Router holds the current path. It has no other state: the route is
// recomputed from the path on every navigation.
type Router struct {
	path    string
	current route.Route
	matched bool
}

func New(path string) *Router {
	r := &Router{}
	r.Navigate(path)
	return r
}

// Navigate switches to path and reports whether the route changed.
// Navigating to the current path is a no-op.
func (r *Router) Navigate(path string) bool {
	if path == "" {
		path = "/"
	}
	next, ok := route.Match(path)
	if path == r.path && ok == r.matched {
		return false
	}
	r.path, r.current, r.matched = path, next, ok
	return true
}

// Path returns the current path verbatim.
func (r *Router) Path() string { return r.path }

// Current returns the active route; ok is false for unmatched paths.
func (r *Router) Current() (route.Route, bool) { return r.current, r.matched }

// Project composes the view for the current path.
func (r *Router) Project(todos []model.Todo, loaded bool) ViewDescriptor {
	if !r.matched {
		return NotFoundView{Path: r.path}
	}
	return Compose(r.current, todos, loaded)
}
