package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"

	"github.com/idilsaglam/todoview/internal/router"
	"github.com/idilsaglam/todoview/internal/ui"
)

func (a *App) View() string {
	st := a.State()
	if a.renderHook != nil {
		a.renderHook(st)
	}
	t := ui.Current()

	var b strings.Builder
	b.WriteString(a.navBar())
	b.WriteString("\n\n")

	var keys help.KeyMap = pageKeys(a.keys)
	switch v := a.router.Project(st.Todos, st.Loaded).(type) {
	case router.ListView:
		keys = homeKeys(a.keys)
		b.WriteString(a.listView(v))
	case router.DetailView:
		b.WriteString(a.detailView(v))
	case router.NotFoundView:
		b.WriteString(t.Error.Render("no route for "+v.Path) + "\n")
		b.WriteString(t.Muted.Render("press h to go home") + "\n")
	}

	b.WriteString("\n")
	if a.editing {
		b.WriteString(a.pathBar.View())
	} else {
		b.WriteString(a.help.View(keys))
	}
	return ui.Frame(b.String())
}

// navBar holds the home anchor and the current path.
func (a *App) navBar() string {
	t := ui.Current()
	anchor := t.Accent.Underline(true).Render("Home")
	if a.onHome() {
		anchor = t.Title.Render("Home")
	}
	return anchor + "  " + t.Muted.Render(a.router.Path())
}

// listView renders the refresh control and the todos. An absent list
// renders as a placeholder, never as an error.
func (a *App) listView(v router.ListView) string {
	t := ui.Current()
	var b strings.Builder
	b.WriteString(t.Button.Render("refresh") + "\n")

	if !v.Loaded {
		b.WriteString(a.spinner.View() + " " + t.Muted.Render("loading todos...") + "\n")
		return b.String()
	}

	done, pending := stats(v.Todos)
	fmt.Fprintf(&b, "%s   %s %d  %s %d  %s %d\n",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), len(v.Todos),
	)
	b.WriteString(t.Muted.Render(ui.ProgressBar(done, done+pending, 28)) + "\n")
	if len(v.Todos) == 0 {
		b.WriteString(t.Muted.Render("no todos") + "\n")
		return b.String()
	}
	b.WriteString(a.list.View() + "\n")
	return b.String()
}

func (a *App) detailView(v router.DetailView) string {
	if a.detail == nil || a.detail.ID() != v.TodoID {
		return ui.Current().Muted.Render(fmt.Sprintf("loading todo %d...", v.TodoID)) + "\n"
	}
	return a.detail.View()
}
