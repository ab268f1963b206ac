package app

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/ui"
)

// todoItem adapts model.Todo to bubbles/list.Item
type todoItem struct {
	todo model.Todo
}

func (i todoItem) Title() string       { return i.todo.Title }
func (i todoItem) Description() string { return "" }
func (i todoItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(todoItem)
	if !ok {
		return
	}
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	title := it.todo.Title
	if it.todo.Completed {
		box = t.Success.Render(t.BoxChecked)
		title = t.Done.Render(title)
	}
	id := t.Muted.Render(fmt.Sprintf("%3s", strconv.FormatUint(it.todo.ID, 10)))

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s", prefix, id, box, title)
}

func newList() list.Model {
	t := ui.Current()
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")
	l.KeyMap.Quit.SetEnabled(false)
	// h is the home anchor.
	l.KeyMap.PrevPage.SetKeys("left", "pgup", "b", "u")
	return l
}

func toItems(todos []model.Todo) []list.Item {
	items := make([]list.Item, 0, len(todos))
	for _, td := range todos {
		items = append(items, todoItem{todo: td})
	}
	return items
}

// stats counts done and pending todos for the header.
func stats(todos []model.Todo) (done, pending int) {
	for _, td := range todos {
		if td.Completed {
			done++
		} else {
			pending++
		}
	}
	return
}
