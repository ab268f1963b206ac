package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoview/internal/app"
	"github.com/idilsaglam/todoview/internal/config"
	"github.com/idilsaglam/todoview/internal/gateway"
	"github.com/idilsaglam/todoview/internal/logging"
	"github.com/idilsaglam/todoview/internal/model"
	"github.com/idilsaglam/todoview/internal/store/jsonstore"
	"github.com/idilsaglam/todoview/internal/ui"
)

// Options carries resolved configuration into the subcommands.
type Options struct {
	Config *config.Config

	// Gateway overrides the one built from Config.Endpoint.
	Gateway gateway.Gateway
	Stdout  io.Writer
	Stderr  io.Writer
}

func (o Options) stdout() io.Writer {
	if o.Stdout != nil {
		return o.Stdout
	}
	return os.Stdout
}

func (o Options) stderr() io.Writer {
	if o.Stderr != nil {
		return o.Stderr
	}
	return os.Stderr
}

func (o Options) gateway() (gateway.Gateway, error) {
	if o.Gateway != nil {
		return o.Gateway, nil
	}
	return gateway.New(o.Config.Endpoint, o.Config.Timeout.Duration)
}

// logger is used by the one-shot subcommands; the TUI logs to a file.
func (o Options) logger() *log.Logger {
	return logging.New(o.stderr(), logging.Options{
		Level:  o.Config.LogLevel,
		Format: o.Config.LogFormat,
		Prefix: "todo",
	})
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(args []string, opt Options) int {
	if opt.Config == nil {
		ui.FFail(opt.stderr(), "no configuration")
		return 1
	}
	ui.SetTheme(opt.Config.Theme)

	if len(args) == 0 {
		return doUI(opt)
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp(opt.stdout())
		return 0

	case "ui":
		return doUI(opt)

	case "ls":
		fs := flag.NewFlagSet("ls", flag.ContinueOnError)
		fs.SetOutput(opt.stderr())
		group := fs.Bool("group", false, "group output by pending/done")
		if err := fs.Parse(a); err != nil {
			return 2
		}
		return doList(opt, *group)

	case "show":
		if len(a) != 1 {
			ui.FFail(opt.stderr(), "usage: todo show <id>")
			return 2
		}
		n, err := strconv.Atoi(a[0])
		if err != nil {
			ui.FFail(opt.stderr(), "show: not a number: "+a[0])
			return 2
		}
		return doShow(opt, n)

	case "export":
		if len(a) != 1 {
			ui.FFail(opt.stderr(), "usage: todo export <file>")
			return 2
		}
		return doExport(opt, a[0])
	}

	ui.FFail(opt.stderr(), "unknown subcommand: "+cmd)
	fmt.Fprintln(opt.stderr())
	PrintHelp(opt.stderr())
	return 2
}

func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `todo - browse remote todos

Usage:
  todo [flags] [subcommand] [args]

Subcommands:
  ui                 Interactive browser (default)
  ls [-group]        Print all todos once
  show <id>          Print one todo
  export <file>      Fetch once and write the todos to a JSON file

Flags:
  -config <file>     TOML config (default ./todo.toml or ~/.config/todo/todo.toml)
  -endpoint <url>    Todos endpoint, http(s):// or file://
  -timeout <dur>     Per-request timeout
  -theme <name>      classic, neon or mono
  -path <path>       Initial route for ui, e.g. /todo/1
  -stale-guard       Ignore results of superseded fetches
  -log-level <lvl>   debug, info, warn or error
  -log-file <file>   Where ui writes its log

Keys (ui):
  r refresh   enter open   h home   : go to path   / filter   q quit
`)
}

// -------------- subcommand impls ----------------

func doUI(opt Options) int {
	gw, err := opt.gateway()
	if err != nil {
		ui.FFail(opt.stderr(), "gateway: "+err.Error())
		return 1
	}
	logger, closeLog, err := logging.Open(logging.Options{
		Level:      opt.Config.LogLevel,
		Format:     opt.Config.LogFormat,
		File:       opt.Config.LogFile,
		Timestamps: true,
	})
	if err != nil {
		ui.FFail(opt.stderr(), "log: "+err.Error())
		return 1
	}
	defer closeLog()

	root := app.New(gw,
		app.WithLogger(logger),
		app.WithTimeout(opt.Config.Timeout.Duration),
		app.WithStaleGuard(opt.Config.StaleGuard),
		app.WithStartPath(opt.Config.StartPath),
		app.WithRenderHook(func(s app.State) {
			logger.Debug("render", "loaded", s.Loaded, "todos", len(s.Todos))
		}),
	)
	logger.Info("starting", "endpoint", opt.Config.Endpoint, "path", opt.Config.StartPath)

	p := tea.NewProgram(root, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		ui.FFail(opt.stderr(), "tui: "+err.Error())
		return 1
	}
	return 0
}

func fetchAll(opt Options) ([]model.Todo, error) {
	gw, err := opt.gateway()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Config.Timeout.Duration)
	defer cancel()
	opt.logger().Debug("fetching todos", "endpoint", opt.Config.Endpoint)
	return gw.FetchTodos(ctx)
}

func doList(opt Options, group bool) int {
	todos, err := fetchAll(opt)
	if err != nil {
		ui.FFail(opt.stderr(), "fetch: "+err.Error())
		return 1
	}
	t := ui.Current()

	// Header + progress
	d, p := stats(todos)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(todos),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if group {
		lines = append(lines, groupLines(todos)...)
	} else {
		lines = append(lines, flatLines(todos)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: open one with `todo show <id>`"))
	ui.FPanel(opt.stdout(), lines)
	return 0
}

func doShow(opt Options, id int) int {
	gw, err := opt.gateway()
	if err != nil {
		ui.FFail(opt.stderr(), "gateway: "+err.Error())
		return 1
	}
	ctx, cancel := context.WithTimeout(context.Background(), opt.Config.Timeout.Duration)
	defer cancel()

	todo, err := gw.FetchTodo(ctx, id)
	if err != nil {
		ui.FFail(opt.stderr(), fmt.Sprintf("show %d: %s", id, err))
		return 1
	}
	t := ui.Current()
	status := t.Pending.Render("pending")
	if todo.Completed {
		status = t.Success.Render("done")
	}
	ui.FPanel(opt.stdout(), []string{
		t.Title.Render(fmt.Sprintf("Todo #%d", todo.ID)),
		"",
		t.Accent.Render("title  ") + todo.Title,
		t.Accent.Render("status ") + status,
		t.Accent.Render("user   ") + strconv.FormatUint(todo.UserID, 10),
	})
	return 0
}

func doExport(opt Options, path string) int {
	todos, err := fetchAll(opt)
	if err != nil {
		ui.FFail(opt.stderr(), "fetch: "+err.Error())
		return 1
	}
	if err := jsonstore.Save(path, todos); err != nil {
		ui.FFail(opt.stderr(), "save: "+err.Error())
		return 1
	}
	ui.FOK(opt.stdout(), fmt.Sprintf("exported %d todos to %s", len(todos), path))
	return 0
}

// -------------- rendering helpers --------------

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

func flatLines(todos []model.Todo) []string {
	t := ui.Current()
	if len(todos) == 0 {
		return []string{t.Muted.Render("no todos")}
	}
	out := make([]string, 0, len(todos))
	for _, td := range todos {
		idx := fmt.Sprintf("%3d.", td.ID)
		box := t.Muted.Render(t.BoxUnchecked)
		title := td.Title
		if len(title) > 80 {
			title = title[:77] + "..."
		}
		if td.Completed {
			box = t.Success.Render(t.BoxChecked)
			title = t.Done.Render(title)
		}
		out = append(out, fmt.Sprintf("%s %s %s", t.Muted.Render(idx), box, title))
	}
	return out
}

func groupLines(todos []model.Todo) []string {
	t := ui.Current()
	var pend, done []model.Todo
	for _, td := range todos {
		if td.Completed {
			done = append(done, td)
		} else {
			pend = append(pend, td)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
