package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/todoview/internal/cli"
	"github.com/idilsaglam/todoview/internal/config"
	"github.com/idilsaglam/todoview/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.Usage = func() { cli.PrintHelp(os.Stderr) }
	cfg, err := config.Load(fs, os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		ui.Fail("config: " + err.Error())
		os.Exit(2)
	}

	// Hand the remaining args to the CLI runner.
	code := cli.Run(fs.Args(), cli.Options{Config: cfg})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
