// Package cmd implements the magicshell command line.
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/magicshell/internal/app"
	"github.com/dshills/magicshell/internal/config"
)

// flags holds the settings given on the command line.
type flags struct {
	configPath string
	logLevel   string
	luaTimeout time.Duration
	shellSplit bool
}

// Execute runs the command line of the process.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the magicshell command tree.
func NewRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "magicshell [script]",
		Short: "Lua shell with magic commands",
		Long: `magicshell evaluates Lua and understands magic commands.

A line starting with %name runs a line magic, %%name runs a cell magic on
the lines that follow it up to a blank line and %%%name makes a cell magic
apply to every later cell. ?name shows help on a magic or a value.

Without a script magicshell reads cells from standard input. A script is
run cell by cell, cells separated by blank lines, and stops at the first
failing cell.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, f, args)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "settings file (.toml, .yaml or .yml)")
	pf.StringVar(&f.logLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.DurationVar(&f.luaTimeout, "lua-timeout", 0, "bound on one Lua evaluation, 0 disables it")
	pf.BoolVar(&f.shellSplit, "shell-split", false, "split magic arguments like a shell")

	root.AddCommand(newConfigCmd(f), newMagicsCmd(f), newVersionCmd())
	return root
}

// options turns the command line into application options. Flags given
// explicitly override the settings file and the environment.
func (f *flags) options(cmd *cobra.Command) app.Options {
	changed := cmd.Flags().Changed
	return app.Options{
		ConfigPath: f.configPath,
		Stdout:     cmd.OutOrStdout(),
		Stderr:     cmd.ErrOrStderr(),
		Configure: func(c *config.Config) {
			if changed("log-level") {
				c.Log.Level = f.logLevel
			}
			if changed("lua-timeout") {
				c.Lua.Timeout = config.Duration(f.luaTimeout)
			}
			if changed("shell-split") {
				c.Parser.ShellSplit = f.shellSplit
			}
		},
	}
}

func runShell(cmd *cobra.Command, f *flags, args []string) error {
	a, err := app.New(f.options(cmd))
	if err != nil {
		return err
	}
	defer a.Shutdown()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(args) == 1 {
		return a.RunScript(ctx, args[0])
	}

	if err := a.WatchConfig(); err != nil {
		a.Host().Logger().WithError(err).Warn("not watching the settings file")
	}

	in := cmd.InOrStdin()
	err = a.Run(ctx, in, isTerminal(in))
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func isTerminal(in any) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
