package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/auth"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/form"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// Options carry root flags and shared dependencies into every subcommand.
type Options struct {
	Group  bool // list grouped by pending/done
	Config config.Config
	Logger *log.Logger
	Auth   *auth.Store
	Stdin  io.Reader
}

func (o Options) withDefaults() Options {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Config.APIURL == "" {
		o.Config = config.Default()
	}
	return o
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, args []string, opt Options) int {
	opt = opt.withDefaults()
	if len(args) == 0 {
		PrintHelp()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		PrintHelp()
		return 0
	case "ls":
		return doInteractive(ctx, opt)
	case "list":
		return doList(ctx, a, opt)
	case "add":
		return doAdd(ctx, a, opt)
	case "show":
		return doShow(ctx, a, opt)
	case "done":
		return doSetComplete(ctx, a, opt, true)
	case "reopen":
		return doSetComplete(ctx, a, opt, false)
	case "edit":
		return doEdit(ctx, a, opt)
	case "rm":
		return doRemove(ctx, a, opt)
	case "serve":
		return doServe(ctx, a, opt)
	case "auth":
		return doAuth(a, opt)
	}

	ui.Fail("unknown subcommand: " + cmd)
	fmt.Fprintln(ui.Stderr)
	PrintHelp()
	return 2
}

func PrintHelp() {
	fmt.Fprint(ui.Stdout, `todo - a terminal client for the todo API

Usage:
  todo [--config file] [--api-url url] [--theme name] [--log-level level] [--group] <subcommand> [args]

Subcommands:
  ls                               Interactive list (add, toggle, edit, delete)
  list [--pending|--done]          Print todos, newest first
  add [-d desc] [-p prio] <title>  Create a todo (priority: low, medium, high)
  show <id>                        Print one todo
  done <id>                        Mark a todo complete
  reopen <id>                      Mark a todo incomplete
  edit <id> [--title t] [--desc d|--clear-desc] [-p prio] [--complete=bool] [--replace]
                                   Change fields (PATCH, or PUT with --replace)
  rm <id> [--yes]                  Delete a todo after confirmation
  serve [--addr a] [--store s] [--db path]
                                   Run the development backend
  auth login [token] | logout | status | whoami
                                   Manage the bearer token sent to the API

Examples:
  todo add -p high "Buy milk"
  todo list --group
  todo done 2
  todo rm 3
`)
}

// newClient points the REST client at the configured API, with the stored
// token when there is one.
func newClient(opt Options) *api.Client {
	var opts []api.Option
	if opt.Auth != nil {
		ti, err := opt.Auth.Token()
		switch {
		case err != nil:
			opt.Logger.Warn("ignoring stored credentials", "err", err)
		case ti != nil:
			if ti.Expired(timeNow()) {
				opt.Logger.Warn("token expired", "source", ti.Source, "expires_at", ti.ExpiresAt)
			}
			opts = append(opts, api.WithToken(ti.Token))
		}
	}
	return api.New(opt.Config.APIURL, opts...)
}

// parseID reads the leading <id> argument and returns the rest.
func parseID(cmd string, args []string) (int64, []string, int) {
	if len(args) == 0 {
		ui.Fail(fmt.Sprintf("usage: todo %s <id>", cmd))
		return 0, nil, 2
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		ui.Fail(fmt.Sprintf("%s: not a valid id: %s", cmd, args[0]))
		return 0, nil, 2
	}
	return id, args[1:], 0
}

// report prints a failure and picks the exit code for it.
func report(op string, err error, opt Options) int {
	var se *api.StatusError
	switch {
	case errors.Is(err, form.ErrEmptyTitle), errors.Is(err, model.ErrInvalidPriority):
		ui.Fail(op + ": " + err.Error())
		return 2
	case api.IsNotFound(err):
		ui.Fail(op + ": todo not found")
		ui.Hint("run `todo list` to see valid ids")
		return 1
	case errors.As(err, &se):
		ui.Fail(op + ": " + err.Error())
		return 1
	default:
		ui.Fail(op + ": " + err.Error())
		ui.Hint(fmt.Sprintf("is the API running at %s? start one with `todo serve`", opt.Config.APIURL))
		return 1
	}
}

// confirm asks a y/N question on stdin; anything but y or yes is a no.
func confirm(r io.Reader, question string) bool {
	fmt.Fprintf(ui.Stdout, "%s [y/N] ", question)
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
