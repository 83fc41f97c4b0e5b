package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/idilsaglam/tada/internal/api"
	"github.com/idilsaglam/tada/internal/form"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/page"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

const healthTimeout = 2 * time.Second

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(ui.Stderr)
	return fs
}

func doInteractive(ctx context.Context, opt Options) int {
	f, err := openLogFile(opt.Config)
	if err != nil {
		ui.Fail("ls: " + err.Error())
		return 1
	}
	defer f.Close()
	logger, err := NewLogger(f, opt.Config)
	if err != nil {
		ui.Fail("ls: " + err.Error())
		return 2
	}

	client := newClient(opt)
	hctx, cancel := context.WithTimeout(ctx, healthTimeout)
	herr := client.Health(hctx)
	cancel()
	if herr != nil {
		logger.Warn("api not reachable", "url", client.BaseURL(), "err", herr)
	}

	if err := tui.Run(ctx, client, tui.Options{Theme: opt.Config.Theme, Logger: logger}); err != nil {
		ui.Fail(err.Error())
		return 1
	}
	if herr != nil {
		ui.Hint(fmt.Sprintf("the API at %s did not answer; start one with `todo serve`", client.BaseURL()))
	}
	return 0
}

func doList(ctx context.Context, args []string, opt Options) int {
	fs := newFlagSet("list")
	pending := fs.Bool("pending", false, "only incomplete todos")
	done := fs.Bool("done", false, "only completed todos")
	group := fs.Bool("group", opt.Group, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *pending && *done {
		ui.Fail("list: --pending and --done are exclusive")
		return 2
	}

	var lo api.ListOptions
	switch {
	case *pending:
		lo.Complete = model.Ptr(false)
	case *done:
		lo.Complete = model.Ptr(true)
	}
	todos, err := newClient(opt).ListFiltered(ctx, lo)
	if err != nil {
		return report("list", err, opt)
	}
	ui.Panel(listLines(todos, *group))
	return 0
}

func doAdd(ctx context.Context, args []string, opt Options) int {
	fs := newFlagSet("add")
	desc := fs.String("d", "", "description")
	prio := fs.String("p", string(model.DefaultPriority), "priority: low, medium or high")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		ui.Fail("usage: todo add [-d desc] [-p priority] <title...>")
		return 2
	}
	priority, err := model.ParsePriority(*prio)
	if err != nil {
		return report("add", err, opt)
	}

	client := newClient(opt)
	f := form.CreateForm{Title: strings.Join(fs.Args(), " "), Description: *desc, Priority: priority}
	var created model.Todo
	err = f.Submit(ctx, func(ctx context.Context, data model.CreateTodoData) error {
		t, err := client.Create(ctx, data)
		created = t
		return err
	})
	if err != nil {
		return report("add", err, opt)
	}
	ui.OK(fmt.Sprintf("added #%d %s", created.ID, created.Title))
	return 0
}

func doShow(ctx context.Context, args []string, opt Options) int {
	id, _, code := parseID("show", args)
	if code != 0 {
		return code
	}
	t, err := newClient(opt).Get(ctx, id)
	if err != nil {
		return report("show", err, opt)
	}
	ui.Panel(detailLines(t))
	return 0
}

func doSetComplete(ctx context.Context, args []string, opt Options, complete bool) int {
	op, verb, mu := "reopen", "reopened", page.Reopen
	if complete {
		op, verb, mu = "done", "completed", page.Complete
	}
	id, _, code := parseID(op, args)
	if code != 0 {
		return code
	}
	return applyMutation(ctx, op, verb, mu(id), opt)
}

func doEdit(ctx context.Context, args []string, opt Options) int {
	id, rest, code := parseID("edit", args)
	if code != 0 {
		return code
	}
	fs := newFlagSet("edit")
	title := fs.String("title", "", "new title")
	desc := fs.String("desc", "", "new description (blank is ignored)")
	clearDesc := fs.Bool("clear-desc", false, "remove the description")
	prio := fs.String("p", "", "new priority")
	complete := fs.Bool("complete", false, "completion state")
	replace := fs.Bool("replace", false, "send a full update (PUT) instead of a patch")
	if err := fs.Parse(rest); err != nil {
		return 2
	}

	var data model.UpdateTodoData
	var bad error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			t, err := form.NormalizeTitle(*title)
			if err != nil {
				bad = err
			}
			data.Title = &t
		case "desc":
			data.Description = form.Optional(*desc)
		case "p":
			p, err := model.ParsePriority(*prio)
			if err != nil {
				bad = err
			}
			data.Priority = &p
		case "complete":
			data.IsComplete = model.Ptr(*complete)
		}
	})
	if bad != nil {
		return report("edit", bad, opt)
	}
	if *clearDesc {
		if data.Description != nil {
			ui.Fail("edit: --desc and --clear-desc are exclusive")
			return 2
		}
		data.Description = model.Ptr("")
	}
	if data.Empty() {
		ui.Fail("edit: nothing to change")
		ui.Hint("pass at least one of --title, --desc, --clear-desc, -p, --complete")
		return 2
	}

	mu := page.SaveEdit(id, data)
	if *replace {
		mu = page.Replace(id, data)
	}
	return applyMutation(ctx, "edit", "updated", mu, opt)
}

func doRemove(ctx context.Context, args []string, opt Options) int {
	id, rest, code := parseID("rm", args)
	if code != 0 {
		return code
	}
	fs := newFlagSet("rm")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	fs.BoolVar(yes, "y", false, "shorthand for --yes")
	if err := fs.Parse(rest); err != nil {
		return 2
	}
	if !*yes && !confirm(opt.Stdin, page.DeletePrompt) {
		ui.OK("kept")
		return 0
	}
	return applyMutation(ctx, "rm", "removed", page.Delete(id), opt)
}

// applyMutation sends one change through the page controller, which
// reloads the list afterwards, and prints the resulting row.
func applyMutation(ctx context.Context, op, verb string, mu page.Mutation, opt Options) int {
	ctrl := page.New(newClient(opt), opt.Logger)
	if err := ctrl.Apply(ctx, mu); err != nil {
		var re *page.ReloadError
		if !errors.As(err, &re) {
			return report(op, err, opt)
		}
		ui.OK(fmt.Sprintf("%s #%d", verb, mu.ID))
		ui.Hint("could not refresh the list: " + re.Err.Error())
		return 0
	}
	if t, ok := ctrl.Find(mu.ID); ok {
		ui.OK(fmt.Sprintf("%s #%d %s", verb, t.ID, t.Title))
		return 0
	}
	ui.OK(fmt.Sprintf("%s #%d", verb, mu.ID))
	return 0
}
