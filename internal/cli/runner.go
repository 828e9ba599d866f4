package cli

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todoclient/internal/auth"
	"github.com/idilsaglam/todoclient/internal/model"
	"github.com/idilsaglam/todoclient/internal/tui"
	"github.com/idilsaglam/todoclient/internal/ui"
	"github.com/idilsaglam/todoclient/internal/view"
)

// Options tune output behavior from root flags.
type Options struct {
	Group bool // list grouped by pending/done

	Stdin          io.Reader
	Stdout, Stderr io.Writer
	Now            func() time.Time

	// Logger and LogFile are handed to the interactive list, which moves
	// log output off the terminal while it runs.
	Logger  *log.Logger
	LogFile string
	// Interactive runs the full-screen list. Defaults to tui.Run.
	Interactive func(*view.Controller) error
}

func (o *Options) defaults() {
	if o.Stdin == nil {
		o.Stdin = os.Stdin
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Interactive == nil {
		run := tui.RunOptions{Logger: o.Logger, LogFile: o.LogFile}
		o.Interactive = func(c *view.Controller) error { return tui.Run(c, run) }
	}
}

type runner struct {
	ctx  context.Context
	ctrl *view.Controller
	opt  Options
}

// Run dispatches subcommands and returns an exit code (0 ok, 1 error, 2 usage).
func Run(ctx context.Context, ctrl *view.Controller, args []string, opt Options) int {
	opt.defaults()
	r := &runner{ctx: ctx, ctrl: ctrl, opt: opt}
	if len(args) == 0 {
		r.help()
		return 2
	}
	cmd, a := args[0], args[1:]

	switch cmd {
	case "help", "-h", "--help":
		r.help()
		return 0

	case "ls":
		return r.list(a)

	case "upcoming":
		return r.upcoming()

	case "add":
		return r.add(a)

	case "done":
		if len(a) != 1 || strings.TrimSpace(a[0]) == "" {
			r.fail("usage: todo done <id>")
			return 2
		}
		return r.toggle(a[0])

	case "rm":
		if len(a) != 1 || strings.TrimSpace(a[0]) == "" {
			r.fail("usage: todo rm <id>")
			return 2
		}
		return r.remove(a[0])

	case "tui":
		if err := r.opt.Interactive(r.ctrl); err != nil {
			r.fail("tui: " + err.Error())
			return 1
		}
		return 0

	case "auth":
		if len(a) != 1 {
			r.fail("usage: todo auth <login|logout|status|whoami>")
			return 2
		}
		switch a[0] {
		case "login":
			return r.authLogin()
		case "logout":
			return r.authLogout()
		case "status":
			return r.authStatus()
		case "whoami":
			return r.authWhoAmI()
		}
		r.fail("usage: todo auth <login|logout|status|whoami>")
		return 2
	}

	r.fail("unknown subcommand: " + cmd)
	fmt.Fprintln(r.opt.Stderr)
	r.help()
	return 2
}

// PrintHelp writes usage to w.
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `todo - a client for the todos API

Usage:
  todo [-api url] [-timeout ms] [-theme name] [-group] <subcommand> [args]

Subcommands:
  ls [-status f] [-priority p] [-search q] [-sort k]
                     List todos (f: all|pending|completed|highPriority,
                     k: dateCreated|dueDate|priority|title)
  upcoming           List open todos with a due date from today on
  add [-desc d] [-due YYYY-MM-DD] [-priority low|medium|high] <title...>
                     Add a todo
  done <id>          Toggle completion of a todo
  rm <id>            Delete a todo
  tui                Interactive list
  auth <login|logout|status|whoami>   Token authentication

Examples:
  todo add -due 2026-10-20 -priority high "Pay rent"
  todo ls -status pending -sort dueDate
  todo done 65f1c0a2e4b0a1b2c3d4e5f6
`)
}

func (r *runner) help() { PrintHelp(r.opt.Stdout) }

func (r *runner) ok(msg string)   { ui.OK(r.opt.Stdout, msg) }
func (r *runner) fail(msg string) { ui.Fail(r.opt.Stderr, msg) }

func (r *runner) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(r.opt.Stderr)
	return fs
}

// ---------------------------------------------------
// Todo subcommands
// ---------------------------------------------------

func (r *runner) list(args []string) int {
	fs := r.flags("ls")
	status := fs.String("status", "", "status filter: all|pending|completed|highPriority")
	priority := fs.String("priority", "", "priority: low|medium|high")
	search := fs.String("search", "", "search text")
	sortBy := fs.String("sort", string(model.SortDateCreated), "sort key: dateCreated|dueDate|priority|title")
	group := fs.Bool("group", r.opt.Group, "group output by pending/done")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	f, err := model.ParseStatusFilter(*status)
	if err != nil {
		r.fail("ls: " + err.Error())
		return 2
	}
	k, err := model.ParseSortKey(*sortBy)
	if err != nil {
		r.fail("ls: " + err.Error())
		return 2
	}
	var p model.Priority
	if *priority != "" {
		if p, err = model.ParsePriority(*priority); err != nil {
			r.fail("ls: " + err.Error())
			return 2
		}
	}

	r.ctrl.Dispatch(view.FilterChanged{Filter: f})
	r.ctrl.Dispatch(view.SortChanged{SortBy: k})
	r.ctrl.Dispatch(view.PriorityChanged{Priority: p})
	r.ctrl.SetSearch(*search)
	s := r.ctrl.Load(r.ctx)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	ui.Panel(r.opt.Stdout, listLines(s, r.opt.Now(), *group))
	return 0
}

func (r *runner) upcoming() int {
	s := r.ctrl.LoadUpcoming(r.ctx)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	ui.Panel(r.opt.Stdout, upcomingLines(s.Upcoming, model.DateOf(r.opt.Now())))
	return 0
}

func (r *runner) add(args []string) int {
	fs := r.flags("add")
	desc := fs.String("desc", "", "description")
	due := fs.String("due", "", "due date (YYYY-MM-DD)")
	priority := fs.String("priority", string(model.PriorityMedium), "priority: low|medium|high")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	d := model.NewDraft()
	d.Title = strings.Join(fs.Args(), " ")
	d.Description = *desc
	if !d.Submittable() {
		r.fail("usage: todo add [-desc d] [-due YYYY-MM-DD] [-priority p] <title...>")
		return 2
	}
	var err error
	if d.Priority, err = model.ParsePriority(*priority); err != nil {
		r.fail("add: " + err.Error())
		return 2
	}
	if *due != "" {
		if d.DueDate, err = model.ParseDate(*due); err != nil {
			r.fail("add: due date must be YYYY-MM-DD")
			return 2
		}
	}

	before := len(r.ctrl.State().Todos)
	r.ctrl.SetDraft(d)
	s := r.ctrl.Create(r.ctx)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	if len(s.Todos) > before {
		r.ok("added " + s.Todos[len(s.Todos)-1].ID)
	}
	return 0
}

func (r *runner) toggle(id string) int {
	s := r.ctrl.Load(r.ctx)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	if _, found := s.Find(id); !found {
		r.fail("no todo with id " + id)
		fmt.Fprintln(r.opt.Stderr, ui.Dim("Hint: run `todo ls` to see ids"))
		return 2
	}
	s = r.ctrl.Toggle(r.ctx, id)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	t, _ := s.Find(id)
	r.ok("marked " + string(t.Status))
	return 0
}

func (r *runner) remove(id string) int {
	s := r.ctrl.Delete(r.ctx, id)
	if s.Err != "" {
		r.fail(s.Err)
		return 1
	}
	r.ok("removed")
	return 0
}

// ---------------------------------------------------
// Auth subcommands
// ---------------------------------------------------

func (r *runner) authLogin() int {
	fmt.Fprint(r.opt.Stdout, "Paste your token: ")
	sc := bufio.NewScanner(r.opt.Stdin)
	if !sc.Scan() {
		err := sc.Err()
		if err == nil {
			err = io.EOF
		}
		r.fail("read token: " + err.Error())
		return 1
	}
	if err := auth.SetToken(sc.Text(), nil); err != nil {
		r.fail("save token: " + err.Error())
		return 1
	}
	r.ok("logged in")
	return 0
}

func (r *runner) authLogout() int {
	ti, _ := auth.GetToken()
	if ti != nil && ti.Source == "env" {
		r.ok("token is provided by " + auth.EnvVar + " env var (nothing to delete)")
		return 0
	}
	if err := auth.DeleteToken(); err != nil {
		r.fail("logout: " + err.Error())
		return 1
	}
	r.ok("logged out")
	return 0
}

func (r *runner) authStatus() int {
	ti, err := auth.GetToken()
	if err != nil {
		r.fail(err.Error())
		return 1
	}
	w := r.opt.Stdout
	if ti == nil {
		fmt.Fprintln(w, ui.Dim("not logged in"))
		fmt.Fprintln(w, "Run: todo auth login")
		return 0
	}
	fmt.Fprintf(w, "source: %s\n", ti.Source)
	switch {
	case ti.ExpiresAt == nil:
		fmt.Fprintln(w, "expires: (unknown)")
	case ti.ExpiresAt.Before(r.opt.Now()):
		fmt.Fprintf(w, "expires: %s (expired)\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	default:
		fmt.Fprintf(w, "expires: %s\n", ti.ExpiresAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintln(w, "env override: "+auth.EnvVar)
	return 0
}

// whoami decodes a JWT locally (unverified); opaque tokens print basic info.
func (r *runner) authWhoAmI() int {
	ti, _ := auth.GetToken()
	if ti == nil {
		r.fail("not logged in. Run: todo auth login")
		return 2
	}
	w := r.opt.Stdout
	claims, err := auth.DecodeClaims(ti.Token)
	if err == nil {
		fmt.Fprintln(w, "JWT claims:")
		for _, line := range claimLines(claims) {
			fmt.Fprintln(w, "  "+line)
		}
		return 0
	}
	fmt.Fprintln(w, "Opaque token (cannot introspect locally).")
	fmt.Fprintln(w, "source:", ti.Source)
	return 0
}
