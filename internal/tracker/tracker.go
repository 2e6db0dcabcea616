// Package tracker is the terminal front end. It owns one ledger.Mutator per
// signed-in session, renders dashboards from the in-memory ledger and asks
// before anything is deleted.
package tracker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"miplata/internal/format"
	"miplata/internal/ledger"
	"miplata/internal/logger"
	"miplata/internal/session"
)

// Clock supplies the current time to the filter engine.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Registerer is implemented by auth gateways that can create accounts.
type Registerer interface {
	Register(ctx context.Context, email, password, firstName, lastName string) (session.Session, error)
}

// Summarizer computes a dashboard on the storage side, from the stored
// records rather than the in-memory ledger.
type Summarizer interface {
	Summary(ctx context.Context, f ledger.Filter) (*ledger.Dashboard, error)
}

// Options configures an App.
type Options struct {
	In  io.Reader
	Out io.Writer

	Auth session.Gateway
	// Gateways returns the storage gateways for a signed-in session.
	Gateways func(session.Session) ledger.Gateways
	// Summaries is optional; without it the check command is unavailable.
	Summaries func(session.Session) Summarizer

	Clock    Clock
	Locale   string
	Currency string
}

// App is an interactive session over a Mutator.
type App struct {
	in        *bufio.Scanner
	out       io.Writer
	auth      session.Gateway
	gateways  func(session.Session) ledger.Gateways
	summaries func(session.Session) Summarizer
	clock     Clock
	locale    string
	currency  string
	label     ledger.MonthLabeler
	styles    styles

	ctx        context.Context
	mutator    *ledger.Mutator
	summarizer Summarizer
	filter     ledger.Filter

	// reported is the cause of the last error notification of the current
	// command; the command's returned error is not printed again.
	reported error
}

// New returns an App. Locale and Currency default to es-AR and ARS.
func New(opts Options) *App {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Locale == "" {
		opts.Locale = format.DefaultLocale
	}
	if opts.Currency == "" {
		opts.Currency = format.DefaultCurrency
	}
	return &App{
		in:        bufio.NewScanner(opts.In),
		out:       opts.Out,
		auth:      opts.Auth,
		gateways:  opts.Gateways,
		summaries: opts.Summaries,
		clock:     opts.Clock,
		locale:    opts.Locale,
		currency:  opts.Currency,
		label:     format.MonthLabeler(opts.Locale),
		styles:    newStyles(opts.Out),
		filter:    ledger.DefaultFilter(),
	}
}

// Run reads commands until quit or end of input.
func (a *App) Run(ctx context.Context) error {
	a.ctx = ctx
	unsubscribe := a.auth.Subscribe(a.sessionChanged)
	defer unsubscribe()

	if s, ok := a.auth.Current(); ok {
		a.sessionChanged(&s)
	} else {
		a.println(a.styles.muted.Render("Not signed in. Use: login <email>  or  register <email> <first> <last>"))
	}

	for {
		fmt.Fprint(a.out, a.styles.prompt.Render("miplata> "))
		line, ok := a.readLine()
		if !ok {
			a.println("")
			return a.in.Err()
		}
		args, err := splitArgs(line)
		if err != nil {
			a.printErr(err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" {
			return nil
		}
		a.reported = nil
		if err := a.dispatch(args); err != nil && !a.alreadyReported(err) {
			a.printErr(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// sessionChanged swaps the ledger on sign-in and drops it on sign-out.
func (a *App) sessionChanged(s *session.Session) {
	if s == nil {
		if a.mutator != nil {
			a.println(a.styles.warning.Render("Signed out."))
		}
		a.mutator = nil
		a.summarizer = nil
		a.filter = ledger.DefaultFilter()
		return
	}

	m := ledger.NewMutator(a.gateways(*s), ledger.NotifierFunc(a.notify))
	a.mutator = m
	if a.summaries != nil {
		a.summarizer = a.summaries(*s)
	}
	a.println(a.styles.success.Render("Signed in as " + s.Email))
	if err := m.Load(a.ctx); err != nil {
		logger.Named("tracker").Warnw("initial load failed", "error", err)
		return
	}
	a.showSummary()
}

func (a *App) notify(n ledger.Notification) {
	msg := n.Message
	if n.Err != nil {
		msg += ": " + n.Err.Error()
	}
	switch n.Level {
	case ledger.LevelError:
		a.reported = n.Err
		a.println(a.styles.errorText.Render("✗ " + msg))
	case ledger.LevelWarning:
		a.println(a.styles.warning.Render("! " + msg))
	default:
		a.println(a.styles.success.Render("✓ " + msg))
	}
}

func (a *App) alreadyReported(err error) bool {
	return a.reported != nil && errors.Is(err, a.reported)
}

var errSignedOut = errors.New("not signed in")

func (a *App) requireSession() (*ledger.Mutator, error) {
	if a.mutator == nil {
		return nil, errSignedOut
	}
	return a.mutator, nil
}

func (a *App) readLine() (string, bool) {
	if !a.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(a.in.Text()), true
}

// ask prints question and returns the answer line.
func (a *App) ask(question string) (string, bool) {
	fmt.Fprint(a.out, question)
	return a.readLine()
}

// confirm asks a yes/no question that defaults to no.
func (a *App) confirm(question string) bool {
	answer, ok := a.ask(question + " [y/N] ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "si", "sí":
		return true
	}
	return false
}

func (a *App) println(s string) {
	fmt.Fprintln(a.out, s)
}

func (a *App) printErr(err error) {
	a.println(a.styles.errorText.Render("Error: " + err.Error()))
}

// splitArgs splits line on spaces, keeping double-quoted runs together.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case (r == ' ' || r == '\t') && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}
