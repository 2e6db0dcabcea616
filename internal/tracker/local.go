package tracker

import (
	"context"

	"gorm.io/gorm"

	"miplata/internal/ledger"
	"miplata/internal/services"
	"miplata/internal/session"
)

// LocalAuth signs in against a database the tracker opens itself, without
// going through the HTTP API.
type LocalAuth struct {
	users    services.UserServicer
	sessions session.Broadcaster
}

var (
	_ session.Gateway = (*LocalAuth)(nil)
	_ Registerer      = (*LocalAuth)(nil)
)

// NewLocalAuth returns a LocalAuth over users.
func NewLocalAuth(users services.UserServicer) *LocalAuth {
	return &LocalAuth{users: users}
}

// Current returns the signed-in session, if any.
func (l *LocalAuth) Current() (session.Session, bool) {
	return l.sessions.Current()
}

// Subscribe registers fn for session changes.
func (l *LocalAuth) Subscribe(fn func(*session.Session)) func() {
	return l.sessions.Subscribe(fn)
}

// SignIn checks the password and starts a session.
func (l *LocalAuth) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	user, err := l.users.AttemptLogin(ctx, email, password)
	if err != nil {
		return session.Session{}, err
	}
	s := session.Session{UserID: user.ID, Email: user.Email}
	l.sessions.Set(&s)
	return s, nil
}

// Register creates a user and signs it in.
func (l *LocalAuth) Register(ctx context.Context, email, password, firstName, lastName string) (session.Session, error) {
	user, err := l.users.CreateUser(ctx, email, password, firstName, lastName)
	if err != nil {
		return session.Session{}, err
	}
	s := session.Session{UserID: user.ID, Email: user.Email}
	l.sessions.Set(&s)
	return s, nil
}

// SignOut ends the session.
func (l *LocalAuth) SignOut(context.Context) error {
	l.sessions.Set(nil)
	return nil
}

// LocalGateways returns a function that builds in-process storage gateways
// over db for a session.
func LocalGateways(db *gorm.DB) func(session.Session) ledger.Gateways {
	accounts := services.NewAccountService(db)
	transactions := services.NewTransactionService(db)
	installments := services.NewInstallmentService(db)
	return func(s session.Session) ledger.Gateways {
		return services.Gateways(s.UserID, accounts, transactions, installments)
	}
}

// LocalSummaries returns a function that builds storage-side summaries over
// db for a session, anchored on clock.
func LocalSummaries(db *gorm.DB, clock Clock) func(session.Session) Summarizer {
	svc := services.NewSummaryService(services.NewAccountService(db), services.NewTransactionService(db), nil)
	return func(s session.Session) Summarizer {
		return localSummary{summaries: svc, userID: s.UserID, clock: clock}
	}
}

type localSummary struct {
	summaries services.SummaryServicer
	userID    string
	clock     Clock
}

func (l localSummary) Summary(ctx context.Context, f ledger.Filter) (*ledger.Dashboard, error) {
	return l.summaries.GetSummary(ctx, l.userID, f, l.clock.Now())
}
