package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	apperrors "miplata/internal/errors"
	"miplata/internal/logger"
	"miplata/internal/session"
)

type authResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (r authResponse) session() session.Session {
	return session.Session{
		UserID:    r.User.ID,
		Email:     r.User.Email,
		Token:     r.Token,
		ExpiresAt: r.ExpiresAt,
	}
}

// AuthGateway signs in against the API and keeps the client's bearer
// token in step with the current session. When the server rejects the
// token, subscribers see a sign-out.
type AuthGateway struct {
	client *Client
	store  *session.FileStore
	now    func() time.Time

	sessions session.Broadcaster
	storeMu  sync.Mutex
}

// NewAuthGateway returns a gateway over c. A non-nil store persists the
// session between runs.
func NewAuthGateway(c *Client, store *session.FileStore) *AuthGateway {
	g := &AuthGateway{client: c, store: store, now: time.Now}
	c.mu.Lock()
	c.onUnauthorized = func() { g.signedOut() }
	c.mu.Unlock()
	return g
}

var _ session.Gateway = (*AuthGateway)(nil)

// Current returns the signed-in session, if any.
func (g *AuthGateway) Current() (session.Session, bool) {
	return g.sessions.Current()
}

// Subscribe registers fn for session changes.
func (g *AuthGateway) Subscribe(fn func(*session.Session)) func() {
	return g.sessions.Subscribe(fn)
}

// SignIn authenticates with email and password.
func (g *AuthGateway) SignIn(ctx context.Context, email, password string) (session.Session, error) {
	var resp authResponse
	body := map[string]string{"email": email, "password": password}
	if err := g.client.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return session.Session{}, err
	}
	s := resp.session()
	g.signedIn(s)
	return s, nil
}

// Register creates a password account and signs it in.
func (g *AuthGateway) Register(ctx context.Context, email, password, firstName, lastName string) (session.Session, error) {
	var resp authResponse
	body := map[string]string{
		"email":      email,
		"password":   password,
		"first_name": firstName,
		"last_name":  lastName,
	}
	if err := g.client.do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return session.Session{}, err
	}
	s := resp.session()
	g.signedIn(s)
	return s, nil
}

// SignOut revokes the session on the server. The local session is dropped
// even when the server already considers it expired.
func (g *AuthGateway) SignOut(ctx context.Context) error {
	if _, ok := g.Current(); !ok {
		return nil
	}
	err := g.client.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil && !errors.Is(err, apperrors.ErrSessionExpired) && !errors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}
	g.signedOut()
	return nil
}

// Restore resumes a stored session if the server still accepts it.
func (g *AuthGateway) Restore(ctx context.Context) (session.Session, bool) {
	if g.store == nil {
		return session.Session{}, false
	}
	stored, err := g.store.Load()
	if err != nil {
		logger.Named("client").Warnw("could not read stored session", "error", err)
		return session.Session{}, false
	}
	if stored == nil || stored.Expired(g.now()) {
		return session.Session{}, false
	}

	g.client.SetToken(stored.Token)
	if err := g.client.do(ctx, http.MethodGet, "/profile", nil, nil); err != nil {
		g.client.SetToken("")
		if errors.Is(err, apperrors.ErrSessionExpired) || errors.Is(err, apperrors.ErrUnauthorized) {
			g.clearStore()
		}
		return session.Session{}, false
	}
	g.sessions.Set(stored)
	return *stored, true
}

func (g *AuthGateway) signedIn(s session.Session) {
	g.client.SetToken(s.Token)
	if g.store != nil {
		g.storeMu.Lock()
		if err := g.store.Save(s); err != nil {
			logger.Named("client").Warnw("could not store session", "error", err)
		}
		g.storeMu.Unlock()
	}
	g.sessions.Set(&s)
}

func (g *AuthGateway) signedOut() {
	g.client.SetToken("")
	g.clearStore()
	if _, ok := g.Current(); ok {
		g.sessions.Set(nil)
	}
}

func (g *AuthGateway) clearStore() {
	if g.store == nil {
		return
	}
	g.storeMu.Lock()
	defer g.storeMu.Unlock()
	if err := g.store.Clear(); err != nil {
		logger.Named("client").Warnw("could not clear stored session", "error", err)
	}
}
