package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"miplata/internal/config"
	apperrors "miplata/internal/errors"
	"miplata/internal/logger"
	"miplata/internal/services"
	"miplata/internal/uuid"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateCookie  = "oauth_state"
	oauthStateMaxAge  = 300
)

// OAuthProvider is an external identity provider.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	FetchProfile(ctx context.Context, code string) (services.GoogleProfile, error)
}

// GoogleProvider signs users in with their Google account.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns a provider for the configured OAuth client, or
// nil when Google sign-in is not configured.
func NewGoogleProvider(cfg *config.Config) *GoogleProvider {
	if !cfg.GoogleEnabled() {
		return nil
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			RedirectURL:  cfg.GoogleRedirectURL,
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL returns the consent page URL.
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// FetchProfile exchanges code for a token and reads the user's profile.
func (p *GoogleProvider) FetchProfile(ctx context.Context, code string) (services.GoogleProfile, error) {
	var profile services.GoogleProfile

	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return profile, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return profile, err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return profile, fmt.Errorf("get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return profile, fmt.Errorf("get user info: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return profile, fmt.Errorf("decode user info: %w", err)
	}
	return profile, nil
}

// OAuthHandler handles external sign-in.
type OAuthHandler struct {
	provider    OAuthProvider
	userService services.UserServicer
	frontendURL string
}

// NewOAuthHandler creates a new OAuthHandler. A nil provider answers every
// request with OAUTH_NOT_CONFIGURED.
func NewOAuthHandler(provider OAuthProvider, userService services.UserServicer, frontendURL string) *OAuthHandler {
	return &OAuthHandler{
		provider:    provider,
		userService: userService,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (h *OAuthHandler) enabled() bool {
	return h.provider != nil
}

// GoogleLogin redirects to Google's consent page
// @Summary     Start Google sign-in
// @Description Redirect to the Google consent page
// @Tags        auth
// @Success     307 "Redirect to Google"
// @Failure     503 {object} ErrorResponse "Google sign-in not configured"
// @Router      /auth/google/login [get]
func (h *OAuthHandler) GoogleLogin(c *gin.Context) {
	if !h.enabled() {
		respondWithError(c, apperrors.ErrOAuthNotConfigured)
		return
	}

	state := uuid.New()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oauthStateCookie, state, oauthStateMaxAge, "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusTemporaryRedirect, h.provider.AuthCodeURL(state))
}

// GoogleCallback completes Google sign-in
// @Summary     Complete Google sign-in
// @Description Exchange the authorization code, sign the user in and redirect to the frontend with a token. Without a configured frontend the token is returned as JSON.
// @Tags        auth
// @Produce     json
// @Param       state query string true "OAuth state"
// @Param       code  query string true "Authorization code"
// @Success     200 {object} AuthResponse "User authenticated"
// @Success     307 "Redirect to the frontend"
// @Failure     400 {object} ErrorResponse "Invalid state"
// @Failure     403 {object} ErrorResponse "Email not verified"
// @Failure     409 {object} ErrorResponse "Email registered with a password"
// @Failure     502 {object} ErrorResponse "Provider error"
// @Router      /auth/google/callback [get]
func (h *OAuthHandler) GoogleCallback(c *gin.Context) {
	if !h.enabled() {
		respondWithError(c, apperrors.ErrOAuthNotConfigured)
		return
	}

	state, err := c.Cookie(oauthStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		h.fail(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid OAuth state"))
		return
	}
	c.SetCookie(oauthStateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	code := c.Query("code")
	if code == "" {
		h.fail(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Missing authorization code"))
		return
	}

	profile, err := h.provider.FetchProfile(c.Request.Context(), code)
	if err != nil {
		logger.Get().Warnw("google sign-in failed", "error", err)
		h.fail(c, apperrors.Wrap(apperrors.ErrOAuthFailed, err))
		return
	}

	user, err := h.userService.FindOrCreateGoogleUser(c.Request.Context(), profile)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp, err := issueSession(c, h.userService, user)
	if err != nil {
		h.fail(c, err)
		return
	}

	if h.frontendURL == "" {
		c.JSON(http.StatusOK, resp)
		return
	}
	q := url.Values{}
	q.Set("token", resp.Token)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/auth/google/callback?"+q.Encode())
}

// fail redirects to the frontend sign-in page with the error code, or
// answers with the error envelope when there is no frontend.
func (h *OAuthHandler) fail(c *gin.Context, err error) {
	if h.frontendURL == "" {
		respondWithError(c, err)
		return
	}
	code := apperrors.CodeOf(err)
	if code == "" {
		code = apperrors.ErrInternalServer.Code
	}
	q := url.Values{}
	q.Set("error", code)
	c.Redirect(http.StatusTemporaryRedirect, h.frontendURL+"/signin?"+q.Encode())
}
