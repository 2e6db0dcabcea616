// Package client talks to the Mi Plata API over HTTP. It implements the
// session gateway and the ledger storage gateways, so the terminal client
// can run a Mutator against a remote server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	apperrors "miplata/internal/errors"
	"miplata/internal/logger"
)

const apiPrefix = "/api/v1"

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. http://localhost:8080.
	BaseURL string

	// HTTPClient is an optional custom HTTP client (for testing).
	HTTPClient *http.Client

	// Timeout bounds each request when HTTPClient is nil.
	Timeout time.Duration
}

// Client is a JSON client for the API. It carries the bearer token of the
// current session.
type Client struct {
	httpClient *http.Client
	baseURL    string

	mu             sync.RWMutex
	token          string
	onUnauthorized func()
}

// New creates a Client for cfg.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/") + apiPrefix,
	}
}

// SetToken sets the bearer token sent with every request. An empty token
// sends none.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorEnvelope is the API's error body.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// do sends body as JSON and decodes the response into out. Non-2xx
// responses come back as *apperrors.AppError with the server's code.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.currentToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Named("client").Debugw("request failed", "method", method, "path", path, "error", err)
		return apperrors.Wrap(apperrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		appErr := parseError(resp)
		if resp.StatusCode == http.StatusUnauthorized && c.currentToken() != "" {
			c.unauthorized()
		}
		return appErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) unauthorized() {
	c.mu.RLock()
	fn := c.onUnauthorized
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func parseError(resp *http.Response) *apperrors.AppError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var env errorEnvelope
	if err := json.Unmarshal(data, &env); err != nil || env.Error.Code == "" {
		return &apperrors.AppError{
			Code:       apperrors.ErrInternalServer.Code,
			Message:    fmt.Sprintf("unexpected response: %s", resp.Status),
			StatusCode: resp.StatusCode,
		}
	}
	return &apperrors.AppError{
		Code:       env.Error.Code,
		Message:    env.Error.Message,
		StatusCode: resp.StatusCode,
	}
}
