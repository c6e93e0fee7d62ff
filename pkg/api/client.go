/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package api is the console's single HTTP pipeline to the admin REST API.
// It attaches the bearer token, normalizes failures into *Error values and
// sends the operator back to login when the server rejects the token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL       = "https://secureguard-backend.onrender.com"
	DefaultTimeout       = 30 * time.Second
	DefaultRedirectDelay = time.Second

	healthTimeout   = 10 * time.Second
	maxErrorBody    = 64 << 10
	maxResponseBody = 16 << 20

	pathLogin   = "/api/admin/login"
	pathDevices = "/api/admin/devices"
	pathHealth  = "/health"

	headerRequestID = "X-Request-ID"
)

// Config controls how the client reaches the admin API.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	RedirectDelay time.Duration
	Store         session.Store
	Navigator     Navigator
	Logger        logger.Logger
	HTTP          *http.Client
}

// Client issues admin API calls. It is safe for concurrent use.
type Client struct {
	baseURL       *url.URL
	http          *http.Client
	store         session.Store
	nav           Navigator
	logger        logger.Logger
	redirectDelay time.Duration
	validate      *requestValidator

	afterFunc       func(d time.Duration, f func())
	redirectPending atomic.Bool
}

// New constructs a Client. A nil Navigator disables the login redirect; the
// token is still cleared on 401.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}

	parsed, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	delay := cfg.RedirectDelay
	if delay <= 0 {
		delay = DefaultRedirectDelay
	}

	store := cfg.Store
	if store == nil {
		store = session.NewMemoryStore(cfg.Logger)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Client{
		baseURL:       parsed,
		http:          httpClient,
		store:         store,
		nav:           cfg.Navigator,
		logger:        log,
		redirectDelay: delay,
		validate:      newRequestValidator(),
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}, nil
}

// BaseURL is the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Store exposes the token store the client reads on every request.
func (c *Client) Store() session.Store {
	return c.store
}

// Login authenticates an admin and persists the returned token.
func (c *Client) Login(ctx context.Context, adminID, password string) (*models.LoginResponse, error) {
	req := models.LoginRequest{AdminID: strings.TrimSpace(adminID), Password: password}

	if err := c.validate.check(&req); err != nil {
		return nil, err
	}

	body, err := c.do(ctx, http.MethodPost, pathLogin, &req, true)
	if err != nil {
		return nil, err
	}

	var resp models.LoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Kind: KindServer, Message: "Invalid login response", Err: fmt.Errorf("%w: %w", errDecodeResponse, err)}
	}

	if resp.Token == "" {
		return nil, &Error{Kind: KindServer, Message: "Login response did not include a token"}
	}

	if err := c.store.Set(ctx, resp.Token); err != nil {
		return nil, err
	}

	c.logger.Info().Str("admin_id", req.AdminID).Msg("Admin logged in")

	return &resp, nil
}

// Logout forgets the stored token. The server keeps no session to end.
func (c *Client) Logout(ctx context.Context) error {
	return c.store.Clear(ctx)
}

// ListDevices fetches the managed fleet, accepting any known envelope shape.
func (c *Client) ListDevices(ctx context.Context) ([]models.Device, error) {
	body, err := c.do(ctx, http.MethodGet, pathDevices, nil, true)
	if err != nil {
		return nil, err
	}

	list, err := DecodeDeviceList(body)
	if err != nil {
		apiErr := &Error{Kind: KindServer, Message: err.Error(), Err: err}

		var errResp models.ErrorResponse
		if json.Unmarshal(body, &errResp) == nil {
			if msg := firstNonEmpty(errResp.Message, errResp.Error); msg != "" {
				apiErr.Message = msg
			}
		}

		return nil, apiErr
	}

	for _, rec := range list.Skipped {
		c.logger.Warn().Err(rec.Err).Int("index", rec.Index).Str("device_id", rec.ID).Msg("Dropping malformed device record")
	}

	c.logger.Debug().Str("envelope", list.Shape).Int("count", len(list.Devices)).Msg("Fetched device list")

	return list.Devices, nil
}

// Lock locks a device.
func (c *Client) Lock(ctx context.Context, deviceID string) error {
	return c.Act(ctx, models.ActionLock, deviceID)
}

// Unlock unlocks a device.
func (c *Client) Unlock(ctx context.Context, deviceID string) error {
	return c.Act(ctx, models.ActionUnlock, deviceID)
}

// Wipe erases a device.
func (c *Client) Wipe(ctx context.Context, deviceID string) error {
	return c.Act(ctx, models.ActionWipe, deviceID)
}

// Act issues one device command. The response body is ignored.
func (c *Client) Act(ctx context.Context, action models.Action, deviceID string) error {
	req := models.ActionRequest{DeviceID: strings.TrimSpace(deviceID), Reason: action.Reason()}

	if err := c.validate.check(&req); err != nil {
		return err
	}

	if _, err := c.do(ctx, http.MethodPost, action.Path(), &req, true); err != nil {
		return err
	}

	c.logger.Info().Str("action", string(action)).Str("device_id", req.DeviceID).Msg("Device command accepted")

	return nil
}

// Health probes the API without credentials and returns the raw body.
func (c *Client) Health(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	return c.do(ctx, http.MethodGet, pathHealth, nil, false)
}

func (c *Client) endpoint(p string) string {
	u := *c.baseURL
	u.Path = path.Join(u.Path, p)

	return u.String()
}

// do runs one request through the pipeline and returns the body of a 2xx
// response. Every failure comes back as an *Error.
func (c *Client) do(ctx context.Context, method, p string, payload any, auth bool) ([]byte, error) {
	var reader io.Reader

	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errEncodeRequest, err)
		}

		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errEncodeRequest, err)
	}

	requestID := uuid.NewString()

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)

	if auth {
		token, ok, err := c.store.Get(ctx)
		if err != nil {
			c.logger.Warn().Err(err).Msg("Failed to read token; sending request unauthenticated")
		} else if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", p).
			Msg("Request failed without a response")

		return nil, &Error{Kind: KindNoConnection, Message: MsgNoConnection, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", p).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := normalizeHTTPError(resp.StatusCode, body)

		if apiErr.Kind == KindUnauthenticated && auth {
			c.handleUnauthorized(ctx)
		}

		return nil, apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, &Error{Kind: KindNoConnection, Message: MsgNoConnection, Err: err}
	}

	return body, nil
}

// handleUnauthorized clears the token and schedules a single redirect to
// login. 401s that arrive while a redirect is pending only clear the token.
func (c *Client) handleUnauthorized(ctx context.Context) {
	if err := c.store.Clear(context.WithoutCancel(ctx)); err != nil {
		c.logger.Error().Err(err).Msg("Failed to clear rejected token")
	}

	if c.nav == nil || c.nav.Current() == models.ViewLogin {
		return
	}

	if !c.redirectPending.CompareAndSwap(false, true) {
		return
	}

	c.logger.Info().Dur("delay", c.redirectDelay).Msg("Session rejected; redirecting to login")

	c.afterFunc(c.redirectDelay, func() {
		defer c.redirectPending.Store(false)

		if c.nav.Current() != models.ViewLogin {
			c.nav.Navigate(models.ViewLogin)
		}
	})
}

// wireError accepts both field/message and param/msg spellings.
type wireError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Errors  []struct {
		Field   string `json:"field"`
		Param   string `json:"param"`
		Path    string `json:"path"`
		Message string `json:"message"`
		Msg     string `json:"msg"`
	} `json:"errors"`
}

func normalizeHTTPError(status int, body []byte) *Error {
	apiErr := &Error{
		Kind:    classify(status),
		Status:  status,
		Message: fmt.Sprintf("HTTP error %d", status),
	}

	var w wireError
	if err := json.Unmarshal(body, &w); err != nil {
		return apiErr
	}

	if msg := firstNonEmpty(w.Message, w.Error); msg != "" {
		apiErr.Message = msg
	}

	for _, fe := range w.Errors {
		apiErr.Fields = append(apiErr.Fields, models.FieldError{
			Field:   firstNonEmpty(fe.Field, fe.Param, fe.Path),
			Message: firstNonEmpty(fe.Message, fe.Msg),
		})
	}

	return apiErr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
