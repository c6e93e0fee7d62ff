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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

const devicesBody = `{"success":true,"data":[
  {"deviceId":"dev-1","deviceName":"Pixel 8","deviceModel":"Pixel","isCompliant":true,"isConnected":true,
   "lastChecked":"2025-03-01T11:59:00Z","user":{"name":"Ravi","rollNo":"R-1"}},
  {"deviceId":"dev-2","deviceName":"Galaxy S24","isCompliant":false,
   "lastChecked":"2025-03-01T10:00:00Z","user":{"name":"Mina","rollNo":"R-2"}},
  {"deviceId":"dev-2","deviceName":"duplicate"}
]}`

type fakeServer struct {
	mu      sync.Mutex
	actions []models.ActionRequest
	paths   []string
	token   string
}

func (f *fakeServer) handler(t *testing.T) http.Handler {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","devices":2}` + "\n"))
	})
	mux.HandleFunc("/api/admin/login", func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if req.Password != "admin123" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid credentials"}`))

			return
		}

		_ = json.NewEncoder(w).Encode(models.LoginResponse{
			Token: f.token,
			Admin: &models.Admin{AdminID: req.AdminID, Name: "Ada Admin"},
		})
	})
	mux.HandleFunc("/api/admin/devices", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"No token"}`))

			return
		}

		_, _ = w.Write([]byte(devicesBody))
	})

	action := func(w http.ResponseWriter, r *http.Request) {
		var req models.ActionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		f.actions = append(f.actions, req)
		f.paths = append(f.paths, r.URL.Path)
		f.mu.Unlock()

		if req.DeviceID == "ghost" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Device not found"}`))

			return
		}

		_, _ = w.Write([]byte(`{"success":true}`))
	}
	mux.HandleFunc("/api/admin/lock", action)
	mux.HandleFunc("/api/admin/unlock", action)
	mux.HandleFunc("/api/admin/wipe", action)

	return mux
}

type cliHarness struct {
	runner *Runner
	store  session.Store
	out    *bytes.Buffer
	errOut *bytes.Buffer
	server *fakeServer
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"adminId": "ADM001",
		"exp":     exp.Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	return tok
}

func newCLIHarness(t *testing.T, stdin, token string) *cliHarness {
	t.Helper()

	log := logger.NewTestLogger()
	fs := &fakeServer{token: signedToken(t, time.Now().Add(time.Hour))}

	srv := httptest.NewServer(fs.handler(t))
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore(log)
	if token != "" {
		require.NoError(t, store.Set(context.Background(), token))
	}

	client, err := api.New(api.Config{BaseURL: srv.URL, Store: store, Logger: log})
	require.NoError(t, err)

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	r := NewRunner(Deps{
		Client: client,
		Store:  store,
		Logger: log,
		Out:    out,
		Err:    errOut,
		In:     strings.NewReader(stdin),
	})
	r.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	return &cliHarness{runner: r, store: store, out: out, errOut: errOut, server: fs}
}

func run(t *testing.T, h *cliHarness, args ...string) error {
	t.Helper()

	cfg, err := ParseFlags(args)
	require.NoError(t, err)

	return h.runner.Run(context.Background(), cfg)
}

func TestLoginStoresToken(t *testing.T) {
	h := newCLIHarness(t, "", "")

	require.NoError(t, run(t, h, "login", "-id", "ADM001", "-password", "admin123"))
	assert.Contains(t, h.out.String(), "Logged in as Ada Admin")
	assert.Contains(t, h.out.String(), "Session expires")

	token, ok, err := h.store.Get(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, h.server.token, token)
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newCLIHarness(t, "admin123\n", "")

	require.NoError(t, run(t, h, "login", "-id", "ADM001"))
	assert.Contains(t, h.out.String(), "Logged in")
}

func TestLoginPromptsOnTerminal(t *testing.T) {
	h := newCLIHarness(t, "", "")

	var prompted string

	h.runner.deps.Terminal = true
	h.runner.deps.ReadSecret = func(prompt string) (string, error) {
		prompted = prompt

		return "admin123", nil
	}

	require.NoError(t, run(t, h, "login", "-id", "ADM001"))
	assert.Equal(t, "Password: ", prompted)
}

func TestLoginFailures(t *testing.T) {
	h := newCLIHarness(t, "", "")

	err := run(t, h, "login", "-password", "admin123")
	require.ErrorIs(t, err, errAdminIDRequired)

	err = run(t, h, "login", "-id", "ADM001")
	require.ErrorIs(t, err, errReadPassword)

	err = run(t, h, "login", "-id", "ADM001", "-password", "nope")
	require.ErrorIs(t, err, errLoginFailed)
	assert.Contains(t, err.Error(), "Invalid credentials")

	_, ok, _ := h.store.Get(context.Background())
	assert.False(t, ok)
}

func TestLogout(t *testing.T) {
	h := newCLIHarness(t, "", "tok")

	require.NoError(t, run(t, h, "logout"))

	_, ok, err := h.store.Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name  string
		token func(t *testing.T) string
		want  string
	}{
		{name: "absent", token: func(*testing.T) string { return "" }, want: "not logged in"},
		{name: "malformed", token: func(*testing.T) string { return "garbage" }, want: "malformed"},
		{
			name:  "valid",
			token: func(t *testing.T) string { return signedToken(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) },
			want:  "valid (expires",
		},
		{
			name:  "expired",
			token: func(t *testing.T) string { return signedToken(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) },
			want:  "expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newCLIHarness(t, "", tt.token(t))

			require.NoError(t, run(t, h, "status"))
			assert.Contains(t, h.out.String(), "API:")
			assert.Contains(t, h.out.String(), tt.want)
		})
	}
}

func TestHealth(t *testing.T) {
	h := newCLIHarness(t, "", "")

	require.NoError(t, run(t, h, "health"))
	assert.Equal(t, `{"status":"ok","devices":2}`+"\n", h.out.String())
}

func TestDevicesTable(t *testing.T) {
	h := newCLIHarness(t, "", "tok")

	require.NoError(t, run(t, h, "devices"))

	out := h.out.String()
	assert.Contains(t, out, "Galaxy S24")
	assert.Contains(t, out, "Pixel 8")
	assert.NotContains(t, out, "duplicate")
	assert.Less(t, strings.Index(out, "Galaxy S24"), strings.Index(out, "Pixel 8"))
	assert.Contains(t, out, "Showing 2 of 2 devices. Compliance 50% (Needs Attention), 1 online, 0 locked")
}

func TestDevicesJSONWithFilter(t *testing.T) {
	h := newCLIHarness(t, "", "tok")

	require.NoError(t, run(t, h, "devices", "-tab", "compliant", "-json"))

	var got []models.Device
	require.NoError(t, json.Unmarshal(h.out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "dev-1", got[0].ID)

	h.out.Reset()
	require.NoError(t, run(t, h, "devices", "-q", "nothing-matches"))
	assert.Contains(t, h.out.String(), "No devices found")
}

func TestDevicesWithoutSession(t *testing.T) {
	h := newCLIHarness(t, "", "")

	err := run(t, h, "devices")
	require.ErrorIs(t, err, errNotLoggedIn)
	assert.True(t, api.IsKind(err, api.KindUnauthenticated))
}

func TestActionConfirmed(t *testing.T) {
	h := newCLIHarness(t, "y\n", "tok")

	require.NoError(t, run(t, h, "lock", "-device", "dev-2"))

	assert.Contains(t, h.errOut.String(), "Lock device: Mina?")
	assert.Contains(t, h.out.String(), "Device locked successfully!")
	require.Len(t, h.server.actions, 1)
	assert.Equal(t, "dev-2", h.server.actions[0].DeviceID)
	assert.Equal(t, "lock by admin via dashboard", h.server.actions[0].Reason)
	assert.Equal(t, []string{"/api/admin/lock"}, h.server.paths)
}

func TestActionDeclined(t *testing.T) {
	for _, stdin := range []string{"n\n", "\n", ""} {
		h := newCLIHarness(t, stdin, "tok")

		require.NoError(t, run(t, h, "wipe", "-device", "dev-1"))
		assert.Contains(t, h.errOut.String(), "WIPE Ravi's device? This action cannot be undone!")
		assert.Contains(t, h.out.String(), "Aborted")
		assert.Empty(t, h.server.actions)
	}
}

func TestActionYesSkipsPrompt(t *testing.T) {
	h := newCLIHarness(t, "", "tok")

	require.NoError(t, run(t, h, "unlock", "-device", "dev-1", "-yes"))
	assert.Empty(t, h.errOut.String())
	assert.Contains(t, h.out.String(), "Device unlocked successfully!")
}

func TestActionUnknownDevice(t *testing.T) {
	h := newCLIHarness(t, "", "tok")

	err := run(t, h, "lock", "-device", "ghost", "-yes")
	require.Error(t, err)

	assert.Contains(t, h.out.String(), "Device ghost is not in the device list")
	assert.Contains(t, h.errOut.String(), "Failed to lock device")
	assert.True(t, api.IsKind(err, api.KindServer))
}

func TestInteractiveCommand(t *testing.T) {
	h := newCLIHarness(t, "", "")

	require.ErrorIs(t, run(t, h, "tui"), errNoInteractive)

	called := false
	h.runner.deps.Interactive = func(context.Context) error {
		called = true

		return nil
	}

	require.NoError(t, run(t, h))
	assert.True(t, called)
}

func TestHelpPrintsUsage(t *testing.T) {
	h := newCLIHarness(t, "", "")

	require.NoError(t, run(t, h, "-help"))
	assert.Contains(t, h.out.String(), "Usage: secureguard")
}
