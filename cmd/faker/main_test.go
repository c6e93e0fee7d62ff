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

package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

func testConfig(t *testing.T) *Config {
	t.Helper()

	cfg := &Config{}
	cfg.applyDefaults()
	cfg.Simulation.TotalDevices = 5

	return cfg
}

func newTestServer(t *testing.T, cfg *Config) (*httptest.Server, *fleet) {
	t.Helper()

	log := logger.NewTestLogger()
	f := newFleet("", log)
	f.initialize(cfg.Simulation.TotalDevices)

	srv, err := newServer(cfg, f, log)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	return ts, f
}

func doJSON(t *testing.T, method, url, token, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), method, url, strings.NewReader(body))
	require.NoError(t, err)

	req.Header.Set("Content-Type", "application/json")

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, data
}

func login(t *testing.T, ts *httptest.Server) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "",
		`{"adminId":"ADM001","password":"admin123"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var lr models.LoginResponse
	require.NoError(t, json.Unmarshal(body, &lr))
	require.NotEmpty(t, lr.Token)

	return lr.Token
}

func TestConfigDefaultsAreValid(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "ADM001", cfg.Auth.AdminID)
	assert.Equal(t, envelopeSuccess, cfg.Simulation.Envelope)
	assert.Empty(t, cfg.storagePath())
}

func TestConfigValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "unknown envelope", mutate: func(c *Config) { c.Simulation.Envelope = "items" }},
		{name: "no devices", mutate: func(c *Config) { c.Simulation.TotalDevices = 0 }},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }},
		{name: "missing password", mutate: func(c *Config) { c.Auth.AdminPassword = "" }},
		{name: "drift over 100", mutate: func(c *Config) { c.Simulation.Drift.Percentage = 101 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)

			require.ErrorIs(t, cfg.Validate(), errInvalidConfig)
		})
	}

	var nilCfg *Config
	require.ErrorIs(t, nilCfg.Validate(), errConfigNil)
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faker.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"simulation": {"total_devices": 7, "envelope": "devices"},
		"storage": {"data_dir": "/tmp/faker"}
	}`), 0o600))

	t.Setenv("FAKER_ENVELOPE", "data")
	t.Setenv("FAKER_DRIFT_INTERVAL", "3s")

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Simulation.TotalDevices)
	assert.Equal(t, envelopeData, cfg.Simulation.Envelope)
	assert.Equal(t, models.Duration(3*time.Second), cfg.Simulation.Drift.Interval)
	assert.Equal(t, filepath.Join("/tmp/faker", "fake_mdm_devices.json"), cfg.storagePath())
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &health))
	assert.Equal(t, "ok", health["status"])
	assert.EqualValues(t, 5, health["devices"])
}

func TestLogin(t *testing.T) {
	cfg := testConfig(t)
	ts, _ := newTestServer(t, cfg)

	t.Run("valid credentials", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "",
			`{"adminId":"ADM001","password":"admin123"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var lr models.LoginResponse
		require.NoError(t, json.Unmarshal(body, &lr))
		require.NotNil(t, lr.Admin)
		assert.Equal(t, "ADM001", lr.Admin.AdminID)
		assert.Equal(t, cfg.Auth.AdminName, lr.Admin.Name)

		exp, ok := session.ExpiresAt(lr.Token)
		require.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(defaultTokenTTL), exp, time.Minute)
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "",
			`{"adminId":"ADM001","password":"nope"}`)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Contains(t, string(body), "Invalid credentials")
	})

	t.Run("unknown admin", func(t *testing.T) {
		resp, _ := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "",
			`{"adminId":"ADM999","password":"admin123"}`)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing fields", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "", `{}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var er models.ErrorResponse
		require.NoError(t, json.Unmarshal(body, &er))
		require.Len(t, er.Errors, 2)
		assert.Equal(t, "adminId", er.Errors[0].Field)
		assert.Equal(t, "password", er.Errors[1].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/login", "", `{`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "Invalid JSON body")
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/admin/devices", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "No token provided")

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/admin/devices", "not-a-jwt", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "Invalid or expired token")

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/admin/lock", "", `{"deviceId":"x"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig(t)
	auth, err := newAuthenticator(cfg)
	require.NoError(t, err)

	auth.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	resp, err := auth.login("ADM001", "admin123")
	require.NoError(t, err)

	auth.now = time.Now
	require.ErrorIs(t, auth.verify(resp.Token), errInvalidToken)
}

func TestDeviceEnvelopes(t *testing.T) {
	for _, envelope := range []string{envelopeArray, envelopeData, envelopeDevices, envelopeSuccess} {
		t.Run(envelope, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Simulation.Envelope = envelope
			ts, f := newTestServer(t, cfg)

			resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/admin/devices", login(t, ts), "")
			require.Equal(t, http.StatusOK, resp.StatusCode)

			list, err := api.DecodeDeviceList(body)
			require.NoError(t, err)
			assert.Equal(t, envelope, list.Shape)
			assert.Empty(t, list.Skipped)

			devices := list.Devices
			require.Len(t, devices, f.size())
			assert.Equal(t, f.list()[0].ID, devices[0].ID)
			assert.NotEqual(t, models.UnknownUser, devices[0].User.Name)
		})
	}
}

func TestDeviceActions(t *testing.T) {
	ts, f := newTestServer(t, testConfig(t))
	token := login(t, ts)
	id := f.list()[0].ID

	tests := []struct {
		action        string
		wantLocked    bool
		wantCompliant *bool
	}{
		{action: "lock", wantLocked: true},
		{action: "unlock", wantLocked: false},
		{action: "wipe", wantLocked: true, wantCompliant: new(bool)},
	}

	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/"+tt.action, token,
				`{"deviceId":"`+id+`","reason":"test"}`)
			require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

			var out struct {
				Success bool          `json:"success"`
				Message string        `json:"message"`
				Data    models.Device `json:"data"`
			}
			require.NoError(t, json.Unmarshal(body, &out))
			assert.True(t, out.Success)
			assert.Contains(t, out.Message, "successfully")
			assert.Equal(t, tt.wantLocked, out.Data.IsLocked)

			if tt.wantCompliant != nil {
				assert.Equal(t, *tt.wantCompliant, out.Data.IsCompliant)
			}
		})
	}
}

func TestDeviceActionErrors(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))
	token := login(t, ts)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/admin/lock", token, `{"deviceId":"ghost"}`)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, string(body), "Device not found")

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/admin/wipe", token, `{"reason":"x"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var er models.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	require.Len(t, er.Errors, 1)
	assert.Equal(t, "deviceId", er.Errors[0].Field)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/admin/reboot", token, `{"deviceId":"x"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, testConfig(t))

	doJSON(t, http.MethodGet, ts.URL+"/health", "", "")

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `secureguard_faker_http_requests_total{method="GET",route="/health",status="200"}`)
}

func TestClientAgainstFaker(t *testing.T) {
	ts, f := newTestServer(t, testConfig(t))

	client, err := api.New(api.Config{
		BaseURL: ts.URL,
		Store:   session.NewMemoryStore(nil),
		Logger:  logger.NewTestLogger(),
	})
	require.NoError(t, err)

	ctx := context.Background()

	_, err = client.Login(ctx, "ADM001", "admin123")
	require.NoError(t, err)

	devices, err := client.ListDevices(ctx)
	require.NoError(t, err)
	require.Len(t, devices, f.size())

	require.NoError(t, client.Lock(ctx, devices[0].ID))
	assert.True(t, f.list()[0].IsLocked)

	err = client.Wipe(ctx, "ghost")
	require.Error(t, err)
	assert.True(t, api.IsKind(err, api.KindServer))
	assert.Equal(t, "Device not found", api.Message(err, ""))
}

func TestFleetApplyAndDrift(t *testing.T) {
	f := newFleet("", logger.NewTestLogger())
	f.initialize(20)

	id := f.list()[3].ID

	d, err := f.apply(models.ActionWipe, id)
	require.NoError(t, err)
	assert.True(t, d.IsLocked)
	assert.False(t, d.IsCompliant)

	_, err = f.apply(models.ActionLock, "missing")
	require.ErrorIs(t, err, errDeviceNotFound)

	assert.Equal(t, 20, f.drift(100))
	assert.Equal(t, 0, f.drift(0))

	for _, dev := range f.list() {
		if dev.ID == id {
			assert.False(t, dev.IsCompliant, "wiped device must stay non-compliant")
		}
	}
}

func TestFleetPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devices.json")

	first := newFleet(path, logger.NewTestLogger())
	first.initialize(4)

	_, err := first.apply(models.ActionLock, first.list()[1].ID)
	require.NoError(t, err)
	first.save()

	second := newFleet(path, logger.NewTestLogger())
	second.initialize(4)

	want := first.list()
	got := second.list()
	require.Len(t, got, len(want))

	for i := range want {
		assert.Equal(t, want[i].ID, got[i].ID)
		assert.Equal(t, want[i].User, got[i].User)
		assert.Equal(t, want[i].IsLocked, got[i].IsLocked)
		assert.True(t, want[i].LastChecked.Equal(got[i].LastChecked))
	}

	regenerated := newFleet(path, logger.NewTestLogger())
	regenerated.initialize(6)
	assert.Equal(t, 6, regenerated.size())
}
