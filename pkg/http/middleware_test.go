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

package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/secureguard/pkg/logger"
)

func okHandler(t *testing.T) http.Handler {
	t.Helper()

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, err := w.Write([]byte("OK"))
		if err != nil {
			t.Errorf("Error writing response: %v", err)
		}
	})
}

func TestCommonMiddleware_CORS(t *testing.T) {
	log := logger.NewTestLogger()

	corsConfig := CORSConfig{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	}

	handler := CommonMiddleware(okHandler(t), corsConfig, log)

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rr.Header().Get(headerRequestID))

	// unallowed origin
	req = httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "http://evil.com")

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.NotEqual(t, "http://evil.com", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCommonMiddlewareKeepsRequestID(t *testing.T) {
	var buf strings.Builder

	handler := CommonMiddleware(okHandler(t), CORSConfig{}, logger.NewWriterLogger(&buf))

	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set(headerRequestID, "req-42")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, "req-42", rr.Header().Get(headerRequestID))
	assert.Contains(t, buf.String(), `"request_id":"req-42"`)
	assert.Contains(t, buf.String(), `"path":"/health"`)
}

func TestBearerAuthMiddleware(t *testing.T) {
	errBad := errors.New("bad token")

	mw := BearerAuthMiddleware(BearerAuthOptions{
		Verify: func(token string) error {
			if token != "good" {
				return errBad
			}

			return nil
		},
		ExcludePaths:    []string{"/health"},
		LogUnauthorized: true,
		Logger:          logger.NewTestLogger(),
	})
	handler := mw(okHandler(t))

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
		body   string
	}{
		{name: "missing", path: "/api/test", status: http.StatusUnauthorized, body: "No token provided"},
		{name: "wrong scheme", path: "/api/test", auth: "Basic good", status: http.StatusUnauthorized, body: "No token provided"},
		{name: "invalid", path: "/api/test", auth: "Bearer nope", status: http.StatusUnauthorized, body: "Invalid or expired token"},
		{name: "valid", path: "/api/test", auth: "Bearer good", status: http.StatusOK, body: "OK"},
		{name: "excluded", path: "/health", status: http.StatusOK, body: "OK"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tt.status, rr.Code)
			assert.Contains(t, rr.Body.String(), tt.body)
		})
	}
}

func TestMetricsMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, "test")

	r := mux.NewRouter()
	r.Use(m.Middleware)
	r.Handle("/api/admin/{action}", okHandler(t))

	for _, p := range []string{"/api/admin/lock", "/api/admin/wipe"} {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, p, http.NoBody))
		require.Equal(t, http.StatusOK, rr.Code)
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.requests.WithLabelValues("/api/admin/{action}", http.MethodPost, "200")), 0)
}
