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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpx "github.com/carverauto/secureguard/pkg/http"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
)

const (
	envelopeArray   = "array"
	envelopeData    = "data"
	envelopeDevices = "devices"
	envelopeSuccess = "success"

	metricsNamespace = "secureguard_faker"
	maxBodyBytes     = 1 << 20
)

// server holds the fake API handlers.
type server struct {
	fleet    *fleet
	auth     *authenticator
	envelope string
	cors     httpx.CORSConfig
	validate *validator.Validate
	registry *prometheus.Registry
	metrics  *httpx.Metrics
	actions  *prometheus.CounterVec
	logger   logger.Logger
	started  time.Time
}

func newServer(cfg *Config, f *fleet, log logger.Logger) (*server, error) {
	auth, err := newAuthenticator(cfg)
	if err != nil {
		return nil, err
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "device_actions_total",
		Help:      "Device commands by action and outcome.",
	}, []string{"action", "outcome"})
	reg.MustRegister(actions)

	return &server{
		fleet:    f,
		auth:     auth,
		envelope: cfg.Simulation.Envelope,
		cors:     cfg.CORS,
		validate: v,
		registry: reg,
		metrics:  httpx.NewMetrics(reg, metricsNamespace),
		actions:  actions,
		logger:   log,
		started:  time.Now(),
	}, nil
}

func (s *server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.metrics.Middleware)

	r.HandleFunc("/health", s.healthHandler).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	admin := r.PathPrefix("/api/admin").Subrouter()
	admin.HandleFunc("/login", s.loginHandler).Methods(http.MethodPost, http.MethodOptions)

	protected := admin.NewRoute().Subrouter()
	protected.Use(httpx.BearerAuthMiddleware(httpx.BearerAuthOptions{
		Verify:          s.auth.verify,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))
	protected.HandleFunc("/devices", s.devicesHandler).Methods(http.MethodGet, http.MethodOptions)
	protected.HandleFunc("/{action:lock|unlock|wipe}", s.actionHandler).Methods(http.MethodPost, http.MethodOptions)

	return httpx.CommonMiddleware(r, s.cors, s.logger)
}

func (s *server) healthHandler(w http.ResponseWriter, _ *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"devices": s.fleet.size(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !s.decode(w, r, &req) {
		return
	}

	resp, err := s.auth.login(req.AdminID, req.Password)
	if errors.Is(err, errInvalidCredentials) {
		s.logger.Warn().Str("admin_id", req.AdminID).Msg("Rejected admin login")
		httpx.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: "Invalid credentials"})

		return
	}

	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to issue token")
		httpx.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: "Failed to issue token"})

		return
	}

	s.logger.Info().Str("admin_id", req.AdminID).Msg("Admin logged in")
	httpx.WriteJSON(w, http.StatusOK, resp)
}

func (s *server) devicesHandler(w http.ResponseWriter, _ *http.Request) {
	devices := s.fleet.list()

	var body interface{}

	switch s.envelope {
	case envelopeArray:
		body = devices
	case envelopeData:
		body = map[string]interface{}{"data": devices}
	case envelopeDevices:
		body = map[string]interface{}{"devices": devices, "count": len(devices)}
	default:
		body = map[string]interface{}{"success": true, "data": devices}
	}

	httpx.WriteJSON(w, http.StatusOK, body)
}

func (s *server) actionHandler(w http.ResponseWriter, r *http.Request) {
	action, ok := models.ParseAction(mux.Vars(r)["action"])
	if !ok {
		httpx.WriteJSON(w, http.StatusNotFound, models.ErrorResponse{Message: "Unknown action"})

		return
	}

	var req models.ActionRequest
	if !s.decode(w, r, &req) {
		s.actions.WithLabelValues(string(action), "invalid").Inc()

		return
	}

	device, err := s.fleet.apply(action, req.DeviceID)
	if errors.Is(err, errDeviceNotFound) {
		s.actions.WithLabelValues(string(action), "not_found").Inc()
		httpx.WriteJSON(w, http.StatusNotFound, models.ErrorResponse{Message: "Device not found"})

		return
	}

	s.actions.WithLabelValues(string(action), "ok").Inc()
	s.logger.Info().
		Str("action", string(action)).
		Str("device_id", device.ID).
		Str("reason", req.Reason).
		Msg("Device command applied")

	httpx.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": fmt.Sprintf("Device %s successfully", action.PastTense()),
		"data":    device,
	})
}

// decode reads and validates a JSON body, answering 400 itself on failure.
func (s *server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Invalid JSON body"})

		return false
	}

	if err := s.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			httpx.WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed"})

			return false
		}

		fields := make([]models.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, models.FieldError{
				Field:   fe.Field(),
				Message: fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()),
			})
		}

		httpx.WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{Message: "Validation failed", Errors: fields})

		return false
	}

	return true
}
