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

// Package main is a fake SecureGuard MDM admin API for local development.
// It serves a generated fleet that drifts over time so a polling console
// has something to show.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/carverauto/secureguard/pkg/config"
	httpx "github.com/carverauto/secureguard/pkg/http"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
)

const (
	envPrefix       = "FAKER_"
	shutdownTimeout = 10 * time.Second
	dataDirPerms    = 0o755

	defaultTotalDevices  = 24
	defaultDriftInterval = 15 * time.Second
	defaultDriftPercent  = 10
	defaultTokenTTL      = 24 * time.Hour
)

var (
	errConfigNil     = errors.New("config must not be nil")
	errInvalidConfig = errors.New("invalid faker configuration")
)

// Config is the faker configuration. Every field can come from the JSON
// file given with -config or from FAKER_* variables.
type Config struct {
	Server struct {
		ListenAddress string          `json:"listen_address" env:"LISTEN_ADDRESS" validate:"required"`
		ReadTimeout   models.Duration `json:"read_timeout" env:"READ_TIMEOUT" validate:"gt=0"`
		WriteTimeout  models.Duration `json:"write_timeout" env:"WRITE_TIMEOUT" validate:"gt=0"`
		IdleTimeout   models.Duration `json:"idle_timeout" env:"IDLE_TIMEOUT" validate:"gt=0"`
	} `json:"server"`
	Simulation struct {
		TotalDevices int    `json:"total_devices" env:"TOTAL_DEVICES" validate:"gt=0,lte=10000"`
		Envelope     string `json:"envelope" env:"ENVELOPE" validate:"oneof=array data devices success"`
		Drift        struct {
			Enabled    bool            `json:"enabled" env:"DRIFT_ENABLED"`
			Interval   models.Duration `json:"interval" env:"DRIFT_INTERVAL" validate:"gt=0"`
			Percentage int             `json:"percentage" env:"DRIFT_PERCENTAGE" validate:"gt=0,lte=100"`
		} `json:"drift"`
	} `json:"simulation"`
	Storage struct {
		DataDir        string `json:"data_dir" env:"DATA_DIR"`
		DevicesFile    string `json:"devices_file" env:"DEVICES_FILE"`
		PersistChanges bool   `json:"persist_changes" env:"PERSIST_CHANGES"`
	} `json:"storage"`
	Auth struct {
		AdminID       string          `json:"admin_id" env:"ADMIN_ID" validate:"required"`
		AdminName     string          `json:"admin_name" env:"ADMIN_NAME"`
		AdminEmail    string          `json:"admin_email" env:"ADMIN_EMAIL" validate:"omitempty,email"`
		AdminPassword string          `json:"admin_password" env:"ADMIN_PASSWORD" validate:"required" sensitive:"true"`
		JWTSecret     string          `json:"jwt_secret" env:"JWT_SECRET" validate:"required,min=16" sensitive:"true"`
		TokenTTL      models.Duration `json:"token_ttl" env:"TOKEN_TTL" validate:"gt=0"`
	} `json:"auth"`
	CORS    httpx.CORSConfig `json:"cors"`
	Logging logger.Config    `json:"logging"`
}

func (c *Config) applyDefaults() {
	c.Server.ListenAddress = ":8080"
	c.Server.ReadTimeout = models.Duration(10 * time.Second)
	c.Server.WriteTimeout = models.Duration(30 * time.Second)
	c.Server.IdleTimeout = models.Duration(30 * time.Second)
	c.Simulation.TotalDevices = defaultTotalDevices
	c.Simulation.Envelope = envelopeSuccess
	c.Simulation.Drift.Enabled = true
	c.Simulation.Drift.Interval = models.Duration(defaultDriftInterval)
	c.Simulation.Drift.Percentage = defaultDriftPercent
	c.Storage.DevicesFile = "fake_mdm_devices.json"
	c.Auth.AdminID = "ADM001"
	c.Auth.AdminName = "Demo Admin"
	c.Auth.AdminEmail = "admin@secureguard.local"
	c.Auth.AdminPassword = "admin123"
	c.Auth.JWTSecret = "secureguard-faker-development-secret"
	c.Auth.TokenTTL = models.Duration(defaultTokenTTL)
	c.CORS.AllowedOrigins = []string{"*"}
	c.Logging.Level = "info"
	c.Logging.Output = "stderr"
}

// Validate checks the configuration against its validate tags.
func (c *Config) Validate() error {
	if c == nil {
		return errConfigNil
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	return nil
}

// storagePath is empty when the fleet is not persisted.
func (c *Config) storagePath() string {
	if c.Storage.DataDir == "" || c.Storage.DevicesFile == "" {
		return ""
	}

	return filepath.Join(c.Storage.DataDir, c.Storage.DevicesFile)
}

// loadConfig applies defaults, then the optional file, then FAKER_* variables.
func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.applyDefaults()

	if path != "" {
		if err := (&config.FileConfigLoader{}).Load(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := config.NewEnvConfigLoader(nil, envPrefix).Load(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "faker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to a JSON configuration file")
	listen := flag.String("listen", "", "listen address (overrides config)")
	envelope := flag.String("envelope", "", "device list shape: array, data, devices or success")
	devices := flag.Int("devices", 0, "number of generated devices")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	if *listen != "" {
		cfg.Server.ListenAddress = *listen
	}

	if *envelope != "" {
		cfg.Simulation.Envelope = *envelope
	}

	if *devices > 0 {
		cfg.Simulation.TotalDevices = *devices
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return err
	}

	if redacted, err := config.RedactedValue(cfg); err == nil {
		log.Debug().RawJSON("config", redacted).Msg("Faker configuration")
	}

	if cfg.Storage.DataDir != "" {
		if err := os.MkdirAll(cfg.Storage.DataDir, dataDirPerms); err != nil {
			return fmt.Errorf("creating data dir: %w", err)
		}
	}

	fleet := newFleet(cfg.storagePath(), log.WithComponent("fleet"))
	fleet.initialize(cfg.Simulation.TotalDevices)

	srv, err := newServer(cfg, fleet, log.WithComponent("http"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Simulation.Drift.Enabled {
		go fleet.driftLoop(ctx, time.Duration(cfg.Simulation.Drift.Interval),
			cfg.Simulation.Drift.Percentage, cfg.Storage.PersistChanges)
	}

	server := &http.Server{
		Addr:         cfg.Server.ListenAddress,
		Handler:      srv.routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout),
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info().
			Str("addr", cfg.Server.ListenAddress).
			Int("devices", fleet.size()).
			Str("envelope", cfg.Simulation.Envelope).
			Str("admin_id", cfg.Auth.AdminID).
			Msg("Fake MDM API starting")

		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	log.Info().Msg("Shutting down fake MDM API")

	if cfg.Storage.PersistChanges {
		fleet.save()
	}

	return server.Shutdown(shutdownCtx)
}
