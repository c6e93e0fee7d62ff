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

// Package config assembles the console configuration from defaults, an
// optional JSON file, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	// EnvPrefix is prepended to every console-specific variable.
	EnvPrefix = "SECUREGUARD_"

	DefaultAPIURL         = "https://secureguard-backend.onrender.com"
	DefaultRequestTimeout = 30 * time.Second
	DefaultPollInterval   = 8 * time.Second
	DefaultRedirectDelay  = time.Second
	DefaultRedisAddr      = "localhost:6379"

	appDirName     = "secureguard"
	consoleLogName = "console.log"
)

var (
	errInvalidConfig = errors.New("invalid configuration")
	errLoadDotEnv    = errors.New("failed to load .env file")
)

// Config is the complete console configuration.
type Config struct {
	APIURL         string          `json:"api_url" env:"API_URL" validate:"required,url"`
	RequestTimeout models.Duration `json:"request_timeout" env:"REQUEST_TIMEOUT" validate:"gt=0"`
	PollInterval   models.Duration `json:"poll_interval" env:"POLL_INTERVAL" validate:"gt=0"`
	RedirectDelay  models.Duration `json:"redirect_delay" env:"REDIRECT_DELAY" validate:"gte=0"`
	StateDir       string          `json:"state_dir" env:"STATE_DIR" validate:"required"`
	TokenStore     session.Config  `json:"token_store"`
	Logging        logger.Config   `json:"logging"`
}

// Default returns the built-in configuration. Logging.Output is left empty
// and resolved against StateDir by Load.
func Default() *Config {
	return &Config{
		APIURL:         DefaultAPIURL,
		RequestTimeout: models.Duration(DefaultRequestTimeout),
		PollInterval:   models.Duration(DefaultPollInterval),
		RedirectDelay:  models.Duration(DefaultRedirectDelay),
		StateDir:       defaultStateDir(),
		TokenStore: session.Config{
			Backend:   session.BackendFile,
			RedisAddr: DefaultRedisAddr,
			RedisKey:  session.DefaultRedisKey,
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}

	return filepath.Join(os.TempDir(), appDirName)
}

// Loader applies the configuration sources in order. Later sources win:
// defaults, the JSON file, then .env files and the process environment.
type Loader struct {
	logger   logger.Logger
	file     *FileConfigLoader
	env      *EnvConfigLoader
	envFiles []string
	validate *validator.Validate
}

// NewLoader creates a Loader. envFiles default to ".env" in the working
// directory; missing files are skipped.
func NewLoader(log logger.Logger, envFiles ...string) *Loader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	return &Loader{
		logger:   log,
		file:     &FileConfigLoader{},
		env:      NewEnvConfigLoader(log, EnvPrefix),
		envFiles: envFiles,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Load builds and validates the configuration. path may be empty.
func (l *Loader) Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := l.file.Load(path, cfg); err != nil {
			return nil, err
		}

		l.logger.Debug().Str("path", path).Msg("Loaded configuration file")
	}

	if err := l.loadDotEnv(); err != nil {
		return nil, err
	}

	if err := l.env.Load(cfg); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := l.Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv never overrides variables already set in the environment.
func (l *Loader) loadDotEnv() error {
	for _, f := range l.envFiles {
		err := godotenv.Load(f)
		if err == nil {
			l.logger.Debug().Str("path", f).Msg("Loaded .env file")

			continue
		}

		if errors.Is(err, fs.ErrNotExist) {
			continue
		}

		return fmt.Errorf("%w %s: %w", errLoadDotEnv, f, err)
	}

	return nil
}

// Validate checks cfg against its validate tags.
func (l *Loader) Validate(cfg *Config) error {
	if err := l.validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}

			return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(msgs, "; "))
		}

		return fmt.Errorf("%w: %w", errInvalidConfig, err)
	}

	return nil
}

func (c *Config) normalize() {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")

	if c.TokenStore.Backend == "" {
		c.TokenStore.Backend = session.BackendFile
	}

	if c.TokenStore.RedisKey == "" {
		c.TokenStore.RedisKey = session.DefaultRedisKey
	}

	if c.Logging.Output == "" {
		c.Logging.Output = filepath.Join(c.StateDir, consoleLogName)
	}
}

// TokenPath is where the file token store keeps the credential.
func (c *Config) TokenPath() string {
	return session.TokenPath(c.StateDir)
}

// PreferencesPath is where the login preferences live.
func (c *Config) PreferencesPath() string {
	return session.PreferencesPath(c.StateDir)
}

// ProfilePath is where the logged-in admin's profile is kept between runs.
func (c *Config) ProfilePath() string {
	return session.ProfilePath(c.StateDir)
}
