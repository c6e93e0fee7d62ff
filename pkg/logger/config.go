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

package logger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrLogOutput    = errors.New("failed to open log output")
	ErrInvalidLevel = errors.New("invalid log level")
)

// Output names understood besides a file path.
const (
	OutputStdout  = "stdout"
	OutputStderr  = "stderr"
	OutputDiscard = "discard"
)

// Config selects level and destination. The env tags are read without the
// console prefix so LOG_LEVEL works for every binary in the repo.
type Config struct {
	Level      string `json:"level" env:"LOG_LEVEL,noprefix"`
	Debug      bool   `json:"debug" env:"DEBUG,noprefix"`
	Output     string `json:"output" env:"LOG_OUTPUT,noprefix"`
	TimeFormat string `json:"time_format" env:"LOG_TIME_FORMAT,noprefix"`
}

// DefaultConfig logs at info to stderr.
func DefaultConfig() *Config {
	return &Config{Level: zerolog.InfoLevel.String(), Output: OutputStderr}
}

// level resolves the effective level; Debug overrides Level.
func (c *Config) level() (zerolog.Level, error) {
	if c.Debug {
		return zerolog.DebugLevel, nil
	}

	if strings.TrimSpace(c.Level) == "" {
		return zerolog.InfoLevel, nil
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(c.Level)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w %q", ErrInvalidLevel, c.Level)
	}

	return lvl, nil
}
