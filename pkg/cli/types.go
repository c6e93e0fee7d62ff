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
	"context"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/session"
)

// CmdConfig holds parsed command-line configuration.
type CmdConfig struct {
	Help       bool
	SubCmd     string
	ConfigFile string
	AdminID    string
	Password   string
	DeviceID   string
	Tab        string
	Query      string
	JSON       bool
	Yes        bool
	Args       []string
}

// Deps are the collaborators the commands run against.
type Deps struct {
	Client *api.Client
	Store  session.Store
	Logger logger.Logger

	Out io.Writer
	Err io.Writer
	In  io.Reader

	// Terminal reports whether In is an interactive terminal.
	Terminal bool
	// ReadSecret prompts for a value without echo. Used only on a terminal.
	ReadSecret func(prompt string) (string, error)
	// Interactive launches the full-screen console.
	Interactive func(ctx context.Context) error
}

// logStyles defines styles for logging messages
type logStyles struct {
	info, success, warning, error lipgloss.Style
}
