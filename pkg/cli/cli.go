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

// Package cli parses the secureguard command line and runs its one-shot
// commands.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
)

const defaultSubCmd = "tui"

// SubcommandHandler parses the flags of one subcommand.
type SubcommandHandler interface {
	Parse(args []string, cfg *CmdConfig) error
}

// NoFlagsHandler handles subcommands without options.
type NoFlagsHandler struct {
	name string
}

// Parse rejects stray arguments.
func (h NoFlagsHandler) Parse(args []string, _ *CmdConfig) error {
	fs := newFlagSet(h.name)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing %s flags: %w", h.name, err)
	}

	if fs.NArg() > 0 {
		return fmt.Errorf("%w: %s", errUnexpectedArgument, fs.Arg(0))
	}

	return nil
}

// LoginHandler handles flags for the login subcommand.
type LoginHandler struct{}

// Parse processes the command-line arguments for the login subcommand.
func (LoginHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("login")
	adminID := fs.String("id", "", "admin id")
	password := fs.String("password", "", "password (read from stdin or prompted when omitted)")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing login flags: %w", err)
	}

	cfg.AdminID = *adminID
	cfg.Password = *password

	return nil
}

// DevicesHandler handles flags for the devices subcommand.
type DevicesHandler struct{}

// Parse processes the command-line arguments for the devices subcommand.
func (DevicesHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet("devices")
	tab := fs.String("tab", string(dashboard.TabAll), "all, compliant or nonCompliant")
	query := fs.String("q", "", "search by id, model, OS version or user")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing devices flags: %w", err)
	}

	if _, ok := dashboard.ParseTab(*tab); !ok {
		return fmt.Errorf("%w: %q", errInvalidTab, *tab)
	}

	cfg.Tab = *tab
	cfg.Query = *query
	cfg.JSON = *asJSON

	return nil
}

// ActionHandler handles flags for lock, unlock and wipe.
type ActionHandler struct {
	Action models.Action
}

// Parse processes the command-line arguments for a device action.
func (h ActionHandler) Parse(args []string, cfg *CmdConfig) error {
	fs := newFlagSet(string(h.Action))
	device := fs.String("device", "", "device id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parsing %s flags: %w", h.Action, err)
	}

	cfg.DeviceID = *device
	cfg.Yes = *yes

	// allow "lock <id>" as well as "lock -device <id>"
	if cfg.DeviceID == "" && fs.NArg() > 0 {
		cfg.DeviceID = fs.Arg(0)
	}

	if cfg.DeviceID == "" {
		return errDeviceRequired
	}

	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func subcommands() map[string]SubcommandHandler {
	return map[string]SubcommandHandler{
		"tui":                       NoFlagsHandler{name: "tui"},
		"logout":                    NoFlagsHandler{name: "logout"},
		"status":                    NoFlagsHandler{name: "status"},
		"health":                    NoFlagsHandler{name: "health"},
		"login":                     LoginHandler{},
		"devices":                   DevicesHandler{},
		string(models.ActionLock):   ActionHandler{Action: models.ActionLock},
		string(models.ActionUnlock): ActionHandler{Action: models.ActionUnlock},
		string(models.ActionWipe):   ActionHandler{Action: models.ActionWipe},
	}
}

// ParseFlags parses global flags and the subcommand from args, which
// excludes the program name.
func ParseFlags(args []string) (*CmdConfig, error) {
	fs := newFlagSet("secureguard")
	help := fs.Bool("help", false, "show help message")
	configFile := fs.String("config", "", "path to a JSON configuration file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &CmdConfig{Help: true}, nil
		}

		return &CmdConfig{Help: true}, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := &CmdConfig{
		Help:       *help,
		ConfigFile: *configFile,
		SubCmd:     defaultSubCmd,
		Args:       fs.Args(),
	}

	if len(cfg.Args) > 0 {
		cfg.SubCmd = cfg.Args[0]
		cfg.Args = cfg.Args[1:]
	}

	if cfg.SubCmd == "help" {
		cfg.Help = true

		return cfg, nil
	}

	handler, exists := subcommands()[cfg.SubCmd]
	if !exists {
		return cfg, fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
	}

	if err := handler.Parse(cfg.Args, cfg); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			cfg.Help = true

			return cfg, nil
		}

		return cfg, err
	}

	return cfg, nil
}
