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

// Package main is the secureguard admin console.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/cli"
	"github.com/carverauto/secureguard/pkg/config"
	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/session"
	"github.com/carverauto/secureguard/pkg/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cmdCfg, err := cli.ParseFlags(os.Args[1:])
	if err != nil {
		cli.PrintUsage(os.Stderr)

		return err
	}

	if cmdCfg.Help {
		cli.PrintUsage(os.Stdout)

		return nil
	}

	cfg, err := config.NewLoader(nil).Load(cmdCfg.ConfigFile)
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return err
	}

	if redacted, err := config.Redacted(cfg); err == nil {
		log.Debug().RawJSON("config", redacted).Str("command", cmdCfg.SubCmd).Msg("Starting secureguard")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := session.Open(cfg.TokenStore, cfg.StateDir, log.WithComponent("session"))
	if err != nil {
		return err
	}

	if closer, ok := store.(io.Closer); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close token store")
			}
		}()
	}

	// Only the interactive console can follow a redirect to the login view.
	var (
		bridge *tui.Bridge
		nav    api.Navigator
	)

	if cmdCfg.SubCmd == "tui" {
		bridge = tui.NewBridge()
		nav = bridge
	}

	client, err := api.New(api.Config{
		BaseURL:       cfg.APIURL,
		Timeout:       time.Duration(cfg.RequestTimeout),
		RedirectDelay: time.Duration(cfg.RedirectDelay),
		Store:         store,
		Navigator:     nav,
		Logger:        log.WithComponent("api"),
	})
	if err != nil {
		return err
	}

	runner := cli.NewRunner(cli.Deps{
		Client:   client,
		Store:    store,
		Logger:   log,
		Terminal: cli.IsInputFromTerminal(),
		Interactive: func(ctx context.Context) error {
			return runConsole(ctx, cfg, client, store, bridge, log)
		},
	})

	return runner.Run(ctx, cmdCfg)
}

func runConsole(ctx context.Context, cfg *config.Config, client *api.Client, store session.Store,
	bridge *tui.Bridge, log logger.Logger) error {
	dash, err := dashboard.New(dashboard.Config{
		API:       client,
		Store:     store,
		Navigator: bridge,
		Notifier:  bridge,
		Interval:  time.Duration(cfg.PollInterval),
		Logger:    log.WithComponent("dashboard"),
	})
	if err != nil {
		return err
	}

	return tui.Run(ctx, &tui.Options{
		Client:          client,
		Dashboard:       dash,
		Dispatcher:      dashboard.NewDispatcher(client, dash, bridge, bridge, log.WithComponent("dispatcher")),
		Bridge:          bridge,
		PreferencesPath: cfg.PreferencesPath(),
		ProfilePath:     cfg.ProfilePath(),
		Logger:          log.WithComponent("tui"),
	})
}
