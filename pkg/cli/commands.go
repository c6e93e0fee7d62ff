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
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

const msgAuthFailed = "Authentication failed. Please check your credentials."

// Runner executes parsed commands.
type Runner struct {
	deps   Deps
	in     *bufio.Reader
	styles logStyles
	now    func() time.Time
}

// NewRunner fills unset streams with the process stdio.
func NewRunner(deps Deps) *Runner {
	if deps.Out == nil {
		deps.Out = os.Stdout
	}

	if deps.Err == nil {
		deps.Err = os.Stderr
	}

	if deps.In == nil {
		deps.In = os.Stdin
	}

	if deps.Logger == nil {
		deps.Logger = logger.NewTestLogger()
	}

	if deps.ReadSecret == nil {
		deps.ReadSecret = terminalSecret
	}

	return &Runner{
		deps:   deps,
		in:     bufio.NewReader(deps.In),
		styles: newLogStyles(),
		now:    time.Now,
	}
}

// Run dispatches cfg.SubCmd.
func (r *Runner) Run(ctx context.Context, cfg *CmdConfig) error {
	if cfg.Help {
		PrintUsage(r.deps.Out)

		return nil
	}

	switch cfg.SubCmd {
	case "", defaultSubCmd:
		if r.deps.Interactive == nil {
			return errNoInteractive
		}

		return r.deps.Interactive(ctx)
	case "login":
		return r.RunLogin(ctx, cfg)
	case "logout":
		return r.RunLogout(ctx)
	case "status":
		return r.RunStatus(ctx)
	case "health":
		return r.RunHealth(ctx)
	case "devices":
		return r.RunDevices(ctx, cfg)
	}

	if action, ok := models.ParseAction(cfg.SubCmd); ok {
		return r.RunAction(ctx, action, cfg)
	}

	return fmt.Errorf("%w: %s", errUnknownCommand, cfg.SubCmd)
}

// RunLogin signs in and stores the token.
func (r *Runner) RunLogin(ctx context.Context, cfg *CmdConfig) error {
	adminID := strings.TrimSpace(cfg.AdminID)
	if adminID == "" {
		return errAdminIDRequired
	}

	password, err := r.password(cfg)
	if err != nil {
		return err
	}

	resp, err := r.deps.Client.Login(ctx, adminID, password)
	if err != nil {
		return fmt.Errorf("%w: %s", errLoginFailed, loginMessage(err))
	}

	name := adminID
	if resp.Admin != nil {
		name = resp.Admin.DisplayName()
	}

	r.printf(r.styles.success, "Logged in as %s", name)

	if exp, ok := session.ExpiresAt(resp.Token); ok {
		r.printf(dimmed, "Session expires %s", exp.Local().Format(time.RFC1123))
	}

	return nil
}

func loginMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		parts := make([]string, 0, len(apiErr.Fields))
		for _, f := range apiErr.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
		}

		return strings.Join(parts, "; ")
	}

	return api.Message(err, msgAuthFailed)
}

// RunLogout clears the stored token.
func (r *Runner) RunLogout(ctx context.Context) error {
	if err := r.deps.Client.Logout(ctx); err != nil {
		return err
	}

	r.printf(r.styles.success, "Logged out")

	return nil
}

// RunStatus reports the API URL and what is known about the stored token.
func (r *Runner) RunStatus(ctx context.Context) error {
	token, ok, err := r.deps.Store.Get(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.deps.Out, "API:     %s\n", r.deps.Client.BaseURL())

	if !ok {
		token = ""
	}

	status := session.DecodeStatusAt(token, r.now())
	line := string(status)

	if exp, known := session.ExpiresAt(token); known {
		line = fmt.Sprintf("%s (expires %s)", status, exp.Local().Format(time.RFC1123))
	}

	style := r.styles.success

	switch status {
	case session.StatusAbsent:
		line = "not logged in"
		style = r.styles.warning
	case session.StatusExpired, session.StatusMalformed:
		style = r.styles.error
	case session.StatusValid:
	}

	fmt.Fprintf(r.deps.Out, "Session: %s\n", style.Render(line))

	return nil
}

// RunHealth prints the raw health response.
func (r *Runner) RunHealth(ctx context.Context) error {
	body, err := r.deps.Client.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.deps.Out, strings.TrimSpace(string(body)))

	return nil
}

// RunDevices lists devices in dashboard order under the requested filter.
func (r *Runner) RunDevices(ctx context.Context, cfg *CmdConfig) error {
	tab := dashboard.TabAll
	if cfg.Tab != "" {
		parsed, ok := dashboard.ParseTab(cfg.Tab)
		if !ok {
			return fmt.Errorf("%w: %q", errInvalidTab, cfg.Tab)
		}

		tab = parsed
	}

	devices, err := r.deps.Client.ListDevices(ctx)
	if err != nil {
		return sessionHint(err)
	}

	devices = dashboard.Normalize(devices, r.deps.Logger)
	visible := dashboard.Apply(devices, dashboard.Filter{Tab: tab, Query: cfg.Query})

	if cfg.JSON {
		enc := json.NewEncoder(r.deps.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(visible)
	}

	if len(visible) == 0 {
		fmt.Fprintln(r.deps.Out, "No devices found")
	} else {
		fmt.Fprintln(r.deps.Out, renderDevices(visible, r.now()))
	}

	stats := dashboard.ComputeStats(devices)
	fmt.Fprintf(r.deps.Out, "Showing %d of %d devices. Compliance %d%% (%s), %d online, %d locked\n",
		len(visible), stats.Total, stats.ComplianceRate, stats.Rating(), stats.Online, stats.Locked)

	return nil
}

// RunAction confirms and sends a device command through the dispatcher.
func (r *Runner) RunAction(ctx context.Context, action models.Action, cfg *CmdConfig) error {
	if cfg.DeviceID == "" {
		return errDeviceRequired
	}

	devices, err := r.deps.Client.ListDevices(ctx)
	if err != nil {
		return sessionHint(err)
	}

	device := models.Device{ID: cfg.DeviceID, User: models.DeviceUser{Name: models.UnknownUser}}
	found := false

	for i := range devices {
		if devices[i].ID == cfg.DeviceID {
			device, found = devices[i], true

			break
		}
	}

	if !found {
		r.printf(r.styles.warning, "Device %s is not in the device list", cfg.DeviceID)
	}

	var confirmer dashboard.Confirmer = dashboard.ConfirmerFunc(r.confirm)
	if cfg.Yes {
		confirmer = dashboard.ConfirmerFunc(func(context.Context, string) bool { return true })
	}

	notifier := dashboard.NotifierFunc(func(level dashboard.Level, message string) {
		switch level {
		case dashboard.LevelSuccess:
			r.printf(r.styles.success, "%s", message)
		case dashboard.LevelError:
			r.eprintf(r.styles.error, "%s", message)
		case dashboard.LevelInfo:
			r.printf(r.styles.info, "%s", message)
		}
	})

	d := dashboard.NewDispatcher(r.deps.Client, dashboard.NewTracker(), confirmer, notifier, r.deps.Logger)

	err = d.Run(ctx, action, device)
	if errors.Is(err, dashboard.ErrDeclined) {
		r.printf(r.styles.warning, "Aborted")

		return nil
	}

	if err != nil {
		return sessionHint(err)
	}

	return nil
}

// confirm asks on stderr and reads the answer from the input stream.
// Anything but y or yes is a no.
func (r *Runner) confirm(ctx context.Context, prompt string) bool {
	if ctx.Err() != nil {
		return false
	}

	fmt.Fprintf(r.deps.Err, "%s [y/N]: ", r.styles.warning.Render(prompt))

	answer, err := r.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (r *Runner) password(cfg *CmdConfig) (string, error) {
	if cfg.Password != "" {
		return cfg.Password, nil
	}

	var (
		pw  string
		err error
	)

	if r.deps.Terminal {
		pw, err = r.deps.ReadSecret("Password: ")
	} else {
		pw, err = r.in.ReadString('\n')
		if err != nil && pw != "" {
			err = nil
		}
	}

	if err != nil {
		return "", fmt.Errorf("%w: %w", errReadPassword, err)
	}

	pw = strings.TrimRight(pw, "\r\n")
	if pw == "" {
		return "", errPasswordRequired
	}

	return pw, nil
}

// sessionHint points the operator at login when the API rejected the token.
func sessionHint(err error) error {
	if api.IsKind(err, api.KindUnauthenticated) {
		return fmt.Errorf("%w: run `secureguard login` (%w)", errNotLoggedIn, err)
	}

	return err
}
