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

package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

const msgLoginFailed = "Login failed. Please check your credentials."

type loginFocus int

const (
	focusAdminID loginFocus = iota
	focusPassword
	focusRemember
	focusSubmit
	focusCount
)

type healthState int

const (
	healthUnknown healthState = iota
	healthChecking
	healthOnline
	healthOffline
)

type loginForm struct {
	styles     *styles
	adminID    textinput.Model
	password   textinput.Model
	remember   bool
	focus      loginFocus
	submitting bool
	health     healthState
	message    string
}

func newLoginForm(s *styles) loginForm {
	id := textinput.New()
	id.Placeholder = "ADM001"
	id.CharLimit = 64
	id.Width = inputWidth
	id.Prompt = "› "
	id.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	id.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	id.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.CharLimit = 128
	pw.Width = inputWidth
	pw.Prompt = "› "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'
	pw.PromptStyle = id.PromptStyle
	pw.TextStyle = id.TextStyle
	pw.PlaceholderStyle = id.PlaceholderStyle

	return loginForm{styles: s, adminID: id, password: pw}
}

func (f *loginForm) apply(p session.Preferences) {
	f.remember = p.Remember
	if p.Remember {
		f.adminID.SetValue(p.LastAdminID)
	}
}

// reset keeps the admin id and the remember toggle, never the password.
func (f *loginForm) reset() {
	f.password.SetValue("")
	f.submitting = false
	f.message = ""
	f.health = healthChecking

	if strings.TrimSpace(f.adminID.Value()) != "" {
		f.focus = focusPassword
	} else {
		f.focus = focusAdminID
	}
}

func (f *loginForm) focusCmd() tea.Cmd {
	f.adminID.Blur()
	f.password.Blur()

	switch f.focus {
	case focusAdminID:
		return f.adminID.Focus()
	case focusPassword:
		return f.password.Focus()
	case focusRemember, focusSubmit, focusCount:
	}

	return nil
}

func (f *loginForm) move(delta int) tea.Cmd {
	f.focus = (f.focus + loginFocus(delta) + focusCount) % focusCount

	return f.focusCmd()
}

func (f *loginForm) setHealth(err error) {
	if err != nil {
		f.health = healthOffline

		return
	}

	f.health = healthOnline
}

func (a *App) probeHealth() tea.Cmd {
	ctx := a.ctx

	return func() tea.Msg {
		_, err := a.client.Health(ctx)

		return healthMsg{err: err}
	}
}

func (a *App) handleLoginKey(msg tea.KeyMsg) tea.Cmd {
	f := &a.login

	if f.submitting {
		return nil
	}

	//nolint:exhaustive // only a handful of keys drive the form
	switch msg.Type {
	case tea.KeyEsc:
		return a.quit()
	case tea.KeyTab, tea.KeyDown:
		return f.move(1)
	case tea.KeyShiftTab, tea.KeyUp:
		return f.move(-1)
	case tea.KeyEnter:
		switch f.focus {
		case focusAdminID:
			return f.move(1)
		case focusRemember:
			f.remember = !f.remember

			return nil
		case focusPassword, focusSubmit, focusCount:
			return a.submitLogin()
		}
	case tea.KeySpace:
		if f.focus == focusRemember {
			f.remember = !f.remember

			return nil
		}
	}

	var cmd tea.Cmd

	switch f.focus {
	case focusAdminID:
		f.adminID, cmd = f.adminID.Update(msg)
	case focusPassword:
		f.password, cmd = f.password.Update(msg)
	case focusRemember, focusSubmit, focusCount:
	}

	return cmd
}

func (a *App) submitLogin() tea.Cmd {
	f := &a.login
	f.submitting = true
	f.message = ""

	ctx := a.ctx
	id := strings.TrimSpace(f.adminID.Value())
	pw := f.password.Value()

	return func() tea.Msg {
		resp, err := a.client.Login(ctx, id, pw)

		return loginResultMsg{resp: resp, err: err}
	}
}

func (a *App) handleLoginResult(msg loginResultMsg) tea.Cmd {
	f := &a.login
	f.submitting = false

	if msg.err != nil {
		f.password.SetValue("")
		f.message = loginFailure(msg.err)
		a.notify(dashboard.LevelError, f.message)

		return nil
	}

	if a.prefsPath != "" {
		if err := session.SavePreferences(a.prefsPath, f.remember, f.adminID.Value()); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to save login preferences")
		}
	}

	name := strings.TrimSpace(f.adminID.Value())
	if msg.resp != nil && msg.resp.Admin != nil {
		a.admin = msg.resp.Admin
		name = msg.resp.Admin.DisplayName()

		if a.profPath != "" {
			if err := session.SaveProfile(a.profPath, a.admin); err != nil {
				a.logger.Warn().Err(err).Msg("Failed to save admin profile")
			}
		}
	}

	cmd := a.enter(models.ViewDashboard)
	a.notify(dashboard.LevelSuccess, fmt.Sprintf("Welcome back, %s!", name))

	return cmd
}

func loginFailure(err error) string {
	if api.IsKind(err, api.KindNoConnection) {
		return api.MsgNoConnection
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && len(apiErr.Fields) > 0 {
		parts := make([]string, 0, len(apiErr.Fields))
		for _, fe := range apiErr.Fields {
			parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}

		return strings.Join(parts, "; ")
	}

	return api.Message(err, msgLoginFailed)
}

func (a *App) viewLogin() string {
	f := &a.login
	s := f.styles

	var b strings.Builder

	b.WriteString(s.title.Render("SecureGuard MDM"))
	b.WriteString("\n")
	b.WriteString(s.muted.Render("Admin Console"))
	b.WriteString("\n\n")

	b.WriteString(s.label.Render("Server "))
	b.WriteString(a.healthBadge())
	b.WriteString(" ")
	b.WriteString(s.muted.Render(a.client.BaseURL()))
	b.WriteString("\n\n")

	b.WriteString(s.label.Render("Admin ID"))
	b.WriteString("\n")
	b.WriteString(f.adminID.View())
	b.WriteString("\n\n")
	b.WriteString(s.label.Render("Password"))
	b.WriteString("\n")
	b.WriteString(f.password.View())
	b.WriteString("\n\n")

	box := "[ ]"
	if f.remember {
		box = "[x]"
	}

	b.WriteString(f.focusable(focusRemember, box+" Remember me"))
	b.WriteString("\n\n")

	if f.submitting {
		b.WriteString(a.spinner.View())
		b.WriteString(s.hint.Render(" Signing in..."))
	} else {
		b.WriteString(f.focusable(focusSubmit, "[ Sign in ]"))
	}

	if f.message != "" {
		b.WriteString("\n\n")
		b.WriteString(s.error.Render(f.message))
	}

	b.WriteString("\n\n")
	b.WriteString(s.help.Render("tab: next field • enter: submit • space: toggle • esc: quit"))

	return b.String()
}

func (f *loginForm) focusable(target loginFocus, text string) string {
	if f.focus == target {
		return f.styles.hint.Render(text)
	}

	return f.styles.muted.Render(text)
}

func (a *App) healthBadge() string {
	s := &a.styles

	switch a.login.health {
	case healthOnline:
		return s.success.Render("● online")
	case healthOffline:
		return s.error.Render("● unreachable")
	case healthChecking:
		return s.hint.Render("● checking")
	case healthUnknown:
	}

	return s.muted.Render("●")
}
