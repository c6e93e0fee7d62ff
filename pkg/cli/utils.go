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
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
)

// Dracula theme colors.
const (
	draculaCyan    = "#8BE9FD"
	draculaGreen   = "#50FA7B"
	draculaOrange  = "#FFB86C"
	draculaPink    = "#FF79C6"
	draculaPurple  = "#BD93F9"
	draculaRed     = "#FF5555"
	draculaComment = "#6272A4"
)

func newLogStyles() logStyles {
	return logStyles{
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan)),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaGreen)),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color(draculaOrange)),
		error:   lipgloss.NewStyle().Foreground(lipgloss.Color(draculaRed)).Bold(true),
	}
}

func (r *Runner) printf(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(r.deps.Out, style.Render(fmt.Sprintf(format, args...)))
}

func (r *Runner) eprintf(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(r.deps.Err, style.Render(fmt.Sprintf(format, args...)))
}

// IsInputFromTerminal determines if input is coming from a terminal or being piped/redirected.
func IsInputFromTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// terminalSecret prompts on stderr and reads a line without echo.
func terminalSecret(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	b, err := term.ReadPassword(int(os.Stdin.Fd()))

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", err
	}

	return string(b), nil
}

func renderDevices(devices []models.Device, now time.Time) string {
	rows := make([][]string, 0, len(devices))

	for i := range devices {
		d := &devices[i]

		online := "no"
		if d.IsConnected {
			online = "yes"
		}

		rows = append(rows, []string{
			d.StatusLabel(),
			d.ID,
			d.Name,
			d.UserName(),
			d.Model,
			d.OSVersion,
			online,
			dashboard.FormatLastUpdate(now, d.LastChecked),
		})
	}

	header := lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPink)).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPurple))).
		Headers("STATUS", "ID", "NAME", "USER", "MODEL", "OS", "ONLINE", "CHECKED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}

			if col != 0 || row < 0 || row >= len(rows) {
				return cell
			}

			switch rows[row][0] {
			case models.StatusNonCompliant:
				return cell.Foreground(lipgloss.Color(draculaRed))
			case models.StatusLocked:
				return cell.Foreground(lipgloss.Color(draculaOrange))
			default:
				return cell.Foreground(lipgloss.Color(draculaGreen))
			}
		}).
		Render()
}

// dimmed renders secondary lines such as the session expiry.
var dimmed = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))
