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

import "github.com/charmbracelet/lipgloss"

// Dracula theme colors.
const (
	draculaBackground = "#282A36"
	draculaCurrent    = "#44475A"
	draculaForeground = "#F8F8F2"
	draculaCyan       = "#8BE9FD"
	draculaGreen      = "#50FA7B"
	draculaOrange     = "#FFB86C"
	draculaPink       = "#FF79C6"
	draculaPurple     = "#BD93F9"
	draculaRed        = "#FF5555"
	draculaYellow     = "#F1FA8C"
	draculaComment    = "#6272A4"
)

const (
	appPadding   = 2
	inputWidth   = 36
	tileWidth    = 18
	searchWidth  = 30
	modalWidth   = 54
	toastPadding = 1
)

type styles struct {
	title     lipgloss.Style
	label     lipgloss.Style
	help      lipgloss.Style
	hint      lipgloss.Style
	success   lipgloss.Style
	error     lipgloss.Style
	warning   lipgloss.Style
	muted     lipgloss.Style
	tile      lipgloss.Style
	tileValue lipgloss.Style
	tab       lipgloss.Style
	activeTab lipgloss.Style
	card      lipgloss.Style
	selected  lipgloss.Style
	modal     lipgloss.Style
	toast     lipgloss.Style
	app       lipgloss.Style
}

func newStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaPink)).
			Bold(true),
		label: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaYellow)),
		help: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)),
		success: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaGreen)),
		error: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaRed)).
			Bold(true),
		warning: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaOrange)).
			Bold(true),
		muted: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaComment)),
		tile: lipgloss.NewStyle().
			Width(tileWidth).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(draculaPurple)),
		tileValue: lipgloss.NewStyle().
			Foreground(lipgloss.Color(draculaCyan)).
			Bold(true),
		tab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color(draculaComment)),
		activeTab: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color(draculaBackground)).
			Background(lipgloss.Color(draculaPurple)).
			Bold(true),
		card: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(draculaCurrent)),
		selected: lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color(draculaPink)).
			Background(lipgloss.Color(draculaCurrent)),
		modal: lipgloss.NewStyle().
			Width(modalWidth).
			Padding(1, appPadding).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(draculaRed)).
			Foreground(lipgloss.Color(draculaForeground)),
		toast: lipgloss.NewStyle().
			Padding(0, toastPadding).
			Border(lipgloss.RoundedBorder()),
		app: lipgloss.NewStyle().
			Padding(1, appPadding).
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color(draculaCyan)).
			Foreground(lipgloss.Color(draculaForeground)),
	}
}

// statusStyle colors a device status badge.
func (s *styles) statusStyle(label string) lipgloss.Style {
	switch label {
	case "NON-COMPLIANT":
		return s.error
	case "LOCKED":
		return s.warning
	default:
		return s.success
	}
}
