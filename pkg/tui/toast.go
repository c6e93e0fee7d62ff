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
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/secureguard/pkg/dashboard"
)

const (
	toastLifetime = 4 * time.Second
	maxToasts     = 4
)

type toast struct {
	level   dashboard.Level
	text    string
	expires time.Time
}

// toasts is a short queue of notifications, newest last.
type toasts []toast

func (t toasts) push(level dashboard.Level, text string, now time.Time) toasts {
	t = append(t, toast{level: level, text: text, expires: now.Add(toastLifetime)})
	if len(t) > maxToasts {
		t = t[len(t)-maxToasts:]
	}

	return t
}

func (t toasts) prune(now time.Time) toasts {
	kept := t[:0]

	for _, item := range t {
		if now.Before(item.expires) {
			kept = append(kept, item)
		}
	}

	return kept
}

func (t toasts) render(s *styles) string {
	if len(t) == 0 {
		return ""
	}

	lines := make([]string, 0, len(t))

	for _, item := range t {
		color := draculaCyan

		switch item.level {
		case dashboard.LevelSuccess:
			color = draculaGreen
		case dashboard.LevelError:
			color = draculaRed
		case dashboard.LevelInfo:
		}

		lines = append(lines, s.toast.
			BorderForeground(lipgloss.Color(color)).
			Foreground(lipgloss.Color(color)).
			Render(item.text))
	}

	return strings.Join(lines, "\n")
}
