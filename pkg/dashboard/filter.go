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

package dashboard

import (
	"slices"
	"strings"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
)

// Tab is a compliance category shown as a filter tab.
type Tab string

const (
	TabAll          Tab = "all"
	TabCompliant    Tab = "compliant"
	TabNonCompliant Tab = "nonCompliant"
)

// Tabs lists the filter tabs in display order.
var Tabs = []Tab{TabAll, TabCompliant, TabNonCompliant}

// ParseTab accepts the tab names plus the kebab-case spelling used on the
// command line.
func ParseTab(s string) (Tab, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all":
		return TabAll, true
	case "compliant":
		return TabCompliant, true
	case "noncompliant", "non-compliant":
		return TabNonCompliant, true
	default:
		return "", false
	}
}

// Filter is the ephemeral tab plus free-text query.
type Filter struct {
	Tab   Tab
	Query string
}

// Match reports whether d is visible under the filter.
func (f Filter) Match(d *models.Device) bool {
	switch f.Tab {
	case TabCompliant:
		if !d.IsCompliant {
			return false
		}
	case TabNonCompliant:
		if d.IsCompliant {
			return false
		}
	case TabAll, "":
	}

	q := strings.ToLower(strings.TrimSpace(f.Query))
	if q == "" {
		return true
	}

	for _, field := range []string{d.ID, d.Model, d.OSVersion, d.User.ID, d.User.Name} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}

	return false
}

// Apply returns the devices visible under f, preserving order.
func Apply(devices []models.Device, f Filter) []models.Device {
	out := make([]models.Device, 0, len(devices))

	for i := range devices {
		if f.Match(&devices[i]) {
			out = append(out, devices[i])
		}
	}

	return out
}

// SortDevices orders non-compliant devices first, then the most recently
// checked. Records with no timestamp sort last within their group.
func SortDevices(devices []models.Device) {
	slices.SortStableFunc(devices, func(a, b models.Device) int {
		if a.IsCompliant != b.IsCompliant {
			if !a.IsCompliant {
				return -1
			}

			return 1
		}

		return b.LastChecked.Compare(a.LastChecked)
	})
}

// Normalize drops records without an id and later duplicates of an id,
// then sorts. The input slice is not modified.
func Normalize(devices []models.Device, log logger.Logger) []models.Device {
	out := make([]models.Device, 0, len(devices))
	seen := make(map[string]struct{}, len(devices))

	for i := range devices {
		d := devices[i]

		if d.ID == "" {
			log.Warn().Str("name", d.Name).Msg("Dropping device record without an id")

			continue
		}

		if _, dup := seen[d.ID]; dup {
			log.Warn().Str("device_id", d.ID).Msg("Dropping duplicate device record")

			continue
		}

		seen[d.ID] = struct{}{}

		out = append(out, d)
	}

	SortDevices(out)

	return out
}
