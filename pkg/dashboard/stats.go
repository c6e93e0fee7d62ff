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
	"fmt"
	"math"
	"time"

	"github.com/carverauto/secureguard/pkg/models"
)

// Stats are derived from the device list currently held by the dashboard.
type Stats struct {
	Total          int
	Compliant      int
	NonCompliant   int
	ComplianceRate int
	Online         int
	Offline        int
	Locked         int
}

// ComputeStats counts the stat tiles for devices.
func ComputeStats(devices []models.Device) Stats {
	var s Stats

	for i := range devices {
		d := &devices[i]

		s.Total++

		if d.IsCompliant {
			s.Compliant++
		} else {
			s.NonCompliant++
		}

		if d.IsConnected {
			s.Online++
		} else {
			s.Offline++
		}

		if d.IsLocked {
			s.Locked++
		}
	}

	if s.Total > 0 {
		s.ComplianceRate = int(math.Round(float64(s.Compliant) * 100 / float64(s.Total)))
	}

	return s
}

// Rating buckets the compliance rate.
func (s Stats) Rating() string {
	switch {
	case s.ComplianceRate >= 90:
		return "Excellent"
	case s.ComplianceRate >= 70:
		return "Good"
	default:
		return "Needs Attention"
	}
}

// FormatLastUpdate renders the "updated N ago" label.
func FormatLastUpdate(now, t time.Time) string {
	if t.IsZero() {
		return "Never"
	}

	elapsed := now.Sub(t)

	switch {
	case elapsed < time.Minute:
		return "Just now"
	case elapsed < time.Hour:
		return fmt.Sprintf("%dm ago", int(elapsed/time.Minute))
	case elapsed < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(elapsed/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(elapsed/(24*time.Hour)))
	}
}
