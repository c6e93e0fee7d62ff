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

package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

const UnknownUser = "Unknown"

// Status labels shown on device cards.
const (
	StatusNonCompliant = "NON-COMPLIANT"
	StatusLocked       = "LOCKED"
	StatusCompliant    = "COMPLIANT"
)

// DeviceUser is the person a managed device is assigned to.
type DeviceUser struct {
	Name string `json:"name"`
	ID   string `json:"rollNo"`
}

// Device represents one managed endpoint as reported by the admin API.
type Device struct {
	ID             string     `json:"deviceId"`
	RecordID       string     `json:"_id,omitempty"`
	Name           string     `json:"deviceName,omitempty"`
	Model          string     `json:"deviceModel,omitempty"`
	OSVersion      string     `json:"osVersion,omitempty"`
	GeofenceStatus string     `json:"geofenceStatus,omitempty"`
	IsCompliant    bool       `json:"isCompliant"`
	IsLocked       bool       `json:"isLocked"`
	IsConnected    bool       `json:"isConnected"`
	LastChecked    time.Time  `json:"lastChecked"`
	User           DeviceUser `json:"user"`
}

// deviceWire tolerates the optional and alternate fields the API has used.
type deviceWire struct {
	DeviceID            string          `json:"deviceId"`
	RecordID            string          `json:"_id"`
	DeviceName          string          `json:"deviceName"`
	Name                string          `json:"name"`
	DeviceModel         string          `json:"deviceModel"`
	OSVersion           string          `json:"osVersion"`
	GeofenceStatus      string          `json:"geofenceStatus"`
	IsCompliant         *bool           `json:"isCompliant"`
	IsLocked            *bool           `json:"isLocked"`
	IsConnected         *bool           `json:"isConnected"`
	LastChecked         json.RawMessage `json:"lastChecked"`
	LastComplianceCheck json.RawMessage `json:"lastComplianceCheck"`
	User                *struct {
		Name   string `json:"name"`
		RollNo string `json:"rollNo"`
		ID     string `json:"id"`
	} `json:"user"`
}

// UnmarshalJSON applies the documented defaults: missing flags are false,
// a missing user is Unknown, and the id falls back to the record id.
func (d *Device) UnmarshalJSON(b []byte) error {
	var w deviceWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*d = Device{
		ID:             strings.TrimSpace(w.DeviceID),
		RecordID:       w.RecordID,
		Model:          w.DeviceModel,
		OSVersion:      w.OSVersion,
		GeofenceStatus: w.GeofenceStatus,
		IsCompliant:    boolOrFalse(w.IsCompliant),
		IsLocked:       boolOrFalse(w.IsLocked),
		IsConnected:    boolOrFalse(w.IsConnected),
		User:           DeviceUser{Name: UnknownUser, ID: UnknownUser},
	}

	if d.ID == "" {
		d.ID = strings.TrimSpace(w.RecordID)
	}

	d.Name = firstNonEmpty(w.DeviceName, w.Name, w.DeviceModel, d.ID)

	if ts, ok := parseRawTimestamp(w.LastChecked); ok {
		d.LastChecked = ts
	} else if ts, ok := parseRawTimestamp(w.LastComplianceCheck); ok {
		d.LastChecked = ts
	}

	if w.User != nil {
		d.User.Name = firstNonEmpty(w.User.Name, UnknownUser)
		d.User.ID = firstNonEmpty(w.User.RollNo, w.User.ID, UnknownUser)
	}

	return nil
}

// UserName is the name shown in confirmation prompts.
func (d *Device) UserName() string {
	return firstNonEmpty(d.User.Name, UnknownUser)
}

// StatusLabel is the badge text for a card: compliance wins over lock state.
func (d *Device) StatusLabel() string {
	switch {
	case !d.IsCompliant:
		return StatusNonCompliant
	case d.IsLocked:
		return StatusLocked
	default:
		return StatusCompliant
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// ParseTimestamp accepts the timestamp spellings seen from the admin API.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseRawTimestamp(raw json.RawMessage) (time.Time, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseTimestamp(s)
	}

	// epoch milliseconds
	var ms int64
	if err := json.Unmarshal(raw, &ms); err == nil && ms > 0 {
		return time.UnixMilli(ms).UTC(), true
	}

	return time.Time{}, false
}

func boolOrFalse(b *bool) bool {
	return b != nil && *b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
