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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/carverauto/secureguard/pkg/models"
)

// envelopeMatcher extracts the device array from one known response shape.
type envelopeMatcher struct {
	name  string
	match func(body []byte) (json.RawMessage, bool)
}

// deviceListMatchers are tried in order; the first match wins.
var deviceListMatchers = []envelopeMatcher{
	{name: "array", match: matchBareArray},
	{name: "success", match: matchSuccessData},
	{name: "data", match: matchObjectArray("data")},
	{name: "devices", match: matchObjectArray("devices")},
}

// DeviceList is a decoded device list response. Shape names the envelope
// that matched.
type DeviceList struct {
	Devices []models.Device
	Shape   string
	Skipped []SkippedRecord
}

// SkippedRecord is an array element that did not decode as a device.
type SkippedRecord struct {
	Index int
	ID    string
	Err   error
}

// DecodeDeviceList normalizes any supported device list envelope into a
// plain slice. Records that fail to decode are dropped and reported in
// Skipped; the list only fails when no record decodes at all.
func DecodeDeviceList(body []byte) (DeviceList, error) {
	for _, m := range deviceListMatchers {
		raw, ok := m.match(body)
		if !ok {
			continue
		}

		list := DeviceList{Shape: m.name}

		var records []json.RawMessage
		if err := json.Unmarshal(raw, &records); err != nil {
			return list, fmt.Errorf("%w: %w", errDecodeResponse, err)
		}

		list.Devices = make([]models.Device, 0, len(records))

		for i, rec := range records {
			var d models.Device
			if err := json.Unmarshal(rec, &d); err != nil {
				list.Skipped = append(list.Skipped, SkippedRecord{Index: i, ID: recordID(rec), Err: err})

				continue
			}

			list.Devices = append(list.Devices, d)
		}

		if len(records) > 0 && len(list.Devices) == 0 {
			return list, fmt.Errorf("%w: all %d records malformed: %w", errDecodeResponse, len(records), list.Skipped[0].Err)
		}

		return list, nil
	}

	return DeviceList{}, errUnrecognizedEnvelope
}

// recordID reads whichever id field a malformed record still carries.
func recordID(rec json.RawMessage) string {
	var ids struct {
		DeviceID json.RawMessage `json:"deviceId"`
		ID       json.RawMessage `json:"id"`
	}

	if err := json.Unmarshal(rec, &ids); err != nil {
		return ""
	}

	for _, raw := range []json.RawMessage{ids.DeviceID, ids.ID} {
		var id string
		if json.Unmarshal(raw, &id) == nil && id != "" {
			return id
		}

		if len(raw) > 0 && string(raw) != "null" {
			return string(raw)
		}
	}

	return ""
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)

	return len(raw) > 0 && raw[0] == '['
}

func decodeObject(body []byte) (map[string]json.RawMessage, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, false
	}

	return obj, true
}

func matchBareArray(body []byte) (json.RawMessage, bool) {
	if isArray(body) {
		return body, true
	}

	return nil, false
}

func matchSuccessData(body []byte) (json.RawMessage, bool) {
	obj, ok := decodeObject(body)
	if !ok {
		return nil, false
	}

	var success bool
	if err := json.Unmarshal(obj["success"], &success); err != nil || !success {
		return nil, false
	}

	data, ok := obj["data"]
	if !ok || !isArray(data) {
		return nil, false
	}

	return data, true
}

func matchObjectArray(key string) func([]byte) (json.RawMessage, bool) {
	return func(body []byte) (json.RawMessage, bool) {
		obj, ok := decodeObject(body)
		if !ok {
			return nil, false
		}

		v, ok := obj[key]
		if !ok || !isArray(v) {
			return nil, false
		}

		return v, true
	}
}
