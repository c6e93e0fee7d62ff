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

package main

import (
	"context"
	cryptoRand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
)

const (
	deviceFilePermissions = 0o600

	compliantPercent  = 80
	connectedPercent  = 70
	lockedPercent     = 10
	outsideGeofence   = 15
	percentageBase    = 100
	complianceFlipOdd = 4
	maxCheckAgeHours  = 72
	recordIDLength    = 24
)

var errDeviceNotFound = errors.New("device not found")

var (
	firstNames = []string{
		"Aarav", "Ananya", "Diego", "Fatima", "Hana", "Ibrahim", "Kavya", "Lucas",
		"Mei", "Mina", "Noah", "Olga", "Priya", "Ravi", "Sofia", "Tariq", "Yuki", "Zara",
	}
	lastNames = []string{
		"Patel", "Garcia", "Khan", "Nakamura", "Okafor", "Rossi", "Silva", "Singh", "Novak", "Chen",
	}
	handsets = []struct {
		name, model string
		os          []string
	}{
		{name: "Pixel 8", model: "Google Pixel 8", os: []string{"Android 14", "Android 15"}},
		{name: "Pixel 7a", model: "Google Pixel 7a", os: []string{"Android 13", "Android 14"}},
		{name: "Galaxy S24", model: "Samsung SM-S921B", os: []string{"Android 14"}},
		{name: "Galaxy A54", model: "Samsung SM-A546E", os: []string{"Android 13", "Android 14"}},
		{name: "iPhone 15", model: "Apple iPhone15,4", os: []string{"iOS 17.4", "iOS 17.5"}},
		{name: "iPhone 13", model: "Apple iPhone14,5", os: []string{"iOS 16.7", "iOS 17.5"}},
		{name: "iPad Air", model: "Apple iPad13,16", os: []string{"iPadOS 17.5"}},
		{name: "Moto G84", model: "Motorola XT2347", os: []string{"Android 13"}},
		{name: "OnePlus 12", model: "OnePlus CPH2581", os: []string{"Android 14"}},
	}
)

// fleet is the in-memory device inventory behind the fake API.
type fleet struct {
	mu          sync.RWMutex
	devices     []models.Device
	storagePath string
	logger      logger.Logger
	now         func() time.Time
}

func newFleet(storagePath string, log logger.Logger) *fleet {
	return &fleet{storagePath: storagePath, logger: log, now: time.Now}
}

// initialize loads the persisted fleet or generates a fresh one of size n.
func (f *fleet) initialize(n int) {
	if f.load(n) {
		return
	}

	f.logger.Info().Int("devices", n).Msg("Generating fake MDM devices")

	f.mu.Lock()
	f.devices = generateDevices(n, f.now())
	f.mu.Unlock()

	f.save()
}

func (f *fleet) size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.devices)
}

// list returns a copy safe to encode without holding the lock.
func (f *fleet) list() []models.Device {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]models.Device, len(f.devices))
	copy(out, f.devices)

	return out
}

// apply executes action against the device and returns its new state.
func (f *fleet) apply(action models.Action, deviceID string) (models.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.devices {
		d := &f.devices[i]
		if d.ID != deviceID {
			continue
		}

		switch action {
		case models.ActionLock:
			d.IsLocked = true
		case models.ActionUnlock:
			d.IsLocked = false
		case models.ActionWipe:
			d.IsLocked = true
			d.IsCompliant = false
		}

		d.LastChecked = f.now().UTC()

		return *d, nil
	}

	return models.Device{}, fmt.Errorf("%w: %s", errDeviceNotFound, deviceID)
}

// drift flips connectivity on roughly percentage% of devices and, less
// often, compliance. Wiped devices stay non-compliant.
func (f *fleet) drift(percentage int) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := 0
	now := f.now().UTC()

	for i := range f.devices {
		if randInt(1, percentageBase) > percentage {
			continue
		}

		d := &f.devices[i]
		d.IsConnected = !d.IsConnected

		if randInt(1, complianceFlipOdd) == 1 && !(d.IsLocked && !d.IsCompliant) {
			d.IsCompliant = !d.IsCompliant
		}

		d.LastChecked = now
		changed++
	}

	return changed
}

// driftLoop runs drift every interval until ctx ends.
func (f *fleet) driftLoop(ctx context.Context, interval time.Duration, percentage int, persist bool) {
	f.logger.Info().Dur("interval", interval).Int("percentage", percentage).Msg("Starting device drift simulation")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			changed := f.drift(percentage)
			f.logger.Debug().Int("changed", changed).Msg("Device drift applied")

			if persist {
				f.save()
			}
		}
	}
}

func generateDevices(n int, now time.Time) []models.Device {
	devices := make([]models.Device, n)

	for i := range devices {
		h := handsets[randInt(0, len(handsets)-1)]
		first := firstNames[randInt(0, len(firstNames)-1)]
		last := lastNames[randInt(0, len(lastNames)-1)]

		geofence := "inside"
		if randInt(1, percentageBase) <= outsideGeofence {
			geofence = "outside"
		}

		devices[i] = models.Device{
			ID:             uuid.NewString(),
			RecordID:       generateRandomString(recordIDLength),
			Name:           h.name,
			Model:          h.model,
			OSVersion:      h.os[randInt(0, len(h.os)-1)],
			GeofenceStatus: geofence,
			IsCompliant:    randInt(1, percentageBase) <= compliantPercent,
			IsLocked:       randInt(1, percentageBase) <= lockedPercent,
			IsConnected:    randInt(1, percentageBase) <= connectedPercent,
			LastChecked:    now.Add(-time.Duration(randInt(0, maxCheckAgeHours*60)) * time.Minute).UTC().Truncate(time.Second),
			User: models.DeviceUser{
				Name: first + " " + last,
				ID:   fmt.Sprintf("R-%04d", i+1),
			},
		}
	}

	return devices
}

// load reads the persisted fleet; a missing file or a size mismatch means
// a fresh fleet is generated.
func (f *fleet) load(n int) bool {
	if f.storagePath == "" {
		return false
	}

	data, err := os.ReadFile(f.storagePath)
	if err != nil {
		f.logger.Info().Str("path", f.storagePath).Msg("No stored devices, will generate new data")

		return false
	}

	var stored []models.Device
	if err := json.Unmarshal(data, &stored); err != nil {
		f.logger.Warn().Err(err).Msg("Failed to parse stored devices, will generate new data")

		return false
	}

	if len(stored) != n {
		f.logger.Info().Int("stored", len(stored)).Int("expected", n).Msg("Stored device count differs, will generate new data")

		return false
	}

	f.mu.Lock()
	f.devices = stored
	f.mu.Unlock()

	f.logger.Info().Int("devices", len(stored)).Str("path", f.storagePath).Msg("Loaded devices from storage")

	return true
}

func (f *fleet) save() {
	if f.storagePath == "" {
		return
	}

	data, err := json.Marshal(f.list())
	if err != nil {
		f.logger.Error().Err(err).Msg("Failed to marshal devices for storage")

		return
	}

	if err := os.WriteFile(f.storagePath, data, deviceFilePermissions); err != nil {
		f.logger.Error().Err(err).Str("path", f.storagePath).Msg("Failed to write devices to storage")
	}
}

// generateRandomString generates a random hex string of given length
func generateRandomString(length int) string {
	const chars = "0123456789abcdef"

	result := make([]byte, length)

	for i := range result {
		result[i] = chars[randInt(0, len(chars)-1)]
	}

	return string(result)
}

// randInt generates a random integer between minVal and maxVal (inclusive)
func randInt(minVal, maxVal int) int {
	if minVal >= maxVal {
		return minVal
	}

	n, _ := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(maxVal-minVal+1)))

	return int(n.Int64()) + minVal
}
