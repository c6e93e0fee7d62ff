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
	"context"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/models"
)

//go:generate mockgen -destination=mock_dashboard.go -package=dashboard github.com/carverauto/secureguard/pkg/dashboard DeviceAPI,Board

// DeviceAPI is the slice of the admin API the dashboard needs.
type DeviceAPI interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	Act(ctx context.Context, action models.Action, deviceID string) error
}

// Level is the severity of a user-visible notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier shows transient messages to the operator.
type Notifier interface {
	Notify(level Level, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, message string)

func (f NotifierFunc) Notify(level Level, message string) {
	f(level, message)
}

// Confirmer asks the operator a yes/no question. A cancelled ctx is a no.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	return f(ctx, prompt)
}

// Board tracks per-device busy markers and can reload the device list.
type Board interface {
	MarkBusy(deviceID string, action models.Action) bool
	ClearBusy(deviceID string)
	BusyAction(deviceID string) (models.Action, bool)
	Reload(ctx context.Context) error
}

type discardNotifier struct{}

func (discardNotifier) Notify(Level, string) {}

var (
	_ DeviceAPI = (*api.Client)(nil)
	_ Board     = (*Dashboard)(nil)
	_ Board     = (*Tracker)(nil)
)
