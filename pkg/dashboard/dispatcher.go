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
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
)

// Dispatcher runs lock, unlock and wipe commands with confirmation, a
// per-device busy marker and a reload on success.
type Dispatcher struct {
	api       DeviceAPI
	board     Board
	confirmer Confirmer
	notifier  Notifier
	logger    logger.Logger
}

// NewDispatcher wires a Dispatcher. A nil Confirmer approves everything.
func NewDispatcher(deviceAPI DeviceAPI, board Board, confirmer Confirmer, notifier Notifier, log logger.Logger) *Dispatcher {
	if confirmer == nil {
		confirmer = ConfirmerFunc(func(context.Context, string) bool { return true })
	}

	if notifier == nil {
		notifier = discardNotifier{}
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Dispatcher{
		api:       deviceAPI,
		board:     board,
		confirmer: confirmer,
		notifier:  notifier,
		logger:    log,
	}
}

// Prompt is the confirmation question for action on device.
func Prompt(action models.Action, device *models.Device) string {
	user := device.UserName()

	switch action {
	case models.ActionLock:
		return fmt.Sprintf("Lock device: %s?", user)
	case models.ActionUnlock:
		return fmt.Sprintf("Unlock device: %s?", user)
	case models.ActionWipe:
		return fmt.Sprintf("WIPE %s's device? This action cannot be undone!", user)
	default:
		return fmt.Sprintf("%s device: %s?", action, user)
	}
}

// Run confirms, marks the device busy, sends the command, reports the
// outcome and reloads the list once on success. The busy marker is always
// cleared before Run returns.
func (d *Dispatcher) Run(ctx context.Context, action models.Action, device models.Device) error {
	if _, ok := models.ParseAction(string(action)); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	if busy, ok := d.board.BusyAction(device.ID); ok {
		return fmt.Errorf("%w: %s", ErrBusy, busy)
	}

	if !d.confirmer.Confirm(ctx, Prompt(action, &device)) {
		d.logger.Debug().Str("action", string(action)).Str("device_id", device.ID).Msg("Action declined")

		return ErrDeclined
	}

	if !d.board.MarkBusy(device.ID, action) {
		return ErrBusy
	}
	defer d.board.ClearBusy(device.ID)

	if err := d.api.Act(ctx, action, device.ID); err != nil {
		d.logger.Warn().Err(err).Str("action", string(action)).Str("device_id", device.ID).Msg("Device action failed")
		d.notifier.Notify(LevelError, actionFailureMessage(action, err))

		return err
	}

	d.notifier.Notify(LevelSuccess, fmt.Sprintf("Device %s successfully!", action.PastTense()))

	if err := d.board.Reload(ctx); err != nil && !errors.Is(err, ErrNotMounted) {
		d.logger.Debug().Err(err).Msg("Reload after action failed")
	}

	return nil
}

// actionFailureMessage names the action and appends any field-level
// reasons the server gave.
func actionFailureMessage(action models.Action, err error) string {
	msg := fmt.Sprintf("Failed to %s device", action)

	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Kind != api.KindValidation || len(apiErr.Fields) == 0 {
		return msg
	}

	reasons := make([]string, 0, len(apiErr.Fields))
	for _, f := range apiErr.Fields {
		reasons = append(reasons, f.Message)
	}

	return msg + ": " + strings.Join(reasons, "; ")
}

// Tracker is a Board for callers without a mounted dashboard, such as
// one-shot CLI commands. Reload does nothing.
type Tracker struct {
	mu   sync.Mutex
	busy map[string]models.Action
}

func NewTracker() *Tracker {
	return &Tracker{busy: make(map[string]models.Action)}
}

func (t *Tracker) MarkBusy(deviceID string, action models.Action) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.busy[deviceID]; ok {
		return false
	}

	t.busy[deviceID] = action

	return true
}

func (t *Tracker) ClearBusy(deviceID string) {
	t.mu.Lock()
	delete(t.busy, deviceID)
	t.mu.Unlock()
}

func (t *Tracker) BusyAction(deviceID string) (models.Action, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.busy[deviceID]

	return a, ok
}

func (*Tracker) Reload(context.Context) error {
	return nil
}
