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

// Package models pkg/models/api_types.go
package models

import "fmt"

// Action is a one-shot command issued against a device.
type Action string

const (
	ActionLock   Action = "lock"
	ActionUnlock Action = "unlock"
	ActionWipe   Action = "wipe"
)

// Actions lists every supported device action.
var Actions = []Action{ActionLock, ActionUnlock, ActionWipe}

// ParseAction maps a user-supplied name onto an Action.
func ParseAction(s string) (Action, bool) {
	for _, a := range Actions {
		if string(a) == s {
			return a, true
		}
	}

	return "", false
}

// Path is the admin API endpoint for the action.
func (a Action) Path() string {
	return "/api/admin/" + string(a)
}

// Reason is the audit string sent with every command.
func (a Action) Reason() string {
	return fmt.Sprintf("%s by admin via dashboard", a)
}

// PastTense renders "locked", "unlocked", "wiped".
func (a Action) PastTense() string {
	if a == ActionWipe {
		return "wiped"
	}

	return string(a) + "ed"
}

// ActionRequest is the body of lock, unlock and wipe calls.
type ActionRequest struct {
	DeviceID string `json:"deviceId" validate:"required,max=128"`
	Reason   string `json:"reason" validate:"max=512"`
}

// FieldError describes one rejected field in a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse represents an API error response.
// @Description Error information returned from the API.
type ErrorResponse struct {
	// Error message
	Message string `json:"message" example:"Invalid request parameters"`
	// Alternate message key some handlers use
	Error string `json:"error,omitempty"`
	// Field-level validation failures
	Errors []FieldError `json:"errors,omitempty"`
}

// View names a top-level screen of the console.
type View string

const (
	ViewLogin     View = "login"
	ViewDashboard View = "dashboard"
)
