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
	"time"

	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
)

type navigateMsg struct {
	view models.View
}

type toastMsg struct {
	level dashboard.Level
	text  string
}

type confirmMsg struct {
	prompt string
	reply  chan bool
}

type mountedMsg struct {
	unmount func()
	ok      bool
}

// changedMsg means the dashboard published a new snapshot.
type changedMsg struct{}

type tickMsg time.Time

type healthMsg struct {
	err error
}

type loginResultMsg struct {
	resp *models.LoginResponse
	err  error
}

type actionDoneMsg struct {
	action   models.Action
	deviceID string
	err      error
}

type refreshDoneMsg struct {
	err error
}

type loggedOutMsg struct {
	err error
}
