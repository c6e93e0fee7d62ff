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

package cli

import "errors"

var (
	errUnknownCommand     = errors.New("unknown command")
	errAdminIDRequired    = errors.New("login requires -id")
	errPasswordRequired   = errors.New("password cannot be empty")
	errDeviceRequired     = errors.New("action requires -device")
	errInvalidTab         = errors.New("invalid -tab value")
	errNoInteractive      = errors.New("interactive console is not available")
	errLoginFailed        = errors.New("login failed")
	errNotLoggedIn        = errors.New("not logged in")
	errReadPassword       = errors.New("failed to read password")
	errUnexpectedArgument = errors.New("unexpected argument")
)
