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

import (
	"fmt"
	"io"
)

// PrintUsage writes the command reference to w.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: secureguard [global options] [command] [options]

SecureGuard MDM admin console. Without a command the interactive console
starts.

Global options:
  -config string   path to a JSON configuration file
  -help            show this help message

Commands:
  tui              interactive console (default)
  login            sign in and store the session token
  logout           forget the stored session token
  status           show the API URL and stored session state
  health           query the API health endpoint
  devices          list managed devices
  lock             lock a device
  unlock           unlock a device
  wipe             wipe a device

Options for login:
  -id string         admin id
  -password string   password (read from stdin or prompted when omitted)

Options for devices:
  -tab string   all, compliant or nonCompliant (default "all")
  -q string     search by id, model, OS version or user
  -json         print JSON instead of a table

Options for lock, unlock and wipe:
  -device string   device id
  -yes             skip the confirmation prompt

Environment:
  SECUREGUARD_API_URL, SECUREGUARD_POLL_INTERVAL, SECUREGUARD_TOKEN_STORE,
  SECUREGUARD_STATE_DIR, LOG_LEVEL, LOG_OUTPUT (also read from .env)

Examples:
  # Sign in, list non-compliant devices, then lock one
  secureguard login -id ADM001
  secureguard devices -tab nonCompliant
  secureguard lock -device 3f2c9a1e

  # Scripted use
  echo "$ADMIN_PASSWORD" | secureguard login -id ADM001
  secureguard devices -json -q pixel
  secureguard wipe -device 3f2c9a1e -yes
`)
}
