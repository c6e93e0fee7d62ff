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

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Preferences are the login form settings that survive between runs. The
// password is never part of them.
type Preferences struct {
	Remember    bool   `json:"remember"`
	LastAdminID string `json:"last_admin_id,omitempty"`
}

// LoadPreferences returns zero preferences when the file does not exist.
func LoadPreferences(path string) (Preferences, error) {
	var p Preferences

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return p, nil
	}

	if err != nil {
		return p, fmt.Errorf("%w: %w", errPreferences, err)
	}

	if err := json.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf("%w: %w", errPreferences, err)
	}

	if !p.Remember {
		p.LastAdminID = ""
	}

	return p, nil
}

// SavePreferences records the admin id only when remember is set.
func SavePreferences(path string, remember bool, adminID string) error {
	p := Preferences{Remember: remember}
	if remember {
		p.LastAdminID = strings.TrimSpace(adminID)
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("%w: %w", errPreferences, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", errPreferences, err)
	}

	return nil
}
