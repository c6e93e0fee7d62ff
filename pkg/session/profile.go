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
	"path/filepath"

	"github.com/carverauto/secureguard/pkg/models"
)

const profileFileName = "admin.json"

func ProfilePath(stateDir string) string {
	return filepath.Join(stateDir, profileFileName)
}

// LoadProfile returns the admin saved by the last login, or nil when there
// is none.
func LoadProfile(path string) (*models.Admin, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", errProfile, err)
	}

	var admin models.Admin
	if err := json.Unmarshal(data, &admin); err != nil {
		return nil, fmt.Errorf("%w: %w", errProfile, err)
	}

	if admin.AdminID == "" && admin.Name == "" {
		return nil, nil
	}

	return &admin, nil
}

// SaveProfile records the logged-in admin. A nil admin clears the file.
func SaveProfile(path string, admin *models.Admin) error {
	if admin == nil {
		return ClearProfile(path)
	}

	data, err := json.Marshal(admin)
	if err != nil {
		return fmt.Errorf("%w: %w", errProfile, err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", errProfile, err)
	}

	return nil
}

func ClearProfile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", errProfile, err)
	}

	return nil
}
