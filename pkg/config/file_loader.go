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

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var (
	ErrReadConfigFile  = errors.New("failed to read config file")
	ErrParseConfigFile = errors.New("failed to parse config file")
)

// FileConfigLoader overlays a JSON file onto an already defaulted struct.
type FileConfigLoader struct {
	// AllowUnknown skips the check for keys that match no field.
	AllowUnknown bool
}

// Load decodes path over dst; keys missing from the file keep their
// current values. An empty file is a no-op.
func (l *FileConfigLoader) Load(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrReadConfigFile, path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	if !l.AllowUnknown {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w %s: %w", ErrParseConfigFile, path, err)
	}

	return nil
}
