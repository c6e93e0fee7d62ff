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
	"encoding/json"
	"reflect"
	"strings"
)

const redacted = "********"

// Redacted renders cfg as JSON with every `sensitive:"true"` field masked.
func Redacted(cfg *Config) ([]byte, error) {
	return RedactedValue(cfg)
}

// RedactedValue masks sensitive fields of any configuration struct.
func RedactedValue(v interface{}) ([]byte, error) {
	return json.Marshal(filterSensitive(reflect.ValueOf(v)))
}

func filterSensitive(v reflect.Value) interface{} {
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return v.Interface()
	}

	t := v.Type()
	out := make(map[string]interface{}, t.NumField())

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}

		if name == "" {
			name = f.Name
		}

		fv := v.Field(i)

		if f.Tag.Get("sensitive") == "true" {
			if !fv.IsZero() {
				out[name] = redacted
			}

			continue
		}

		if _, ok := fv.Interface().(json.Marshaler); ok {
			out[name] = fv.Interface()

			continue
		}

		out[name] = filterSensitive(fv)
	}

	return out
}
