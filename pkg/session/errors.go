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

import "errors"

var (
	ErrUnknownBackend = errors.New("unknown token store backend")
	errReadToken      = errors.New("failed to read token file")
	errWriteToken     = errors.New("failed to write token file")
	errRedisToken     = errors.New("redis token store")
	errPreferences    = errors.New("failed to access preferences")
	errProfile        = errors.New("failed to access admin profile")
)
