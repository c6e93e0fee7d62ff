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

import "errors"

var (
	ErrAPIRequired       = errors.New("device api is required")
	ErrStoreRequired     = errors.New("token store is required")
	ErrNotMounted        = errors.New("dashboard is not mounted")
	ErrRefreshInProgress = errors.New("refresh already in progress")
	ErrDeclined          = errors.New("action declined")
	ErrBusy              = errors.New("device has an action in flight")
	ErrUnknownAction     = errors.New("unknown device action")
)
