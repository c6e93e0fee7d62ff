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

import (
	"context"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

// Guard admits a protected view only when a token is stored. Otherwise it
// navigates to login and returns false. Token validity is not checked here;
// a later 401 is what demotes a stale session.
func Guard(ctx context.Context, store session.Store, nav api.Navigator) bool {
	token, ok, err := store.Get(ctx)
	if err == nil && ok && token != "" {
		return true
	}

	if nav != nil {
		nav.Navigate(models.ViewLogin)
	}

	return false
}
