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

// Package session holds the console's credential: the bearer token issued at
// login and the operator's non-secret login preferences.
package session

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Store persists the admin bearer token. It is the only place the token
// lives; every other component reads it through this interface.
type Store interface {
	// Get returns the token and whether one is stored.
	Get(ctx context.Context) (string, bool, error)
	// Set overwrites the stored token. An empty token is ignored.
	Set(ctx context.Context, token string) error
	// Clear removes the token. Clearing an empty store is not an error.
	Clear(ctx context.Context) error
}

// Status is the best-effort validity of a token, decoded without verifying
// its signature.
type Status string

const (
	StatusAbsent    Status = "absent"
	StatusMalformed Status = "malformed"
	StatusExpired   Status = "expired"
	StatusValid     Status = "valid"
)

// DecodeStatus classifies token against the current time.
func DecodeStatus(token string) Status {
	return DecodeStatusAt(token, time.Now())
}

// DecodeStatusAt never fails: anything that is not a three-part JWT with a
// readable payload is malformed. Tokens without an exp claim are valid.
func DecodeStatusAt(token string, now time.Time) Status {
	if strings.TrimSpace(token) == "" {
		return StatusAbsent
	}

	exp, ok, err := expiry(token)
	if err != nil {
		return StatusMalformed
	}

	if ok && !now.Before(exp) {
		return StatusExpired
	}

	return StatusValid
}

// ExpiresAt returns the token's exp claim when it can be decoded.
func ExpiresAt(token string) (time.Time, bool) {
	exp, ok, err := expiry(token)
	if err != nil || !ok {
		return time.Time{}, false
	}

	return exp, true
}

func expiry(token string) (time.Time, bool, error) {
	claims := jwt.MapClaims{}

	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(token), claims); err != nil {
		return time.Time{}, false, err
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return time.Time{}, false, err
	}

	if exp == nil {
		return time.Time{}, false, nil
	}

	return exp.Time, true, nil
}
