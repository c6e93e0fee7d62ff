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

package api

import (
	"errors"
	"fmt"

	"github.com/carverauto/secureguard/pkg/models"
)

// Kind classifies every failure the client returns.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindNoConnection    Kind = "no_connection"
	KindServer          Kind = "server"
	KindValidation      Kind = "validation"
)

const (
	// MsgNoConnection is shown when no HTTP response was received.
	MsgNoConnection = "Cannot connect to server. Please check your connection."

	msgValidation = "Request validation failed"
)

var (
	ErrBaseURLRequired      = errors.New("api base url is required")
	ErrInvalidBaseURL       = errors.New("invalid api base url")
	errUnrecognizedEnvelope = errors.New("unrecognized device list response")
	errEncodeRequest        = errors.New("failed to encode request")
	errDecodeResponse       = errors.New("failed to decode response")
)

// Error is the normalized failure returned by every Client operation.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []models.FieldError
	Err     error
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the Kind of err when it is, or wraps, an *Error.
func KindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}

	return "", false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	k, ok := KindOf(err)

	return ok && k == kind
}

// Message returns the user-facing text of an *Error, or fallback.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}

	return fallback
}

func classify(status int) Kind {
	switch status {
	case 401:
		return KindUnauthenticated
	case 400, 422:
		return KindValidation
	default:
		return KindServer
	}
}
