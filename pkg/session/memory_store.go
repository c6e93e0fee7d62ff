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
	"context"
	"sync"

	"github.com/carverauto/secureguard/pkg/logger"
)

// MemoryStore keeps the token for the life of the process only.
type MemoryStore struct {
	mu     sync.RWMutex
	token  string
	logger logger.Logger
}

func NewMemoryStore(log logger.Logger) *MemoryStore {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &MemoryStore{logger: log}
}

func (m *MemoryStore) Get(context.Context) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, m.token != "", nil
}

func (m *MemoryStore) Set(_ context.Context, token string) error {
	if token == "" {
		m.logger.Warn().Msg("Ignoring empty token")

		return nil
	}

	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()

	return nil
}
