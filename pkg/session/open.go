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
	"fmt"
	"path/filepath"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"

	tokenFileName       = "token.json"
	preferencesFileName = "preferences.json"
)

// Config selects and parameterizes the token store backend.
type Config struct {
	Backend       string `json:"backend" env:"TOKEN_STORE" validate:"omitempty,oneof=file memory redis"`
	RedisAddr     string `json:"redis_addr" env:"REDIS_ADDR" validate:"required_if=Backend redis"`
	RedisPassword string `json:"redis_password" env:"REDIS_PASSWORD" sensitive:"true"`
	RedisDB       int    `json:"redis_db" env:"REDIS_DB" validate:"gte=0"`
	RedisKey      string `json:"redis_key" env:"REDIS_KEY"`
}

// Open builds the configured Store. File-backed state lives under stateDir.
func Open(cfg Config, stateDir string, log logger.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(TokenPath(stateDir), log), nil
	case BackendMemory:
		return NewMemoryStore(log), nil
	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		return NewRedisStore(client, cfg.RedisKey, log), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}

func TokenPath(stateDir string) string {
	return filepath.Join(stateDir, tokenFileName)
}

func PreferencesPath(stateDir string) string {
	return filepath.Join(stateDir, preferencesFileName)
}
