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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "secureguard:admin-token"

// RedisStore shares one admin session between consoles on different hosts.
// Keys expire together with the token when its exp claim is readable.
type RedisStore struct {
	client *redis.Client
	key    string
	now    func() time.Time
	logger logger.Logger
}

func NewRedisStore(client *redis.Client, key string, log logger.Logger) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &RedisStore{client: client, key: key, now: time.Now, logger: log}
}

func (r *RedisStore) Get(ctx context.Context) (string, bool, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("%w: get: %w", errRedisToken, err)
	}

	return val, val != "", nil
}

func (r *RedisStore) Set(ctx context.Context, token string) error {
	if token == "" {
		r.logger.Warn().Msg("Ignoring empty token")

		return nil
	}

	var ttl time.Duration

	if exp, ok := ExpiresAt(token); ok {
		ttl = exp.Sub(r.now())
		if ttl <= 0 {
			// already expired; keep it briefly so the next request sees the 401
			ttl = time.Second
		}
	}

	if err := r.client.Set(ctx, r.key, token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", errRedisToken, err)
	}

	return nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", errRedisToken, err)
	}

	return nil
}

// Close releases the redis connection pool.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
