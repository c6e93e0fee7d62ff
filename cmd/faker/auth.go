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

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/carverauto/secureguard/pkg/models"
)

var (
	errInvalidCredentials = errors.New("invalid credentials")
	errInvalidToken       = errors.New("invalid token")
)

// adminClaims are the JWT claims the fake API issues.
type adminClaims struct {
	AdminID string `json:"adminId"`
	Name    string `json:"name,omitempty"`
	Role    string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// authenticator checks the single configured admin and issues HS256 tokens.
type authenticator struct {
	admin  models.Admin
	hash   []byte
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func newAuthenticator(cfg *Config) (*authenticator, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Auth.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing admin password: %w", err)
	}

	return &authenticator{
		admin: models.Admin{
			ID:      uuid.NewString(),
			AdminID: cfg.Auth.AdminID,
			Name:    cfg.Auth.AdminName,
			Email:   cfg.Auth.AdminEmail,
			Role:    "admin",
		},
		hash:   hash,
		secret: []byte(cfg.Auth.JWTSecret),
		ttl:    time.Duration(cfg.Auth.TokenTTL),
		now:    time.Now,
	}, nil
}

// login returns a signed token for the admin when the credentials match.
func (a *authenticator) login(adminID, password string) (*models.LoginResponse, error) {
	if adminID != a.admin.AdminID {
		return nil, errInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	now := a.now()
	claims := adminClaims{
		AdminID: a.admin.AdminID,
		Name:    a.admin.Name,
		Role:    a.admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.admin.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return nil, fmt.Errorf("signing token: %w", err)
	}

	admin := a.admin

	return &models.LoginResponse{Token: token, Admin: &admin}, nil
}

// verify checks signature, algorithm and expiry.
func (a *authenticator) verify(token string) error {
	parsed, err := jwt.ParseWithClaims(token, &adminClaims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", errInvalidToken, err)
	}

	if !parsed.Valid {
		return errInvalidToken
	}

	return nil
}
