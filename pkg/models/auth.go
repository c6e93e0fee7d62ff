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

package models

// Admin is the operator identity returned by a successful login.
type Admin struct {
	ID      string `json:"id,omitempty"`
	AdminID string `json:"adminId"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
}

// DisplayName prefers the human name over the login id.
func (a *Admin) DisplayName() string {
	if a == nil {
		return ""
	}

	return firstNonEmpty(a.Name, a.AdminID)
}

// LoginRequest represents a login request.
// @Description Authentication request with admin id and password.
type LoginRequest struct {
	AdminID  string `json:"adminId" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	Admin *Admin `json:"admin,omitempty"`
}
