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

package tui

import (
	"context"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
)

var (
	_ api.Navigator       = (*Bridge)(nil)
	_ dashboard.Notifier  = (*Bridge)(nil)
	_ dashboard.Confirmer = (*Bridge)(nil)
)

// Bridge lets the API client, the dashboard and the dispatcher talk to the
// running program. Every call turns into a message delivered on its own
// goroutine, so it is safe from inside Update as well as from workers.
type Bridge struct {
	mu      sync.RWMutex
	send    func(tea.Msg)
	current atomic.Value
}

// NewBridge returns a bridge whose current view is the login screen.
func NewBridge() *Bridge {
	b := &Bridge{}
	b.current.Store(models.ViewLogin)

	return b
}

// Attach routes messages into p. Messages sent before Attach are dropped.
func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	b.mu.Unlock()
}

func (b *Bridge) dispatch(msg tea.Msg) bool {
	b.mu.RLock()
	send := b.send
	b.mu.RUnlock()

	if send == nil {
		return false
	}

	go send(msg)

	return true
}

// Current reports the view the program is showing.
func (b *Bridge) Current() models.View {
	v, _ := b.current.Load().(models.View)

	return v
}

func (b *Bridge) setCurrent(v models.View) {
	b.current.Store(v)
}

// Navigate asks the program to switch views.
func (b *Bridge) Navigate(v models.View) {
	b.dispatch(navigateMsg{view: v})
}

// Notify shows a toast.
func (b *Bridge) Notify(level dashboard.Level, message string) {
	b.dispatch(toastMsg{level: level, text: message})
}

// Confirm opens a modal and blocks until the operator answers or ctx ends.
func (b *Bridge) Confirm(ctx context.Context, prompt string) bool {
	reply := make(chan bool, 1)

	if !b.dispatch(confirmMsg{prompt: prompt, reply: reply}) {
		return false
	}

	select {
	case ok := <-reply:
		return ok
	case <-ctx.Done():
		return false
	}
}
