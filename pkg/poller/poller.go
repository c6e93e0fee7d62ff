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

// Package poller runs a function immediately and then on a fixed interval
// until it is stopped.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/secureguard/pkg/logger"
)

const stopTimeout = 10 * time.Second

// PollFunc is one polling cycle. Errors are logged; they never stop the loop.
type PollFunc func(ctx context.Context) error

// Poller is a cancellable scheduled task. A Poller runs at most once; a
// stopped Poller cannot be restarted.
type Poller struct {
	name     string
	interval time.Duration
	pollFunc PollFunc
	clock    Clock
	logger   logger.Logger

	done      chan struct{}
	closeOnce sync.Once
	reloadCh  chan time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	exited  chan struct{}
}

// New creates a new poller instance.
func New(name string, interval time.Duration, fn PollFunc, clock Clock, log logger.Logger) (*Poller, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDuration, interval)
	}

	if fn == nil {
		return nil, ErrNilPollFunc
	}

	if clock == nil {
		clock = realClock{}
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Poller{
		name:     name,
		interval: interval,
		pollFunc: fn,
		clock:    clock,
		logger:   log,
		done:     make(chan struct{}),
		reloadCh: make(chan time.Duration, 1),
	}, nil
}

// Start polls once, then on every tick, until ctx ends or Stop is called.
// It blocks for the life of the loop.
func (p *Poller) Start(ctx context.Context) error {
	loopCtx, exited, err := p.begin(ctx)
	if err != nil {
		return err
	}

	return p.loop(loopCtx, exited)
}

// Run starts the loop on its own goroutine and returns its cancellation
// handle. The handle blocks until the loop has exited, so no poll runs after
// it returns.
func (p *Poller) Run(ctx context.Context) (stop func(), err error) {
	loopCtx, exited, err := p.begin(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = p.loop(loopCtx, exited)
	}()

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := p.Stop(stopCtx); err != nil {
			p.logger.Warn().Err(err).Str("poller", p.name).Msg("Poller did not stop in time")
		}
	}, nil
}

func (p *Poller) begin(ctx context.Context) (context.Context, chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil, nil, ErrStopped
	}

	if p.started {
		return nil, nil, ErrAlreadyStarted
	}

	loopCtx, cancel := context.WithCancel(ctx)

	p.started = true
	p.cancel = cancel
	p.exited = make(chan struct{})

	return loopCtx, p.exited, nil
}

func (p *Poller) loop(ctx context.Context, exited chan struct{}) error {
	defer close(exited)

	ticker := p.clock.Ticker(p.interval)

	defer func() {
		ticker.Stop()
	}()

	p.logger.Info().Str("poller", p.name).Dur("interval", p.interval).Msg("Starting poller")

	p.pollOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-ticker.Chan():
			p.pollOnce(ctx)
		case newInterval := <-p.reloadCh:
			ticker.Stop()
			ticker = p.clock.Ticker(newInterval)
			p.logger.Info().Str("poller", p.name).Dur("interval", newInterval).Msg("Poll interval hot-reloaded")
		}
	}
}

// pollOnce re-checks for a stop that raced with the tick.
func (p *Poller) pollOnce(ctx context.Context) {
	select {
	case <-p.done:
		return
	case <-ctx.Done():
		return
	default:
	}

	if err := p.pollFunc(ctx); err != nil {
		p.logger.Debug().Err(err).Str("poller", p.name).Msg("Poll failed")
	}
}

// UpdateInterval swaps the tick interval of a running poller. A pending
// update that has not been applied yet is replaced.
func (p *Poller) UpdateInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, d)
	}

	select {
	case p.reloadCh <- d:
	default:
		select {
		case <-p.reloadCh:
		default:
		}

		p.reloadCh <- d
	}

	return nil
}

// Stop cancels the loop and any in-flight poll, then waits for the loop to
// exit or ctx to expire. It is safe to call more than once and before Start.
func (p *Poller) Stop(ctx context.Context) error {
	p.closeOnce.Do(func() {
		close(p.done)
	})

	p.mu.Lock()
	p.stopped = true
	cancel, exited := p.cancel, p.exited
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if exited == nil {
		return nil
	}

	select {
	case <-exited:
		p.logger.Info().Str("poller", p.name).Msg("Poller stopped")

		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
