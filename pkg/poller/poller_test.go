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

package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

func newTestTicker(ctrl *gomock.Controller, clock *MockClock, interval time.Duration) chan time.Time {
	ch := make(chan time.Time)

	var recv <-chan time.Time = ch

	ticker := NewMockTicker(ctrl)
	ticker.EXPECT().Chan().Return(recv).AnyTimes()
	ticker.EXPECT().Stop().Times(1)
	clock.EXPECT().Ticker(interval).Return(ticker).Times(1)

	return ch
}

// countingPoll signals on calls after every completed poll.
func countingPoll(calls chan<- int) (PollFunc, *atomic.Int32) {
	var n atomic.Int32

	return func(context.Context) error {
		calls <- int(n.Add(1))

		return nil
	}, &n
}

func awaitCall(t *testing.T, calls <-chan int, want int) {
	t.Helper()

	select {
	case got := <-calls:
		require.Equal(t, want, got)
	case <-time.After(waitFor):
		t.Fatalf("timed out waiting for poll %d", want)
	}
}

func TestNewValidates(t *testing.T) {
	noop := func(context.Context) error { return nil }

	_, err := New("devices", 0, noop, nil, nil)
	require.ErrorIs(t, err, ErrInvalidDuration)

	_, err = New("devices", time.Second, nil, nil, nil)
	require.ErrorIs(t, err, ErrNilPollFunc)

	p, err := New("devices", time.Second, noop, nil, nil)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestPollerPollsImmediatelyThenOnTicks(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	ticks := newTestTicker(ctrl, clock, 8*time.Second)

	calls := make(chan int, 10)
	fn, _ := countingPoll(calls)

	p, err := New("devices", 8*time.Second, fn, clock, logger.NewTestLogger())
	require.NoError(t, err)

	stop, err := p.Run(context.Background())
	require.NoError(t, err)

	awaitCall(t, calls, 1)

	ticks <- time.Now()
	awaitCall(t, calls, 2)

	ticks <- time.Now()
	awaitCall(t, calls, 3)

	stop()
}

func TestPollerNoPollAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	ticks := newTestTicker(ctrl, clock, time.Second)

	calls := make(chan int, 10)
	fn, count := countingPoll(calls)

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	stop, err := p.Run(context.Background())
	require.NoError(t, err)

	awaitCall(t, calls, 1)

	stop()

	// nobody may receive further ticks once the handle has returned
	select {
	case ticks <- time.Now():
		t.Fatal("tick delivered after stop")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, int32(1), count.Load())

	// the handle is idempotent
	stop()
}

func TestPollerStopCancelsInflightPoll(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	newTestTicker(ctrl, clock, time.Second)

	entered := make(chan struct{})
	fn := func(ctx context.Context) error {
		close(entered)
		<-ctx.Done()

		return ctx.Err()
	}

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	<-entered

	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()

	require.NoError(t, p.Stop(ctx))
}

func TestPollerErrorsDoNotStopLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	ticks := newTestTicker(ctrl, clock, time.Second)

	calls := make(chan int, 10)

	var n atomic.Int32

	fn := func(context.Context) error {
		calls <- int(n.Add(1))

		return errors.New("boom")
	}

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	stop, err := p.Run(context.Background())
	require.NoError(t, err)

	defer stop()

	awaitCall(t, calls, 1)

	ticks <- time.Now()
	awaitCall(t, calls, 2)
}

func TestPollerStartTwiceAndAfterStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	newTestTicker(ctrl, clock, time.Second)

	calls := make(chan int, 10)
	fn, _ := countingPoll(calls)

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	stop, err := p.Run(context.Background())
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrAlreadyStarted)

	stop()

	err = p.Start(context.Background())
	require.ErrorIs(t, err, ErrStopped)
}

func TestPollerStopBeforeStart(t *testing.T) {
	p, err := New("devices", time.Second, func(context.Context) error { return nil }, nil, nil)
	require.NoError(t, err)

	require.NoError(t, p.Stop(context.Background()))

	_, err = p.Run(context.Background())
	require.ErrorIs(t, err, ErrStopped)
}

func TestPollerStartReturnsOnContextCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	newTestTicker(ctrl, clock, time.Second)

	calls := make(chan int, 10)
	fn, _ := countingPoll(calls)

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)

	go func() { errCh <- p.Start(ctx) }()

	awaitCall(t, calls, 1)
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(waitFor):
		t.Fatal("Start did not return after cancel")
	}
}

func TestPollerUpdateInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	clock := NewMockClock(ctrl)
	newTestTicker(ctrl, clock, time.Second)
	ticks := newTestTicker(ctrl, clock, 30*time.Second)

	calls := make(chan int, 10)
	fn, _ := countingPoll(calls)

	p, err := New("devices", time.Second, fn, clock, nil)
	require.NoError(t, err)

	require.ErrorIs(t, p.UpdateInterval(0), ErrInvalidDuration)

	stop, err := p.Run(context.Background())
	require.NoError(t, err)

	defer stop()

	awaitCall(t, calls, 1)
	require.NoError(t, p.UpdateInterval(30*time.Second))

	// the tick on the new ticker proves the swap happened
	ticks <- time.Now()
	awaitCall(t, calls, 2)
}
