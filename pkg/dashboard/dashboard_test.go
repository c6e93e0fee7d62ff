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

package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/poller"
	"github.com/carverauto/secureguard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// notifications records every Notify call.
type notifications struct {
	mu   sync.Mutex
	msgs []string
}

func (n *notifications) Notify(level Level, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.msgs = append(n.msgs, fmt.Sprintf("%s: %s", level, message))
}

func (n *notifications) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]string{}, n.msgs...)
}

type harness struct {
	ctrl   *gomock.Controller
	api    *MockDeviceAPI
	nav    *api.MockNavigator
	clock  *poller.MockClock
	ticks  chan time.Time
	store  session.Store
	notes  *notifications
	dash   *Dashboard
	signal chan struct{}
}

func newHarness(t *testing.T, withToken bool) *harness {
	t.Helper()

	ctrl := gomock.NewController(t)

	h := &harness{
		ctrl:   ctrl,
		api:    NewMockDeviceAPI(ctrl),
		nav:    api.NewMockNavigator(ctrl),
		clock:  poller.NewMockClock(ctrl),
		ticks:  make(chan time.Time),
		store:  session.NewMemoryStore(nil),
		notes:  &notifications{},
		signal: make(chan struct{}, 16),
	}

	if withToken {
		require.NoError(t, h.store.Set(context.Background(), "tok"))
	}

	h.clock.EXPECT().Now().Return(fixedNow).AnyTimes()

	d, err := New(Config{
		API:       h.api,
		Store:     h.store,
		Navigator: h.nav,
		Notifier:  h.notes,
		Clock:     h.clock,
	})
	require.NoError(t, err)

	h.dash = d

	return h
}

// armTicker expects exactly one ticker at the default interval.
func (h *harness) armTicker() {
	var recv <-chan time.Time = h.ticks

	ticker := poller.NewMockTicker(h.ctrl)
	ticker.EXPECT().Chan().Return(recv).AnyTimes()
	ticker.EXPECT().Stop().Times(1)
	h.clock.EXPECT().Ticker(DefaultPollInterval).Return(ticker).Times(1)
}

// listReturns answers ListDevices and signals after each call.
func (h *harness) listReturns(devices []models.Device, err error) *gomock.Call {
	return h.api.EXPECT().ListDevices(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Device, error) {
		defer func() { h.signal <- struct{}{} }()

		return devices, err
	})
}

func (h *harness) awaitFetch(t *testing.T) {
	t.Helper()

	select {
	case <-h.signal:
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for a device fetch")
	}
}

// settle waits until the dashboard has applied the latest fetch.
func (h *harness) settle(t *testing.T, cond func(Snapshot) bool) {
	t.Helper()

	require.Eventually(t, func() bool { return cond(h.dash.Snapshot()) }, waitFor, 5*time.Millisecond)
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{Store: session.NewMemoryStore(nil)})
	require.ErrorIs(t, err, ErrAPIRequired)

	ctrl := gomock.NewController(t)

	_, err = New(Config{API: NewMockDeviceAPI(ctrl)})
	require.ErrorIs(t, err, ErrStoreRequired)
}

func TestGuard(t *testing.T) {
	ctrl := gomock.NewController(t)
	nav := api.NewMockNavigator(ctrl)
	store := session.NewMemoryStore(nil)

	nav.EXPECT().Navigate(models.ViewLogin).Times(1)
	assert.False(t, Guard(context.Background(), store, nav))

	require.NoError(t, store.Set(context.Background(), "tok"))
	assert.True(t, Guard(context.Background(), store, nav))

	require.NoError(t, store.Clear(context.Background()))
	assert.False(t, Guard(context.Background(), store, nil))
}

func TestMountWithoutTokenRedirectsAndNeverFetches(t *testing.T) {
	h := newHarness(t, false)

	h.nav.EXPECT().Navigate(models.ViewLogin).Times(1)

	unmount, ok := h.dash.Mount(context.Background())
	require.False(t, ok)
	require.NotNil(t, unmount)

	unmount()

	assert.False(t, h.dash.Snapshot().Mounted)
}

func TestMountFetchesImmediatelyThenPolls(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()

	first := decodeFixture(t, sortFixture)
	second := decodeFixture(t, `[{"deviceId":"d9","isCompliant":true}]`)

	gomock.InOrder(
		h.listReturns(first, nil),
		h.listReturns(second, nil),
	)

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	h.awaitFetch(t)
	h.settle(t, func(s Snapshot) bool { return len(s.Devices) == 3 })

	snap := h.dash.Snapshot()
	assert.Equal(t, []string{"d3", "d2", "d1"}, ids(snap.Devices))
	assert.False(t, snap.Loading)
	assert.Equal(t, fixedNow, snap.LastUpdated)

	h.ticks <- fixedNow
	h.awaitFetch(t)
	h.settle(t, func(s Snapshot) bool { return len(s.Devices) == 1 })

	unmount()

	// nothing receives ticks after unmount, and gomock fails on a third fetch
	select {
	case h.ticks <- fixedNow:
		t.Fatal("poller still running after unmount")
	case <-time.After(50 * time.Millisecond):
	}

	assert.False(t, h.dash.Snapshot().Mounted)

	unmount()
}

func TestMountResetsFilter(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()
	h.listReturns(nil, nil)

	h.dash.SetTab(TabNonCompliant)
	h.dash.SetQuery("pixel")

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	defer unmount()

	assert.Equal(t, Filter{Tab: TabAll}, h.dash.Snapshot().Filter)
	h.awaitFetch(t)
}

func TestFetchResultAfterUnmountIsDiscarded(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()

	entered := make(chan struct{})
	release := make(chan struct{})

	h.api.EXPECT().ListDevices(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Device, error) {
		close(entered)
		<-release

		return decodeFixture(t, sortFixture), nil
	})

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	<-entered

	done := make(chan struct{})

	go func() {
		unmount()
		close(done)
	}()

	h.settle(t, func(s Snapshot) bool { return !s.Mounted })
	close(release)

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("unmount did not return")
	}

	snap := h.dash.Snapshot()
	assert.Empty(t, snap.Devices)
	assert.True(t, snap.LastUpdated.IsZero())
	assert.Empty(t, h.notes.all())
}

func TestConcurrentMountsShareOneUnmount(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()
	h.listReturns(nil, nil)

	const mounts = 8

	var wg sync.WaitGroup

	handles := make([]func(), mounts)
	oks := make([]bool, mounts)

	for i := range mounts {
		wg.Add(1)

		go func() {
			defer wg.Done()

			handles[i], oks[i] = h.dash.Mount(context.Background())
		}()
	}

	wg.Wait()
	h.awaitFetch(t)

	for i := range mounts {
		require.True(t, oks[i])
		require.NotNil(t, handles[i])
	}

	again, ok := h.dash.Mount(context.Background())
	require.True(t, ok)
	require.NotNil(t, again)

	again()

	assert.False(t, h.dash.Snapshot().Mounted)

	for _, unmount := range handles {
		unmount()
	}
}

func TestOlderFetchDoesNotOverwriteNewerReload(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()

	unlocked := decodeFixture(t, `[{"deviceId":"d1","isCompliant":true,"isLocked":false}]`)
	locked := decodeFixture(t, `[{"deviceId":"d1","isCompliant":true,"isLocked":true}]`)

	entered := make(chan struct{})
	release := make(chan struct{})

	gomock.InOrder(
		h.listReturns(unlocked, nil),
		h.api.EXPECT().ListDevices(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Device, error) {
			close(entered)
			<-release

			return unlocked, nil
		}),
		h.listReturns(locked, nil),
		h.listReturns(locked, nil),
	)

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	defer unmount()

	h.awaitFetch(t)
	h.settle(t, func(s Snapshot) bool { return len(s.Devices) == 1 })

	// the tick's fetch stalls while a lock-triggered reload completes
	h.ticks <- fixedNow
	<-entered

	require.NoError(t, h.dash.Reload(context.Background()))
	h.awaitFetch(t)
	require.True(t, h.dash.Snapshot().Devices[0].IsLocked)

	close(release)

	// the loop only takes the next tick once the stalled poll has been applied
	h.ticks <- fixedNow
	h.awaitFetch(t)

	snap := h.dash.Snapshot()
	require.Len(t, snap.Devices, 1)
	assert.True(t, snap.Devices[0].IsLocked)
	assert.False(t, snap.Loading)
	assert.Empty(t, h.notes.all())
}

func TestFetchFailureKeepsStaleDataAndNotifies(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()

	gomock.InOrder(
		h.listReturns(decodeFixture(t, sortFixture), nil),
		h.listReturns(nil, &api.Error{Kind: api.KindUnauthenticated, Status: 401, Message: "HTTP error 401"}),
		h.listReturns(nil, &api.Error{Kind: api.KindNoConnection, Message: api.MsgNoConnection}),
	)

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	defer unmount()

	h.awaitFetch(t)
	h.settle(t, func(s Snapshot) bool { return len(s.Devices) == 3 })

	h.ticks <- fixedNow
	h.awaitFetch(t)

	h.ticks <- fixedNow
	h.awaitFetch(t)

	require.Eventually(t, func() bool { return len(h.notes.all()) == 2 }, waitFor, 5*time.Millisecond)

	assert.Equal(t, []string{
		"error: Session expired. Please login again.",
		"error: " + api.MsgNoConnection,
	}, h.notes.all())
	assert.Len(t, h.dash.Snapshot().Devices, 3)
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{err: &api.Error{Kind: api.KindUnauthenticated, Message: "jwt expired"}, want: "Session expired. Please login again."},
		{err: &api.Error{Kind: api.KindNoConnection, Message: api.MsgNoConnection}, want: api.MsgNoConnection},
		{err: &api.Error{Kind: api.KindServer, Status: 500, Message: "Database unavailable"}, want: "Database unavailable"},
		{err: &api.Error{Kind: api.KindValidation, Status: 400}, want: "Failed to load devices"},
		{err: fmt.Errorf("wrapped: %w", &api.Error{Kind: api.KindServer, Message: "boom"}), want: "boom"},
		{err: errors.New("plain"), want: "Failed to load devices"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, failureMessage(tt.err))
	}
}

func TestRefreshNotifiesCount(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()

	gomock.InOrder(
		h.listReturns(nil, nil),
		h.listReturns(decodeFixture(t, sortFixture), nil),
	)

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	defer unmount()

	h.awaitFetch(t)
	h.settle(t, func(s Snapshot) bool { return !s.Loading })

	var sawRefreshing bool

	unsubscribe := h.dash.Subscribe(func(s Snapshot) {
		if s.Refreshing {
			sawRefreshing = true
		}
	})

	require.NoError(t, h.dash.Refresh(context.Background()))
	h.awaitFetch(t)
	unsubscribe()

	snap := h.dash.Snapshot()
	assert.True(t, sawRefreshing)
	assert.False(t, snap.Refreshing)
	assert.Len(t, snap.Devices, 3)
	assert.Equal(t, []string{"success: 3 devices updated"}, h.notes.all())
}

func TestRefreshWhileRefreshingIsIgnored(t *testing.T) {
	h := newHarness(t, true)
	h.armTicker()
	h.listReturns(nil, nil)

	unmount, ok := h.dash.Mount(context.Background())
	require.True(t, ok)

	defer unmount()

	h.awaitFetch(t)

	h.dash.mu.Lock()
	h.dash.refreshing = true
	h.dash.mu.Unlock()

	require.ErrorIs(t, h.dash.Refresh(context.Background()), ErrRefreshInProgress)
}

func TestRefreshAndReloadRequireMount(t *testing.T) {
	h := newHarness(t, true)

	require.ErrorIs(t, h.dash.Refresh(context.Background()), ErrNotMounted)
	require.ErrorIs(t, h.dash.Reload(context.Background()), ErrNotMounted)
}

func TestBusyMarkers(t *testing.T) {
	h := newHarness(t, true)

	var last Snapshot

	h.dash.Subscribe(func(s Snapshot) { last = s })

	require.True(t, h.dash.MarkBusy("d1", models.ActionLock))
	require.False(t, h.dash.MarkBusy("d1", models.ActionWipe))
	require.True(t, h.dash.MarkBusy("d2", models.ActionWipe))

	assert.Equal(t, map[string]models.Action{"d1": models.ActionLock, "d2": models.ActionWipe}, last.Busy)

	h.dash.ClearBusy("d1")

	_, busy := h.dash.BusyAction("d1")
	assert.False(t, busy)

	action, busy := h.dash.BusyAction("d2")
	assert.True(t, busy)
	assert.Equal(t, models.ActionWipe, action)
	assert.Equal(t, map[string]models.Action{"d2": models.ActionWipe}, last.Busy)
}
