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

// Package dashboard keeps the device list fresh while the dashboard view is
// mounted and runs device commands on the operator's behalf.
package dashboard

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/poller"
	"github.com/carverauto/secureguard/pkg/session"
)

const (
	DefaultPollInterval = 8 * time.Second

	stopTimeout = 10 * time.Second

	msgSessionExpired = "Session expired. Please login again."
	msgLoadFailed     = "Failed to load devices"
)

// Config wires a Dashboard to its collaborators.
type Config struct {
	API       DeviceAPI
	Store     session.Store
	Navigator api.Navigator
	Notifier  Notifier
	Clock     poller.Clock
	Interval  time.Duration
	Logger    logger.Logger
}

// Snapshot is an immutable copy of the dashboard state.
type Snapshot struct {
	Devices     []models.Device
	Loading     bool
	Refreshing  bool
	LastUpdated time.Time
	Busy        map[string]models.Action
	Filter      Filter
	Mounted     bool
}

// Visible applies the snapshot's filter.
func (s Snapshot) Visible() []models.Device {
	return Apply(s.Devices, s.Filter)
}

// Stats derives the stat tiles from the full device list.
func (s Snapshot) Stats() Stats {
	return ComputeStats(s.Devices)
}

// Dashboard owns the device collection for the dashboard view.
type Dashboard struct {
	api      DeviceAPI
	store    session.Store
	nav      api.Navigator
	notifier Notifier
	clock    poller.Clock
	interval time.Duration
	logger   logger.Logger

	mu          sync.Mutex
	devices     []models.Device
	loading     bool
	refreshing  bool
	lastUpdated time.Time
	busy        map[string]models.Action
	filter      Filter
	mounted     bool
	generation  uint64
	fetchSeq    uint64
	appliedSeq  uint64
	unmount     func()

	subMu       sync.Mutex
	subscribers map[int]func(Snapshot)
	nextSub     int
}

// New creates an unmounted dashboard.
func New(cfg Config) (*Dashboard, error) {
	if cfg.API == nil {
		return nil, ErrAPIRequired
	}

	if cfg.Store == nil {
		return nil, ErrStoreRequired
	}

	d := &Dashboard{
		api:         cfg.API,
		store:       cfg.Store,
		nav:         cfg.Navigator,
		notifier:    cfg.Notifier,
		clock:       cfg.Clock,
		interval:    cfg.Interval,
		logger:      cfg.Logger,
		busy:        make(map[string]models.Action),
		filter:      Filter{Tab: TabAll},
		subscribers: make(map[int]func(Snapshot)),
	}

	if d.notifier == nil {
		d.notifier = discardNotifier{}
	}

	if d.clock == nil {
		d.clock = poller.RealClock()
	}

	if d.interval <= 0 {
		d.interval = DefaultPollInterval
	}

	if d.logger == nil {
		d.logger = logger.NewTestLogger()
	}

	return d, nil
}

// Mount runs the session guard, resets the filter, fetches immediately and
// then polls every interval. The returned unmount stops polling and waits
// for the loop to exit; it is idempotent. ok is false when the guard sent
// the operator to login, in which case nothing was fetched.
func (d *Dashboard) Mount(ctx context.Context) (unmount func(), ok bool) {
	if !Guard(ctx, d.store, d.nav) {
		d.logger.Info().Msg("No session token; dashboard not mounted")

		return func() {}, false
	}

	d.mu.Lock()

	if d.mounted {
		existing := d.unmount
		d.mu.Unlock()

		return existing, true
	}

	gen := d.generation + 1

	p, err := poller.New("devices", d.interval, func(ctx context.Context) error {
		return d.fetch(ctx, gen, false)
	}, d.clock, d.logger)
	if err != nil {
		d.mu.Unlock()
		d.logger.Error().Err(err).Msg("Failed to create device poller")

		return func() {}, false
	}

	unmount = d.unmountFunc(gen, p)

	d.generation = gen
	d.mounted = true
	d.unmount = unmount
	d.filter = Filter{Tab: TabAll}
	d.loading = true
	d.refreshing = false

	d.mu.Unlock()

	if _, err := p.Run(ctx); err != nil {
		d.logger.Error().Err(err).Msg("Failed to start device poller")
		unmount()

		return func() {}, false
	}

	d.publish()

	return unmount, true
}

func (d *Dashboard) unmountFunc(gen uint64, p *poller.Poller) func() {
	return sync.OnceFunc(func() {
		d.mu.Lock()
		if d.generation == gen {
			d.mounted = false
			d.loading = false
			d.refreshing = false
			d.unmount = nil
		}
		d.mu.Unlock()

		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		if err := p.Stop(stopCtx); err != nil {
			d.logger.Warn().Err(err).Msg("Device poller did not stop in time")
		}

		d.logger.Debug().Uint64("generation", gen).Msg("Dashboard unmounted")
		d.publish()
	})
}

// Refresh is the operator-triggered reload. It reports the device count on
// success. A refresh requested while one is running is ignored.
func (d *Dashboard) Refresh(ctx context.Context) error {
	d.mu.Lock()

	if !d.mounted {
		d.mu.Unlock()

		return ErrNotMounted
	}

	if d.refreshing {
		d.mu.Unlock()

		return ErrRefreshInProgress
	}

	d.refreshing = true
	gen := d.generation

	d.mu.Unlock()

	d.publish()

	return d.fetch(ctx, gen, true)
}

// Reload fetches without the refresh indicator or a success notification.
func (d *Dashboard) Reload(ctx context.Context) error {
	d.mu.Lock()
	mounted, gen := d.mounted, d.generation
	d.mu.Unlock()

	if !mounted {
		return ErrNotMounted
	}

	return d.fetch(ctx, gen, false)
}

func (d *Dashboard) fetch(ctx context.Context, gen uint64, manual bool) error {
	d.mu.Lock()
	d.fetchSeq++
	seq := d.fetchSeq
	d.mu.Unlock()

	devices, err := d.api.ListDevices(ctx)

	d.mu.Lock()

	if !d.mounted || d.generation != gen {
		d.mu.Unlock()
		d.logger.Debug().Msg("Discarding device fetch for an unmounted dashboard")

		return nil
	}

	d.loading = false
	if manual {
		d.refreshing = false
	}

	// a fetch issued before the last applied one answered late
	if seq < d.appliedSeq {
		d.mu.Unlock()
		d.publish()
		d.logger.Debug().Uint64("seq", seq).Msg("Discarding stale device fetch")

		return nil
	}

	if err != nil {
		d.mu.Unlock()
		d.publish()

		d.logger.Warn().Err(err).Bool("manual", manual).Msg("Device fetch failed")
		d.notifier.Notify(LevelError, failureMessage(err))

		return err
	}

	d.appliedSeq = seq
	d.devices = Normalize(devices, d.logger)
	d.lastUpdated = d.clock.Now()
	count := len(d.devices)

	d.mu.Unlock()
	d.publish()

	d.logger.Debug().Int("count", count).Bool("manual", manual).Msg("Device list updated")

	if manual {
		d.notifier.Notify(LevelSuccess, fmt.Sprintf("%d devices updated", count))
	}

	return nil
}

func failureMessage(err error) string {
	kind, ok := api.KindOf(err)
	if !ok {
		return msgLoadFailed
	}

	switch kind {
	case api.KindUnauthenticated:
		return msgSessionExpired
	case api.KindNoConnection:
		return api.Message(err, api.MsgNoConnection)
	case api.KindServer, api.KindValidation:
		return api.Message(err, msgLoadFailed)
	default:
		return msgLoadFailed
	}
}

// SetTab switches the compliance tab.
func (d *Dashboard) SetTab(tab Tab) {
	d.mu.Lock()
	d.filter.Tab = tab
	d.mu.Unlock()

	d.publish()
}

// SetQuery replaces the free-text search.
func (d *Dashboard) SetQuery(q string) {
	d.mu.Lock()
	d.filter.Query = q
	d.mu.Unlock()

	d.publish()
}

// MarkBusy records an in-flight action. It fails when the device is
// already busy.
func (d *Dashboard) MarkBusy(deviceID string, action models.Action) bool {
	d.mu.Lock()

	if _, busy := d.busy[deviceID]; busy {
		d.mu.Unlock()

		return false
	}

	d.busy[deviceID] = action
	d.mu.Unlock()

	d.publish()

	return true
}

// ClearBusy returns the device card to idle.
func (d *Dashboard) ClearBusy(deviceID string) {
	d.mu.Lock()
	delete(d.busy, deviceID)
	d.mu.Unlock()

	d.publish()
}

// BusyAction reports the action in flight for a device.
func (d *Dashboard) BusyAction(deviceID string) (models.Action, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	a, ok := d.busy[deviceID]

	return a, ok
}

// Snapshot copies the current state.
func (d *Dashboard) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.snapshotLocked()
}

// Device looks up a device in the current list.
func (d *Dashboard) Device(id string) (models.Device, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := range d.devices {
		if d.devices[i].ID == id {
			return d.devices[i], true
		}
	}

	return models.Device{}, false
}

func (d *Dashboard) snapshotLocked() Snapshot {
	return Snapshot{
		Devices:     d.devices,
		Loading:     d.loading,
		Refreshing:  d.refreshing,
		LastUpdated: d.lastUpdated,
		Busy:        maps.Clone(d.busy),
		Filter:      d.filter,
		Mounted:     d.mounted,
	}
}

// Subscribe registers fn for a snapshot after every change. Callbacks run
// on the goroutine that made the change and must not block.
func (d *Dashboard) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	d.subMu.Lock()
	id := d.nextSub
	d.nextSub++
	d.subscribers[id] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		delete(d.subscribers, id)
		d.subMu.Unlock()
	}
}

func (d *Dashboard) publish() {
	snap := d.Snapshot()

	d.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(d.subscribers))
	for _, fn := range d.subscribers {
		subs = append(subs, fn)
	}
	d.subMu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}
