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

// Package tui is the interactive terminal console: a login screen and a
// live device dashboard.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/secureguard/pkg/api"
	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/logger"
	"github.com/carverauto/secureguard/pkg/models"
	"github.com/carverauto/secureguard/pkg/session"
)

const tickInterval = time.Second

// Options wires the console to the core components. The same Bridge must be
// the Navigator of Client and Dashboard and the Confirmer and Notifier of
// Dispatcher.
type Options struct {
	Client          *api.Client
	Dashboard       *dashboard.Dashboard
	Dispatcher      *dashboard.Dispatcher
	Bridge          *Bridge
	PreferencesPath string
	ProfilePath     string
	Logger          logger.Logger
}

// App is the root bubbletea model.
type App struct {
	ctx        context.Context
	client     *api.Client
	dash       *dashboard.Dashboard
	dispatcher *dashboard.Dispatcher
	bridge     *Bridge
	prefsPath  string
	profPath   string
	logger     logger.Logger
	now        func() time.Time
	clipboard  func(string) error

	styles  styles
	spinner spinner.Model
	width   int
	height  int

	view     models.View
	mounting bool
	unmount  func()
	changes  chan struct{}
	unsub    func()
	toasts   toasts
	confirm  *confirmMsg
	admin    *models.Admin
	quitting bool

	login loginForm
	board boardState
}

// New builds the console model. ctx bounds every request the console makes.
func New(ctx context.Context, opts *Options) (*App, error) {
	switch {
	case opts.Client == nil:
		return nil, errClientRequired
	case opts.Dashboard == nil:
		return nil, errDashboardRequired
	case opts.Dispatcher == nil:
		return nil, errDispatcherRequired
	case opts.Bridge == nil:
		return nil, errBridgeRequired
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	s := newStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaPink))

	a := &App{
		ctx:        ctx,
		client:     opts.Client,
		dash:       opts.Dashboard,
		dispatcher: opts.Dispatcher,
		bridge:     opts.Bridge,
		prefsPath:  opts.PreferencesPath,
		profPath:   opts.ProfilePath,
		logger:     log,
		now:        time.Now,
		clipboard:  writeClipboard,
		styles:     s,
		spinner:    sp,
		changes:    make(chan struct{}, 1),
	}

	a.login = newLoginForm(&a.styles)
	a.board = newBoardState(&a.styles)

	if a.prefsPath != "" {
		prefs, err := session.LoadPreferences(a.prefsPath)
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable login preferences")
		}

		a.login.apply(prefs)
	}

	if a.profPath != "" {
		admin, err := session.LoadProfile(a.profPath)
		if err != nil {
			log.Warn().Err(err).Msg("Ignoring unreadable admin profile")
		}

		a.admin = admin
	}

	a.unsub = a.dash.Subscribe(func(dashboard.Snapshot) {
		select {
		case a.changes <- struct{}{}:
		default:
		}
	})

	return a, nil
}

// Run starts the console on the alternate screen and blocks until it exits.
func Run(ctx context.Context, opts *Options) error {
	app, err := New(ctx, opts)
	if err != nil {
		return err
	}

	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	opts.Bridge.Attach(p)

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}

	return err
}

// Close stops polling and drops the dashboard subscription.
func (a *App) Close() {
	a.leave()

	if a.unsub != nil {
		a.unsub()
		a.unsub = nil
	}
}

// Init enters the dashboard; the session guard sends the operator to login
// when no token is stored.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		tick(),
		waitForChange(a.changes),
		a.enter(models.ViewDashboard),
	)
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}

		return changedMsg{}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height

		return a, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)

		return a, cmd
	case tickMsg:
		a.toasts = a.toasts.prune(time.Time(msg))

		return a, tick()
	case changedMsg:
		a.syncSnapshot()

		return a, waitForChange(a.changes)
	case navigateMsg:
		return a, a.enter(msg.view)
	case toastMsg:
		a.notify(msg.level, msg.text)

		return a, nil
	case confirmMsg:
		a.openConfirm(msg)

		return a, nil
	case mountedMsg:
		a.handleMounted(msg)

		return a, nil
	case healthMsg:
		a.login.setHealth(msg.err)

		return a, nil
	case loginResultMsg:
		return a, a.handleLoginResult(msg)
	case actionDoneMsg:
		if msg.err != nil {
			a.logger.Debug().Err(msg.err).Str("device_id", msg.deviceID).
				Str("action", string(msg.action)).Msg("Device action did not complete")
		}

		return a, nil
	case refreshDoneMsg:
		if errors.Is(msg.err, dashboard.ErrRefreshInProgress) {
			a.notify(dashboard.LevelInfo, "Refresh already in progress")
		}

		return a, nil
	case loggedOutMsg:
		if msg.err != nil {
			a.logger.Warn().Err(msg.err).Msg("Failed to clear session token")
		}

		cmd := a.enter(models.ViewLogin)
		a.notify(dashboard.LevelInfo, "Logged out successfully")

		return a, cmd
	case tea.KeyMsg:
		return a, a.handleKeyMsg(msg)
	}

	return a, nil
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyCtrlC {
		return a.quit()
	}

	if a.confirm != nil {
		a.handleConfirmKey(msg)

		return nil
	}

	if a.view == models.ViewLogin {
		return a.handleLoginKey(msg)
	}

	return a.handleBoardKey(msg)
}

func (a *App) quit() tea.Cmd {
	a.quitting = true
	a.answerConfirm(false)
	a.leave()

	return tea.Quit
}

// enter switches views. Leaving the dashboard always unmounts it.
func (a *App) enter(v models.View) tea.Cmd {
	if a.view == v {
		if v == models.ViewLogin || a.mounting || a.unmount != nil {
			return nil
		}
	}

	a.leave()
	a.view = v
	a.bridge.setCurrent(v)

	a.logger.Debug().Str("view", string(v)).Msg("Entering view")

	switch v {
	case models.ViewLogin:
		a.forgetAdmin()
		a.login.reset()

		return tea.Batch(a.login.focusCmd(), a.probeHealth())
	case models.ViewDashboard:
		a.mounting = true
		a.board.reset()

		return a.mountCmd()
	}

	return nil
}

func (a *App) leave() {
	a.answerConfirm(false)
	a.mounting = false

	if a.unmount != nil {
		a.unmount()
		a.unmount = nil
	}
}

func (a *App) mountCmd() tea.Cmd {
	ctx := a.ctx

	return func() tea.Msg {
		unmount, ok := a.dash.Mount(ctx)

		return mountedMsg{unmount: unmount, ok: ok}
	}
}

func (a *App) handleMounted(msg mountedMsg) {
	a.mounting = false

	if !msg.ok || msg.unmount == nil {
		return
	}

	if a.view != models.ViewDashboard || a.quitting {
		msg.unmount()

		return
	}

	a.unmount = msg.unmount
	a.syncSnapshot()
}

func (a *App) syncSnapshot() {
	a.board.sync(a.dash.Snapshot())
}

func (a *App) notify(level dashboard.Level, text string) {
	a.toasts = a.toasts.push(level, text, a.now())
}

func (a *App) openConfirm(msg confirmMsg) {
	if a.confirm != nil || a.view != models.ViewDashboard {
		msg.reply <- false

		return
	}

	a.confirm = &msg
}

func (a *App) answerConfirm(ok bool) {
	if a.confirm == nil {
		return
	}

	a.confirm.reply <- ok
	a.confirm = nil
}

func (a *App) handleConfirmKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "y", "Y", "enter":
		a.answerConfirm(true)
	case "n", "N", "esc", "q":
		a.answerConfirm(false)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return ""
	}

	var body string
	if a.view == models.ViewLogin {
		body = a.viewLogin()
	} else {
		body = a.viewBoard()
	}

	if t := a.toasts.render(&a.styles); t != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, body, "", t)
	}

	return a.styles.app.Render(body)
}

// forgetAdmin drops the saved profile once the session is gone.
func (a *App) forgetAdmin() {
	a.admin = nil

	if a.profPath == "" {
		return
	}

	if err := session.ClearProfile(a.profPath); err != nil {
		a.logger.Warn().Err(err).Msg("Failed to clear admin profile")
	}
}
