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
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/carverauto/secureguard/pkg/dashboard"
	"github.com/carverauto/secureguard/pkg/models"
)

const (
	cardHeight    = 3
	boardChrome   = 18
	minCardsShown = 3
)

var tabTitles = map[dashboard.Tab]string{
	dashboard.TabAll:          "All",
	dashboard.TabCompliant:    "Compliant",
	dashboard.TabNonCompliant: "Non-Compliant",
}

var busyLabels = map[models.Action]string{
	models.ActionLock:   "Locking...",
	models.ActionUnlock: "Unlocking...",
	models.ActionWipe:   "Wiping...",
}

func writeClipboard(s string) error {
	return clipboard.WriteAll(s)
}

type boardState struct {
	styles     *styles
	snap       dashboard.Snapshot
	search     textinput.Model
	searching  bool
	cursor     int
	selectedID string
	showHelp   bool
}

func newBoardState(s *styles) boardState {
	in := textinput.New()
	in.Placeholder = "search name, user, model or id"
	in.CharLimit = 64
	in.Width = searchWidth
	in.Prompt = "/ "
	in.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaCyan))
	in.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaForeground))
	in.PlaceholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(draculaComment))

	return boardState{styles: s, search: in}
}

// reset mirrors the filter reset a fresh mount performs.
func (b *boardState) reset() {
	b.search.SetValue("")
	b.search.Blur()
	b.searching = false
	b.cursor = 0
	b.selectedID = ""
	b.snap = dashboard.Snapshot{Loading: true}
}

// sync adopts a snapshot and keeps the cursor on the same device when it is
// still visible.
func (b *boardState) sync(snap dashboard.Snapshot) {
	b.snap = snap
	visible := snap.Visible()

	if b.selectedID != "" {
		for i := range visible {
			if visible[i].ID == b.selectedID {
				b.cursor = i

				return
			}
		}
	}

	b.clampCursor(len(visible))

	if len(visible) > 0 {
		b.selectedID = visible[b.cursor].ID
	} else {
		b.selectedID = ""
	}
}

func (b *boardState) clampCursor(n int) {
	if b.cursor >= n {
		b.cursor = n - 1
	}

	if b.cursor < 0 {
		b.cursor = 0
	}
}

func (b *boardState) move(delta int) {
	visible := b.snap.Visible()
	if len(visible) == 0 {
		return
	}

	b.cursor += delta
	b.clampCursor(len(visible))
	b.selectedID = visible[b.cursor].ID
}

func (b *boardState) selected() (models.Device, bool) {
	visible := b.snap.Visible()
	if b.cursor < 0 || b.cursor >= len(visible) {
		return models.Device{}, false
	}

	return visible[b.cursor], true
}

func (a *App) handleBoardKey(msg tea.KeyMsg) tea.Cmd {
	b := &a.board

	if b.searching {
		return a.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q":
		return a.quit()
	case "up", "k":
		b.move(-1)
	case "down", "j":
		b.move(1)
	case "home", "g":
		b.move(-len(b.snap.Devices))
	case "end", "G":
		b.move(len(b.snap.Devices))
	case "tab", "right":
		a.cycleTab(1)
	case "shift+tab", "left":
		a.cycleTab(-1)
	case "1", "2", "3":
		a.setTab(dashboard.Tabs[int(msg.String()[0]-'1')])
	case "/":
		b.searching = true

		return b.search.Focus()
	case "esc":
		if b.search.Value() != "" {
			b.search.SetValue("")
			a.dash.SetQuery("")
			a.syncSnapshot()
		}
	case "r":
		return a.refreshCmd()
	case "l":
		return a.actionCmd(models.ActionLock)
	case "u":
		return a.actionCmd(models.ActionUnlock)
	case "w":
		return a.actionCmd(models.ActionWipe)
	case "c":
		a.copySelected()
	case "L":
		return a.logoutCmd()
	case "?":
		b.showHelp = !b.showHelp
	}

	return nil
}

func (a *App) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	b := &a.board

	//nolint:exhaustive // everything else is typed into the search box
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		b.searching = false
		b.search.Blur()

		return nil
	}

	var cmd tea.Cmd
	b.search, cmd = b.search.Update(msg)

	if b.search.Value() != b.snap.Filter.Query {
		a.dash.SetQuery(b.search.Value())
		a.syncSnapshot()
	}

	return cmd
}

func (a *App) cycleTab(delta int) {
	tabs := dashboard.Tabs
	current := 0

	for i, t := range tabs {
		if t == a.board.snap.Filter.Tab {
			current = i
		}
	}

	a.setTab(tabs[(current+delta+len(tabs))%len(tabs)])
}

func (a *App) setTab(tab dashboard.Tab) {
	a.dash.SetTab(tab)
	a.syncSnapshot()
}

func (a *App) refreshCmd() tea.Cmd {
	ctx := a.ctx

	return func() tea.Msg {
		return refreshDoneMsg{err: a.dash.Refresh(ctx)}
	}
}

func (a *App) actionCmd(action models.Action) tea.Cmd {
	device, ok := a.board.selected()
	if !ok {
		a.notify(dashboard.LevelInfo, "Select a device first")

		return nil
	}

	ctx := a.ctx

	return func() tea.Msg {
		err := a.dispatcher.Run(ctx, action, device)

		return actionDoneMsg{action: action, deviceID: device.ID, err: err}
	}
}

func (a *App) copySelected() {
	device, ok := a.board.selected()
	if !ok {
		a.logger.Debug().Err(errNoSelection).Msg("Nothing to copy")

		return
	}

	if err := a.clipboard(device.ID); err != nil {
		a.logger.Warn().Err(err).Msg("Clipboard unavailable")
		a.notify(dashboard.LevelError, "Clipboard unavailable")

		return
	}

	a.notify(dashboard.LevelSuccess, fmt.Sprintf("Copied %s to clipboard", device.ID))
}

func (a *App) logoutCmd() tea.Cmd {
	ctx := a.ctx

	return func() tea.Msg {
		return loggedOutMsg{err: a.client.Logout(ctx)}
	}
}

func (a *App) viewBoard() string {
	b := &a.board
	s := b.styles

	sections := []string{a.viewHeader(), a.viewTiles(), a.viewTabs(), b.search.View()}

	if a.confirm != nil {
		sections = append(sections, s.modal.Render(
			s.warning.Render("Confirm action")+"\n\n"+a.confirm.prompt+"\n\n"+
				s.help.Render("y: confirm • n: cancel")))
	} else {
		sections = append(sections, a.viewDevices())
	}

	if b.showHelp {
		sections = append(sections, s.help.Render(
			"↑/↓ select • tab/1-3 filter • / search • r refresh • l lock • u unlock • w wipe\n"+
				"c copy id • L logout • q quit • ? hide help"))
	} else {
		sections = append(sections, s.help.Render("r refresh • l/u/w lock/unlock/wipe • / search • ? help • q quit"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a *App) viewHeader() string {
	s := &a.styles
	snap := a.board.snap

	who := "Administrator"
	if name := a.admin.DisplayName(); name != "" {
		who = name
	}

	left := s.title.Render("SecureGuard MDM") + s.muted.Render("  Welcome, ") + s.label.Render(who)

	status := s.muted.Render("Updated: " + dashboard.FormatLastUpdate(a.now(), snap.LastUpdated))
	if snap.Refreshing || (snap.Loading && len(snap.Devices) > 0) {
		status = a.spinner.View() + s.hint.Render(" Refreshing")
	}

	return left + "   " + status
}

func (a *App) viewTiles() string {
	s := &a.styles
	st := a.board.snap.Stats()

	tile := func(label, value string, color string) string {
		return s.tile.Render(
			s.muted.Render(label) + "\n" +
				s.tileValue.Foreground(lipgloss.Color(color)).Render(value))
	}

	rateColor := draculaGreen

	switch st.Rating() {
	case "Good":
		rateColor = draculaYellow
	case "Needs Attention":
		rateColor = draculaRed
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		tile("Total Devices", fmt.Sprint(st.Total), draculaCyan),
		tile("Compliant", fmt.Sprint(st.Compliant), draculaGreen),
		tile("Non-Compliant", fmt.Sprint(st.NonCompliant), draculaRed),
		tile("Compliance", fmt.Sprintf("%d%%\n%s", st.ComplianceRate, st.Rating()), rateColor),
		tile("Online", fmt.Sprintf("%d / %d", st.Online, st.Total), draculaPurple),
		tile("Locked", fmt.Sprint(st.Locked), draculaOrange),
	)
}

func (a *App) viewTabs() string {
	s := &a.styles
	snap := a.board.snap
	st := snap.Stats()

	counts := map[dashboard.Tab]int{
		dashboard.TabAll:          st.Total,
		dashboard.TabCompliant:    st.Compliant,
		dashboard.TabNonCompliant: st.NonCompliant,
	}

	parts := make([]string, 0, len(dashboard.Tabs))

	for _, t := range dashboard.Tabs {
		text := fmt.Sprintf("%s (%d)", tabTitles[t], counts[t])
		if t == snap.Filter.Tab {
			parts = append(parts, s.activeTab.Render(text))
		} else {
			parts = append(parts, s.tab.Render(text))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a *App) viewDevices() string {
	s := &a.styles
	b := &a.board
	snap := b.snap

	if snap.Loading && len(snap.Devices) == 0 {
		return a.spinner.View() + s.hint.Render(" Loading devices...")
	}

	visible := snap.Visible()
	if len(visible) == 0 {
		if snap.Filter.Query != "" {
			return s.muted.Render(fmt.Sprintf("No devices match %q", snap.Filter.Query))
		}

		return s.muted.Render("No devices found")
	}

	start, end := a.window(len(visible))
	cards := make([]string, 0, end-start+1)

	for i := start; i < end; i++ {
		cards = append(cards, a.viewCard(&visible[i], i == b.cursor))
	}

	if end-start < len(visible) {
		cards = append(cards, s.muted.Render(fmt.Sprintf("%d-%d of %d", start+1, end, len(visible))))
	}

	return strings.Join(cards, "\n")
}

// window picks the slice of cards that fits the terminal around the cursor.
func (a *App) window(n int) (start, end int) {
	if a.height == 0 {
		return 0, n
	}

	fits := max((a.height-boardChrome)/cardHeight, minCardsShown)
	if fits >= n {
		return 0, n
	}

	start = max(a.board.cursor-fits/2, 0)
	end = start + fits

	if end > n {
		end = n
		start = n - fits
	}

	return start, end
}

func (a *App) viewCard(d *models.Device, selected bool) string {
	s := &a.styles

	label := d.StatusLabel()
	badge := s.statusStyle(label).Render("[" + label + "]")

	conn := s.error.Render("offline")
	if d.IsConnected {
		conn = s.success.Render("online")
	}

	line1 := fmt.Sprintf("%s %s %s", badge, s.label.Render(d.Name),
		s.muted.Render(strings.TrimSpace(d.Model+" "+d.OSVersion)))
	line2 := fmt.Sprintf("%s (%s) • %s • checked %s • %s",
		d.UserName(), d.User.ID, conn,
		dashboard.FormatLastUpdate(a.now(), d.LastChecked), s.muted.Render(d.ID))

	if action, busy := a.board.snap.Busy[d.ID]; busy {
		line2 += "  " + a.spinner.View() + s.hint.Render(busyLabels[action])
	}

	if selected {
		return s.selected.Render(line1 + "\n" + line2)
	}

	return s.card.Render(line1 + "\n" + line2)
}
