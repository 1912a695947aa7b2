// Package tui provides the interactive Bubble Tea dashboard for leaselad.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/leaselad/leaselad/internal/cli"
	"github.com/leaselad/leaselad/internal/config"
	"github.com/leaselad/leaselad/internal/model"
	"github.com/leaselad/leaselad/internal/pipeline"
	"github.com/leaselad/leaselad/internal/tui/components"
	"github.com/leaselad/leaselad/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// ReadingLister returns cached odometer readings, newest first.
type ReadingLister interface {
	Readings(vin string, limit int) ([]model.Reading, error)
}

// Options wires the dashboard to its data sources.
type Options struct {
	Config config.Config
	Syncer *pipeline.Syncer
	Lease  *pipeline.LeaseRef

	// History feeds the History tab; nil hides cycle history.
	History ReadingLister

	// Connect builds a provider for edited credentials and returns the VIN
	// to select. Nil disables credential edits.
	Connect func(cfg config.Config) (pipeline.Provider, string, error)

	// Save persists settings. Nil keeps edits in memory only.
	Save func(cfg config.Config) error

	NeedSetup bool
	Demo      bool
}

// DataLoadedMsg is sent when a refresh finishes.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Cycles   []model.CycleStats
	Err      error
	LoadTime time.Duration
}

// App is the root Bubble Tea model.
type App struct {
	opts Options
	cfg  config.Config

	// Data
	result   *pipeline.LoadResult
	cycles   []model.CycleStats
	loadErr  error
	loaded   bool
	loadTime time.Duration

	// Refresh state
	autoRefresh     bool
	refreshInterval time.Duration
	lastRefresh     time.Time
	refreshing      bool

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 60
	compactWidth     = 100
	maxContentWidth  = 140
	minContentHeight = 5

	historyLimit   = 5000
	refreshTimeout = 30 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	a := App{
		opts:            opts,
		cfg:             opts.Config,
		autoRefresh:     opts.Config.TUI.AutoRefresh,
		refreshInterval: opts.Config.RefreshInterval(),
		needSetup:       opts.NeedSetup,
		spinner:         sp,
	}
	if a.needSetup {
		a.setupVals = NewSetupValues(opts.Config)
		a.setupForm = NewSetupForm(a.setupVals)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		a.spinner.Tick,
		tickCmd(),
	}
	if a.needSetup {
		cmds = append(cmds, a.setupForm.Init())
	} else {
		cmds = append(cmds, loadDataCmd(a.opts.Syncer, a.opts.History))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.needSetup {
			return a, nil
		}
		if msg.Button == tea.MouseButtonLeft && msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if !a.loaded {
			if key == "q" {
				return a, tea.Quit
			}
			return a, nil
		}

		if a.activeTab == components.TabSettings && a.settings.editing {
			return a.updateSettingsInput(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			a.showHelp = false
			return a, nil
		}

		if a.activeTab == components.TabSettings {
			switch key {
			case "j", "down":
				if a.settings.cursor < settingsFieldCount-1 {
					a.settings.cursor++
				}
				return a, nil
			case "k", "up":
				if a.settings.cursor > 0 {
					a.settings.cursor--
				}
				return a, nil
			case "enter":
				return a.settingsStartEdit()
			}
		}

		switch key {
		case "q":
			return a, tea.Quit
		case "r":
			return a.startRefresh()
		case "R":
			a.autoRefresh = !a.autoRefresh
			a.cfg.TUI.AutoRefresh = a.autoRefresh
			a.settings.saveErr = a.persist()
			return a, nil
		case "left", "shift+tab":
			a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		case "right", "tab":
			a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		default:
			if r := []rune(key); len(r) == 1 {
				if idx := components.TabIdxByKey(r[0]); idx >= 0 {
					a.activeTab = idx
				}
			}
		}
		return a, nil

	case DataLoadedMsg:
		a.refreshing = false
		a.loaded = true
		a.lastRefresh = time.Now()
		a.loadTime = msg.LoadTime
		a.loadErr = msg.Err
		if msg.Err == nil {
			a.result = msg.Result
			a.cycles = msg.Cycles
		}
		return a, nil

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.loaded && a.autoRefresh && !a.refreshing && !a.needSetup &&
			time.Since(a.lastRefresh) >= a.refreshInterval {
			a.refreshing = true
			cmds = append(cmds, loadDataCmd(a.opts.Syncer, a.opts.History), a.spinner.Tick)
		}
		return a, tea.Batch(cmds...)
	}

	// Forward cursor blinks and the like to the setup form.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) startRefresh() (tea.Model, tea.Cmd) {
	if a.refreshing {
		return a, nil
	}
	a.refreshing = true
	return a, tea.Batch(loadDataCmd(a.opts.Syncer, a.opts.History), a.spinner.Tick)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		if err := a.applySetup(); err != nil {
			a.loaded = true
			a.loadErr = err
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(loadDataCmd(a.opts.Syncer, a.opts.History), a.spinner.Tick)

	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		a.refreshing = true
		return a, loadDataCmd(a.opts.Syncer, a.opts.History)
	}

	return a, cmd
}

// applySetup stores the wizard's answers and points the syncer at them.
func (a *App) applySetup() error {
	cfg := a.cfg
	terms, err := a.setupVals.Apply(&cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)
	a.opts.Lease.Set(terms)
	if err := a.reconnect(); err != nil {
		return err
	}
	return a.persist()
}

// reconnect rebuilds the provider from the current credentials.
func (a *App) reconnect() error {
	if a.opts.Connect == nil {
		return nil
	}
	p, vin, err := a.opts.Connect(a.cfg)
	if err != nil {
		return err
	}
	a.opts.Syncer.Reconfigure(p, vin)
	return nil
}

// persist saves the config when a saver is configured.
func (a App) persist() error {
	if a.opts.Save == nil {
		return nil
	}
	return a.opts.Save(a.cfg)
}

// recomputeLocal re-derives stats and cycles after a lease edit without
// hitting the provider.
func (a *App) recomputeLocal(terms model.LeaseConfig) {
	if a.result == nil {
		return
	}
	res := *a.result
	res.Lease = terms
	res.Stats = pipeline.ComputeLeaseStats(terms, res.Vehicle.Odometer, res.Ref)
	a.result = &res
	a.cycles = cyclesFor(a.opts.History, &res)
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}

	if !a.loaded {
		return a.viewLoading()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  leaselad needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)

	logoStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	source := "Tessie"
	if a.opts.Demo {
		source = "demo data"
	}

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ leaselad"))
	b.WriteString(subtitleStyle.Render(" · Lease Mileage"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Fetching vehicle from " + source + "..."))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Info).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"d v h x", "Jump to tab"},
		{"← → tab", "Previous / Next tab"},
		{"j k", "Move in settings"},
		{"Enter", "Edit setting / Confirm"},
		{"Esc", "Cancel edit"},
		{"r", "Refresh now"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusInfo())

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.result == nil && a.activeTab != components.TabSettings:
		content = a.renderLoadError(cw)
	case a.activeTab == components.TabDashboard:
		content = a.renderDashboardTab(cw)
	case a.activeTab == components.TabVehicle:
		content = a.renderVehicleTab(cw)
	case a.activeTab == components.TabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case a.activeTab == components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() components.StatusInfo {
	s := components.StatusInfo{
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
	}
	if !a.lastRefresh.IsZero() {
		s.DataAge = cli.FormatAge(a.dataTime(), time.Now())
	}
	if a.result != nil {
		s.Stale = a.result.Stale
		if a.result.Vehicle != nil {
			s.Message = a.result.Vehicle.Notice
		}
	}
	if err := a.currentError(); err != nil {
		s.Message = cli.FriendlyError(err)
	}
	return s
}

// dataTime is when the displayed odometer was observed.
func (a App) dataTime() time.Time {
	if a.result != nil && a.result.Vehicle != nil && !a.result.Vehicle.FetchedAt.IsZero() {
		return a.result.Vehicle.FetchedAt
	}
	return a.lastRefresh
}

// currentError is the latest refresh error, or the fetch error behind a stale result.
func (a App) currentError() error {
	if a.loadErr != nil {
		return a.loadErr
	}
	if a.result != nil && a.result.Stale {
		return a.result.FetchErr
	}
	return nil
}

func (a App) renderLoadError(cw int) string {
	t := theme.Active
	errStyle := lipgloss.NewStyle().Foreground(t.Bad).Background(t.Surface).Bold(true)
	hintStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	msg := "No data yet."
	if a.loadErr != nil {
		msg = cli.FriendlyError(a.loadErr)
	}

	body := errStyle.Render(msg) + "\n\n" +
		hintStyle.Render("[r] retry   [x] settings   [q] quit")
	return components.ContentCard("Unable to load vehicle", body, cw)
}

// ─── Commands ───────────────────────────────────────────────────

type tickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadDataCmd refreshes through the syncer and derives cycle history.
func loadDataCmd(s *pipeline.Syncer, history ReadingLister) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		res, _, err := s.Refresh(ctx)
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		return DataLoadedMsg{
			Result:   res,
			Cycles:   cyclesFor(history, res),
			LoadTime: time.Since(start),
		}
	}
}

// cyclesFor aggregates cached readings for the result's vehicle.
func cyclesFor(history ReadingLister, res *pipeline.LoadResult) []model.CycleStats {
	if history == nil || res == nil || res.Vehicle == nil {
		return nil
	}
	readings, err := history.Readings(res.Vehicle.VIN, historyLimit)
	if err != nil {
		return nil
	}
	return pipeline.AggregateCycles(res.Lease, readings, res.Ref)
}

// ─── Layout helpers ─────────────────────────────────────────────

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with background color
// so gaps between cards are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// ─── Mouse Support ──────────────────────────────────────────────

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes use the same widths as RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}
