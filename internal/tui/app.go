// internal/tui/app.go
//
// This is the main TUI (Terminal User Interface) for AgroVoo.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// The intro animation runs on its own timers inside splash.Sequencer. The
// app mounts one run, turns its frames into messages and unmounts it when
// the run completes or the user skips it.

package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/clock"
	"github.com/kingrea/agrovoo/internal/router"
	"github.com/kingrea/agrovoo/internal/screens"
	"github.com/kingrea/agrovoo/internal/splash"
)

// appState represents what the app is showing
type appState int

const (
	stateSplash appState = iota // Intro animation
	stateScreen                 // A routed screen
)

const (
	animationInterval = 50 * time.Millisecond
	frameBuffer       = 256
)

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithClock drives the intro animation from c instead of the wall clock.
func WithClock(c clock.Clock) AppOption {
	return func(a *App) {
		if c != nil {
			a.clock = c
		}
	}
}

// WithSplash overrides whether the intro animation runs on start.
func WithSplash(enabled bool) AppOption {
	return func(a *App) {
		a.splashEnabled = enabled
	}
}

// WithStartRoute selects the screen shown first, after the intro.
func WithStartRoute(path string) AppOption {
	return func(a *App) {
		if path != "" {
			a.startRoute = path
		}
	}
}

// WithSequencerOptions appends options to the intro sequencer. They are
// applied after the ones derived from the config file.
func WithSequencerOptions(opts ...splash.Option) AppOption {
	return func(a *App) {
		a.seqOpts = append(a.seqOpts, opts...)
	}
}

type splashFrameMsg struct {
	frame splash.Frame
}

type splashDoneMsg struct {
	runID    uint64
	canceled bool
}

type animationTickMsg struct {
	runID uint64
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	state  appState
	ctx    *screens.Context
	router *router.Router
	clock  clock.Clock
	logger *zap.Logger

	splashEnabled bool
	startRoute    string
	seqOpts       []splash.Option

	// Intro animation
	sequencer  *splash.Sequencer
	run        *splash.Run
	frames     chan splash.Frame
	splashDone chan struct{}
	frame      splash.Frame
	plants     []splash.PlantDescriptor
	plantsAt   time.Time
	scanBar    progress.Model

	// Routed screens
	screen    screens.Screen
	statusMsg string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance
func NewApp(ctx *screens.Context, opts ...AppOption) (*App, error) {
	if ctx == nil {
		ctx = &screens.Context{}
	}
	logger := ctx.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	app := &App{
		state:         stateScreen,
		ctx:           ctx,
		router:        router.New(),
		clock:         clock.Real(),
		logger:        logger,
		splashEnabled: ctx.Config == nil || ctx.Config.SplashEnabled(),
		startRoute:    string(router.RouteIntro),
		frames:        make(chan splash.Frame, frameBuffer),
		scanBar: progress.New(
			progress.WithGradient("#9CCC65", "#33691E"),
			progress.WithoutPercentage(),
			progress.WithWidth(40),
		),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	if _, err := router.Parse(app.startRoute); err != nil {
		return nil, err
	}

	seqOpts := []splash.Option{
		splash.WithClock(app.clock),
		splash.WithLogger(logger),
		splash.WithObserver(app.deliver),
	}
	if cfg := ctx.Config; cfg != nil {
		seqOpts = append(seqOpts,
			splash.WithTimings(cfg.App.Splash.Timings),
			splash.WithPlantCount(cfg.App.Splash.Plants),
		)
	}
	seq, err := splash.New(append(seqOpts, app.seqOpts...)...)
	if err != nil {
		return nil, fmt.Errorf("tui: splash: %w", err)
	}
	app.sequencer = seq
	return app, nil
}

// deliver runs on the sequencer's timer goroutines with the run locked, so
// it never blocks. Dropped frames are superseded by the next one.
func (a *App) deliver(f splash.Frame) {
	select {
	case a.frames <- f:
	default:
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	if a.splashEnabled {
		return a.mountSplash()
	}
	return a.navigate(a.startRoute)
}

// Close tears down any intro run still in progress.
func (a *App) Close() {
	a.unmountSplash()
}

func (a *App) mountSplash() tea.Cmd {
	done := make(chan struct{}, 1)
	run := a.sequencer.Start(func() {
		done <- struct{}{}
	})
	a.state = stateSplash
	a.run = run
	a.splashDone = done
	a.frame = run.Snapshot()
	a.plants = run.Plants()
	a.plantsAt = time.Time{}
	a.logger.Info("tui: splash mounted",
		zap.Uint64("run", run.ID()),
		zap.Duration("duration", a.sequencer.Timings().Total()))
	return tea.Batch(a.waitForSplash(run), a.animationTick(run.ID()))
}

// unmountSplash cancels the run if it is still going. Safe to call when
// nothing is mounted.
func (a *App) unmountSplash() {
	if a.run == nil {
		return
	}
	a.sequencer.Cancel(a.run)
	a.run = nil
	a.splashDone = nil
}

// waitForSplash blocks until the run produces a frame or ends.
func (a *App) waitForSplash(run *splash.Run) tea.Cmd {
	frames, done := a.frames, a.splashDone
	return func() tea.Msg {
		select {
		case f := <-frames:
			return splashFrameMsg{frame: f}
		case <-done:
			return splashDoneMsg{runID: run.ID()}
		case <-run.Done():
			// Done closes right after the completion callback.
			select {
			case <-done:
				return splashDoneMsg{runID: run.ID()}
			default:
			}
			return splashDoneMsg{runID: run.ID(), canceled: true}
		}
	}
}

func (a *App) animationTick(runID uint64) tea.Cmd {
	return tea.Tick(animationInterval, func(time.Time) tea.Msg {
		return animationTickMsg{runID: runID}
	})
}

func (a *App) mounted(runID uint64) bool {
	return a.state == stateSplash && a.run != nil && a.run.ID() == runID
}

// navigate resolves path and mounts the matching screen.
func (a *App) navigate(path string) tea.Cmd {
	route, err := a.router.Navigate(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Página não encontrada: %s", path)
		a.logger.Warn("tui: navigate", zap.String("path", path), zap.Error(err))
		return nil
	}
	a.state = stateScreen
	a.statusMsg = ""
	a.screen = newScreen(route)
	a.logger.Debug("tui: screen mounted", zap.String("route", string(route)))
	cmd := a.screen.Init(a.ctx)
	if a.width > 0 {
		a.screen, _ = a.screen.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height})
	}
	return cmd
}

func newScreen(route router.Route) screens.Screen {
	switch route {
	case router.RouteLogin:
		return screens.NewLogin()
	case router.RouteRegister:
		return screens.NewRegister()
	default:
		return screens.NewIntro()
	}
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.scanBar.Width = min(40, max(10, msg.Width-24))
		if a.state == stateScreen && a.screen != nil {
			var cmd tea.Cmd
			a.screen, cmd = a.screen.Update(msg)
			return a, cmd
		}
		return a, nil

	case splashFrameMsg:
		if !a.mounted(msg.frame.RunID) {
			return a, nil
		}
		a.frame = msg.frame
		if msg.frame.Stage == splash.StagePlantsGrowing && a.plantsAt.IsZero() {
			a.plantsAt = msg.frame.StageEntered
		}
		return a, a.waitForSplash(a.run)

	case animationTickMsg:
		if !a.mounted(msg.runID) {
			return a, nil
		}
		return a, a.animationTick(msg.runID)

	case splashDoneMsg:
		if !a.mounted(msg.runID) {
			return a, nil
		}
		a.logger.Info("tui: splash finished",
			zap.Uint64("run", msg.runID),
			zap.Bool("canceled", msg.canceled))
		a.run = nil
		a.splashDone = nil
		return a, a.navigate(a.startRoute)

	case screens.NavigateMsg:
		return a, a.navigate(msg.Path)

	case screens.SessionMsg:
		a.ctx.Session = msg.Session
		a.logger.Info("tui: session started", zap.String("uid", msg.Session.UserID))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			a.unmountSplash()
			return a, tea.Quit
		}
		if a.state == stateSplash {
			switch msg.String() {
			case "esc", "enter":
				return a, a.skipSplash()
			case "q":
				a.unmountSplash()
				return a, tea.Quit
			}
			return a, nil
		}
	}

	if a.state == stateScreen && a.screen != nil {
		var cmd tea.Cmd
		a.screen, cmd = a.screen.Update(msg)
		return a, cmd
	}
	return a, nil
}

// skipSplash tears the running intro down and shows the landing page.
func (a *App) skipSplash() tea.Cmd {
	if a.run != nil {
		a.logger.Info("tui: splash skipped",
			zap.Uint64("run", a.run.ID()),
			zap.Stringer("stage", a.run.Stage()))
	}
	a.unmountSplash()
	return a.navigate(string(router.RouteIntro))
}

// View renders the current state to a string.
func (a *App) View() string {
	if a.state == stateSplash {
		return a.renderSplash()
	}
	width := a.width
	if width <= 0 {
		width = 80
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7CB342")).
		Render("🚁 AGROVOO · " + a.router.Current().Title())

	content := ""
	if a.screen != nil {
		content = a.screen.View()
	}
	body := lipgloss.NewStyle().Width(max(20, width-2)).Render(content)

	footerText := "ctrl+c sair"
	if a.statusMsg != "" {
		footerText = a.statusMsg + " · " + footerText
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		Render(footerText)

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", footer)
}
