package tui

import (
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kingrea/agrovoo/internal/auth"
	"github.com/kingrea/agrovoo/internal/clock"
	"github.com/kingrea/agrovoo/internal/config"
	"github.com/kingrea/agrovoo/internal/prefs"
	"github.com/kingrea/agrovoo/internal/router"
	"github.com/kingrea/agrovoo/internal/screens"
	"github.com/kingrea/agrovoo/internal/splash"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, opts ...AppOption) (*App, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(epoch)
	ctx := &screens.Context{
		Prefs: prefs.New(filepath.Join(t.TempDir(), "prefs.yaml")),
	}
	base := []AppOption{
		WithClock(fake),
		WithSequencerOptions(splash.WithRand(rand.New(rand.NewPCG(1, 2)))),
	}
	app, err := NewApp(ctx, append(base, opts...)...)
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	t.Cleanup(app.Close)
	return app, fake
}

// drainSplash feeds splash messages into the app until it leaves the
// intro. The fake clock must already be past the end of the run.
func drainSplash(t *testing.T, app *App) {
	t.Helper()
	for i := 0; app.state == stateSplash; i++ {
		if i > 2*frameBuffer {
			t.Fatalf("splash never finished")
		}
		msg := app.waitForSplash(app.run)()
		app.Update(msg)
	}
}

func TestSplashCompletesIntoStartRoute(t *testing.T) {
	app, fake := newTestApp(t)
	if cmd := app.Init(); cmd == nil {
		t.Fatalf("expected splash commands")
	}
	if app.state != stateSplash || app.run == nil {
		t.Fatalf("splash must be mounted on start")
	}
	run := app.run

	fake.Advance(splash.DefaultTimings().Total())
	if !run.Completed() {
		t.Fatalf("run should complete after %v", splash.DefaultTimings().Total())
	}
	drainSplash(t, app)

	if app.run != nil {
		t.Fatalf("splash must be unmounted after completion")
	}
	if _, ok := app.screen.(*screens.Intro); !ok {
		t.Fatalf("expected intro screen, got %T", app.screen)
	}
	if app.router.Current() != router.RouteIntro {
		t.Fatalf("expected / route, got %s", app.router.Current())
	}
}

func TestSplashCompletionUsesStartRoute(t *testing.T) {
	app, fake := newTestApp(t, WithStartRoute("/login"))
	app.Init()
	fake.Advance(splash.DefaultTimings().Total())
	drainSplash(t, app)
	if _, ok := app.screen.(*screens.Login); !ok {
		t.Fatalf("expected login screen, got %T", app.screen)
	}
}

func TestEscDuringSplashCancelsRun(t *testing.T) {
	app, fake := newTestApp(t, WithStartRoute("/register"))
	app.Init()
	run := app.run
	fake.Advance(3 * time.Second)

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !run.Canceled() {
		t.Fatalf("esc must cancel the run")
	}
	if fake.Pending() != 0 {
		t.Fatalf("canceled run left %d timers behind", fake.Pending())
	}
	if _, ok := app.screen.(*screens.Intro); !ok {
		t.Fatalf("skipping lands on the intro, got %T", app.screen)
	}

	// The stale wait command reports the cancellation and is ignored.
	app.Update(splashDoneMsg{runID: run.ID(), canceled: true})
	fake.Advance(time.Minute)
	if run.Completed() {
		t.Fatalf("canceled run must never complete")
	}
	if _, ok := app.screen.(*screens.Intro); !ok {
		t.Fatalf("stale messages must not change the screen, got %T", app.screen)
	}
}

func TestCtrlCDuringSplashQuits(t *testing.T) {
	app, fake := newTestApp(t)
	app.Init()
	run := app.run
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected quit")
	}
	if !run.Canceled() || fake.Pending() != 0 {
		t.Fatalf("quit must tear the run down")
	}
}

func TestNoSplashStartsAtRoute(t *testing.T) {
	app, fake := newTestApp(t, WithSplash(false), WithStartRoute("/login"))
	app.Init()
	if app.state != stateScreen || app.run != nil {
		t.Fatalf("splash must not run")
	}
	if fake.Pending() != 0 {
		t.Fatalf("no timers expected, got %d", fake.Pending())
	}
	if _, ok := app.screen.(*screens.Login); !ok {
		t.Fatalf("expected login screen, got %T", app.screen)
	}
}

func TestSplashDisabledByConfig(t *testing.T) {
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg.App.Splash.Enabled = false
	app, err := NewApp(&screens.Context{Config: cfg}, WithClock(clock.NewFake(epoch)))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	app.Init()
	if app.state != stateScreen {
		t.Fatalf("config should disable the splash")
	}
}

func TestNewAppRejectsUnknownStartRoute(t *testing.T) {
	if _, err := NewApp(nil, WithStartRoute("/dashboard")); err == nil {
		t.Fatalf("expected unknown route error")
	}
}

func TestNavigateMsgSwitchesScreens(t *testing.T) {
	app, _ := newTestApp(t, WithSplash(false))
	app.Init()

	app.Update(screens.NavigateMsg{Path: "/register"})
	if _, ok := app.screen.(*screens.Register); !ok {
		t.Fatalf("expected register screen, got %T", app.screen)
	}
	if !strings.Contains(app.View(), "Registro Rural") {
		t.Fatalf("header should carry the route title")
	}

	app.Update(screens.NavigateMsg{Path: "/dashboard"})
	if _, ok := app.screen.(*screens.Register); !ok {
		t.Fatalf("unknown path must keep the current screen")
	}
	if !strings.Contains(app.statusMsg, "/dashboard") {
		t.Fatalf("expected status message for unknown path, got %q", app.statusMsg)
	}
}

func TestSessionMsgIsShared(t *testing.T) {
	app, _ := newTestApp(t, WithSplash(false))
	app.Init()
	session := auth.Session{UserID: "u-7", Email: "ze@chacara.com"}
	app.Update(screens.SessionMsg{Session: session})
	if app.ctx.Session != session {
		t.Fatalf("session not stored: %+v", app.ctx.Session)
	}
	if !strings.Contains(app.View(), "ze@chacara.com") {
		t.Fatalf("intro should show the signed in user")
	}
}

func TestSplashViewFollowsStages(t *testing.T) {
	app, fake := newTestApp(t)
	app.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	app.Init()
	tm := splash.DefaultTimings()

	if strings.Contains(app.View(), "▀") {
		t.Fatalf("ground must stay hidden while idle")
	}

	fake.Advance(tm.GroundDelay)
	app.frame = app.run.Snapshot()
	if !strings.Contains(app.View(), "▀") {
		t.Fatalf("ground should be revealed")
	}

	fake.Advance(tm.PlantsDelay)
	app.frame = app.run.Snapshot()
	app.plantsAt = app.frame.StageEntered
	fake.Advance(tm.DroneDelay)
	if view := app.View(); !strings.ContainsAny(view, "♣✿¥") {
		t.Fatalf("plants should be visible:\n%s", view)
	}

	for app.run.Stage() < splash.StageScanning {
		fake.Advance(tm.DroneTick)
	}
	for app.run.Progress() < 50 {
		fake.Advance(tm.ProgressTick)
	}
	app.frame = app.run.Snapshot()
	view := app.View()
	if !strings.Contains(view, splash.MessageDetecting) {
		t.Fatalf("expected scan message in view:\n%s", view)
	}
	if !strings.Contains(view, "Qualidade: 98%") {
		t.Fatalf("expected scan metrics in view:\n%s", view)
	}
	if strings.Contains(view, "SCAN COMPLETO ·") {
		t.Fatalf("completion banner shown too early")
	}

	for app.run.Progress() < 100 {
		fake.Advance(tm.ProgressTick)
	}
	app.frame = app.run.Snapshot()
	if !strings.Contains(app.View(), "SCAN COMPLETO ·") {
		t.Fatalf("expected completion banner")
	}
}
