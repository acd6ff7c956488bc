// internal/screens/screen.go
//
// Defines the Screen interface that every routed page implements.
// Screens never switch pages themselves: they emit NavigateMsg and the
// host resolves the path through the router.

package screens

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/auth"
	"github.com/kingrea/agrovoo/internal/config"
	"github.com/kingrea/agrovoo/internal/prefs"
	"github.com/kingrea/agrovoo/internal/router"
)

const defaultRequestTimeout = 10 * time.Second

// Context provides shared context for all screens
type Context struct {
	Config *config.Config
	Auth   auth.Service
	Prefs  *prefs.Store
	Logger *zap.Logger

	// Session is the signed in user, zero when signed out.
	Session auth.Session

	// Now defaults to time.Now.
	Now func() time.Time

	// After delivers msg once d has elapsed. Defaults to tea.Tick.
	After func(d time.Duration, msg tea.Msg) tea.Cmd
}

func (c *Context) now() time.Time {
	if c == nil || c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Context) after(d time.Duration, msg tea.Msg) tea.Cmd {
	if c != nil && c.After != nil {
		return c.After(d, msg)
	}
	return tea.Tick(d, func(time.Time) tea.Msg { return msg })
}

func (c *Context) logger() *zap.Logger {
	if c == nil || c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Context) requestTimeout() time.Duration {
	if c != nil && c.Config != nil && c.Config.App.Auth.RequestTimeout > 0 {
		return c.Config.App.Auth.RequestTimeout
	}
	return defaultRequestTimeout
}

func (c *Context) minPasswordLength() int {
	if c != nil && c.Config != nil {
		return c.Config.App.Auth.MinPasswordLength
	}
	return auth.DefaultMinPasswordLength
}

// Screen defines the interface that all routed pages must implement
type Screen interface {
	// Name returns the screen's display name
	Name() string

	// Route returns the path this screen is mounted at
	Route() router.Route

	// Init initializes the screen and returns a startup command
	Init(ctx *Context) tea.Cmd

	// Update handles messages and returns the updated screen plus any commands
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen's current state
	View() string
}

// NavigateMsg asks the host to route to Path.
type NavigateMsg struct {
	Path string
}

// SessionMsg reports a successful sign in.
type SessionMsg struct {
	Session auth.Session
}

// Navigate returns a command that routes to path immediately.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

// BaseScreen provides common functionality for all screens
type BaseScreen struct {
	ctx   *Context
	name  string
	route router.Route
	alert Alert
}

// NewBaseScreen creates a new BaseScreen with the given name and route
func NewBaseScreen(name string, route router.Route) BaseScreen {
	return BaseScreen{name: name, route: route}
}

// Name returns the screen's display name
func (s *BaseScreen) Name() string {
	return s.name
}

// Route returns the path this screen is mounted at
func (s *BaseScreen) Route() router.Route {
	return s.route
}

// Context returns the screen context
func (s *BaseScreen) Context() *Context {
	return s.ctx
}

// SetContext sets the screen context
func (s *BaseScreen) SetContext(ctx *Context) {
	s.ctx = ctx
}

// Alert returns the alert currently shown
func (s *BaseScreen) Alert() Alert {
	return s.alert
}

// SetAlert replaces the alert
func (s *BaseScreen) SetAlert(a Alert) {
	s.alert = a
}

// ClearAlert hides the alert
func (s *BaseScreen) ClearAlert() {
	s.alert = Alert{}
}
