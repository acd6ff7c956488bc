package screens

import (
	"context"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/agrovoo/internal/auth"
)

const inputWidth = 36

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = inputWidth
	ti.Cursor.SetMode(cursor.CursorStatic)
	return ti
}

func newPasswordInput(placeholder string) textinput.Model {
	ti := newInput(placeholder, 64)
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return ti
}

func newSpinner() spinner.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#7CB342"))
	return sp
}

// wrapFocus keeps a focus index inside [0, n).
func wrapFocus(i, n int) int {
	if n <= 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// requestContext bounds a backend call by the configured request timeout.
func (c *Context) requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.requestTimeout())
}

func (c *Context) service() (auth.Service, error) {
	if c == nil || c.Auth == nil {
		return nil, auth.Errorf("connect", auth.KindNetworkFailure, "no account backend configured")
	}
	return c.Auth, nil
}
