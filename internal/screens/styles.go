package screens

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7CB342"))
	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C5E1A5"))
	focusedLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFD54F"))
	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#558B2F"))
	focusedButtonStyle = buttonStyle.
				Bold(true).
				Background(lipgloss.Color("#33691E")).
				Underline(true)
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6D4C41")).
			Padding(1, 3)
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1B5E20")).
			Background(lipgloss.Color("#C8E6C9")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B71C1C")).
			Background(lipgloss.Color("#FFCDD2")).
			Padding(0, 1)
)

// AlertKind selects how an alert is drawn.
type AlertKind int

const (
	AlertNone AlertKind = iota
	AlertSuccess
	AlertError
)

// Alert is the single message box shown under a form.
type Alert struct {
	Kind AlertKind
	Text string
}

// Visible reports whether there is anything to draw.
func (a Alert) Visible() bool {
	return a.Kind != AlertNone && strings.TrimSpace(a.Text) != ""
}

func (a Alert) render() string {
	if !a.Visible() {
		return ""
	}
	if a.Kind == AlertSuccess {
		return successStyle.Render("✓ " + a.Text)
	}
	return errorStyle.Render("✗ " + a.Text)
}

func renderLabel(text string, focused bool) string {
	if focused {
		return focusedLabelStyle.Render("› " + text)
	}
	return labelStyle.Render("  " + text)
}

func renderButton(text string, focused bool) string {
	if focused {
		return focusedButtonStyle.Render(text)
	}
	return buttonStyle.Render(text)
}

func renderCheckbox(text string, checked, focused bool) string {
	box := "[ ]"
	if checked {
		box = "[x]"
	}
	return renderLabel(box+" "+text, focused)
}
