package screens

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/agrovoo/internal/router"
)

// menuItem implements list.Item for the landing menu.
type menuItem struct {
	title string
	desc  string
	path  string
	quit  bool
}

func (i menuItem) Title() string       { return i.title }
func (i menuItem) Description() string { return i.desc }
func (i menuItem) FilterValue() string { return i.title }

// Intro is the landing page mounted at "/".
type Intro struct {
	BaseScreen
	menu list.Model
}

// NewIntro creates the landing page.
func NewIntro() *Intro {
	items := []list.Item{
		menuItem{title: "Entrar", desc: "Acesse sua fazenda", path: string(router.RouteLogin)},
		menuItem{title: "Criar conta", desc: "Cadastre sua propriedade rural", path: string(router.RouteRegister)},
		menuItem{title: "Sair", desc: "Fechar o AgroVoo", quit: true},
	}
	menu := list.New(items, list.NewDefaultDelegate(), 40, 14)
	menu.Title = "🚁 AGROVOO"
	menu.SetShowStatusBar(false)
	menu.SetFilteringEnabled(false)
	menu.SetShowHelp(false)
	return &Intro{
		BaseScreen: NewBaseScreen("Início", router.RouteIntro),
		menu:       menu,
	}
}

// Init stores the context. The menu needs no startup command.
func (s *Intro) Init(ctx *Context) tea.Cmd {
	s.SetContext(ctx)
	return nil
}

// Update handles menu movement and selection.
func (s *Intro) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.menu.SetSize(max(20, msg.Width-6), max(8, msg.Height-10))
		return s, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s, s.choose()
		case "q":
			return s, tea.Quit
		}
	}
	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

func (s *Intro) choose() tea.Cmd {
	item, ok := s.menu.SelectedItem().(menuItem)
	if !ok {
		return nil
	}
	if item.quit {
		return tea.Quit
	}
	return Navigate(item.path)
}

// View renders the menu and the signed in user, if any.
func (s *Intro) View() string {
	parts := []string{s.menu.View()}
	if ctx := s.Context(); ctx != nil && ctx.Session.UserID != "" {
		parts = append(parts, subtitleStyle.Render("Conectado como "+ctx.Session.Email))
	}
	parts = append(parts, hintStyle.Render("↑/↓ navegar · enter selecionar · q sair"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
