package screens

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/auth"
	"github.com/kingrea/agrovoo/internal/router"
)

// LoginRedirectDelay is how long the success alert stays before the
// landing page is shown.
const LoginRedirectDelay = 1500 * time.Millisecond

const (
	loginEmail = iota
	loginPassword
	loginRemember
	loginSubmit
	loginRegister
	loginFocusCount
)

type loginResultMsg struct {
	email   string
	session auth.Session
	err     error
}

// Login is the sign in form mounted at "/login".
type Login struct {
	BaseScreen
	email    textinput.Model
	password textinput.Model
	remember bool
	focus    int
	loading  bool
	spinner  spinner.Model
}

// NewLogin creates the sign in form.
func NewLogin() *Login {
	return &Login{
		BaseScreen: NewBaseScreen("Login", router.RouteLogin),
		email:      newInput("seu@email.com", 254),
		password:   newPasswordInput("Sua senha"),
		spinner:    newSpinner(),
	}
}

// Init prefills the remembered email.
func (s *Login) Init(ctx *Context) tea.Cmd {
	s.SetContext(ctx)
	if ctx != nil && ctx.Prefs != nil {
		email, err := ctx.Prefs.RememberedEmail()
		if err != nil {
			ctx.logger().Warn("login: read remembered email", zap.Error(err))
		} else if email != "" {
			s.email.SetValue(email)
			s.remember = true
		}
	}
	s.setFocus(loginEmail)
	return nil
}

// Update handles form input and sign in results.
func (s *Login) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loginResultMsg:
		return s, s.finish(msg)
	case spinner.TickMsg:
		if !s.loading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd
	case tea.KeyMsg:
		if s.loading {
			return s, nil
		}
		switch msg.String() {
		case "esc":
			return s, Navigate(string(router.RouteIntro))
		case "tab", "down":
			s.setFocus(s.focus + 1)
			return s, nil
		case "shift+tab", "up":
			s.setFocus(s.focus - 1)
			return s, nil
		case "enter":
			switch s.focus {
			case loginEmail:
				s.setFocus(loginPassword)
				return s, nil
			case loginRemember:
				s.remember = !s.remember
				return s, nil
			case loginRegister:
				return s, Navigate(string(router.RouteRegister))
			default:
				return s, s.submit()
			}
		case " ":
			if s.focus == loginRemember {
				s.remember = !s.remember
				return s, nil
			}
		}
	}

	var cmd tea.Cmd
	switch s.focus {
	case loginEmail:
		s.email, cmd = s.email.Update(msg)
	case loginPassword:
		s.password, cmd = s.password.Update(msg)
	}
	return s, cmd
}

func (s *Login) setFocus(i int) {
	s.focus = wrapFocus(i, loginFocusCount)
	s.email.Blur()
	s.password.Blur()
	switch s.focus {
	case loginEmail:
		s.email.Focus()
	case loginPassword:
		s.password.Focus()
	}
}

func (s *Login) submit() tea.Cmd {
	form := auth.LoginForm{Email: s.email.Value(), Password: s.password.Value()}
	if err := form.Validate(); err != nil {
		s.SetAlert(Alert{Kind: AlertError, Text: auth.LoginMessage(err)})
		return nil
	}
	s.loading = true
	s.ClearAlert()
	return tea.Batch(s.spinner.Tick, s.signIn(form))
}

func (s *Login) signIn(form auth.LoginForm) tea.Cmd {
	ctx := s.Context()
	return func() tea.Msg {
		email := strings.TrimSpace(form.Email)
		svc, err := ctx.service()
		if err != nil {
			return loginResultMsg{email: email, err: err}
		}
		reqCtx, cancel := ctx.requestContext()
		defer cancel()
		session, err := auth.SignIn(reqCtx, svc, form)
		return loginResultMsg{email: email, session: session, err: err}
	}
}

func (s *Login) finish(msg loginResultMsg) tea.Cmd {
	s.loading = false
	ctx := s.Context()
	log := ctx.logger()
	if msg.err != nil {
		log.Info("login: sign in failed", zap.String("kind", string(auth.KindOf(msg.err))))
		s.SetAlert(Alert{Kind: AlertError, Text: auth.LoginMessage(msg.err)})
		return nil
	}
	log.Info("login: signed in", zap.String("uid", msg.session.UserID))
	s.persistRemembered(msg.email)
	s.password.SetValue("")
	s.SetAlert(Alert{Kind: AlertSuccess, Text: auth.MsgLoginSuccess})
	session := msg.session
	return tea.Batch(
		func() tea.Msg { return SessionMsg{Session: session} },
		ctx.after(LoginRedirectDelay, NavigateMsg{Path: string(router.RouteIntro)}),
	)
}

func (s *Login) persistRemembered(email string) {
	ctx := s.Context()
	if ctx == nil || ctx.Prefs == nil {
		return
	}
	var err error
	if s.remember {
		err = ctx.Prefs.RememberEmail(email)
	} else {
		err = ctx.Prefs.ForgetEmail()
	}
	if err != nil {
		ctx.logger().Warn("login: persist remembered email", zap.Error(err))
	}
}

// View renders the form.
func (s *Login) View() string {
	lines := []string{
		titleStyle.Render("🌾 Login"),
		subtitleStyle.Render("Entre na sua conta rural"),
		"",
		renderLabel("Email", s.focus == loginEmail),
		"  " + s.email.View(),
		renderLabel("Senha", s.focus == loginPassword),
		"  " + s.password.View(),
		"",
		renderCheckbox("Lembrar meu email", s.remember, s.focus == loginRemember),
		"",
	}
	if s.loading {
		lines = append(lines, s.spinner.View()+" Entrando...")
	} else {
		lines = append(lines, renderButton("Entrar", s.focus == loginSubmit))
	}
	lines = append(lines, "", renderLabel("Não tem conta? Criar conta", s.focus == loginRegister))
	if alert := s.Alert(); alert.Visible() {
		lines = append(lines, "", alert.render())
	}
	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	hint := hintStyle.Render("tab próximo campo · enter confirmar · esc voltar")
	return lipgloss.JoinVertical(lipgloss.Left, card, hint)
}
