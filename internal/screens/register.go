package screens

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/agrovoo/internal/auth"
	"github.com/kingrea/agrovoo/internal/router"
)

// RegisterRedirectDelay is how long the success alert stays before the
// login page is shown.
const RegisterRedirectDelay = 2 * time.Second

const (
	regName = iota
	regAge
	regType
	regDocument
	regHectares
	regEmail
	regPassword
	regSubmit
	regLogin
	regFocusCount
)

type registerResultMsg struct {
	session auth.Session
	err     error
}

// Register is the account form mounted at "/register".
type Register struct {
	BaseScreen
	name     textinput.Model
	age      textinput.Model
	document textinput.Model
	hectares textinput.Model
	email    textinput.Model
	password textinput.Model
	propType auth.PropertyType
	focus    int
	loading  bool
	spinner  spinner.Model
}

// NewRegister creates the account form.
func NewRegister() *Register {
	s := &Register{
		BaseScreen: NewBaseScreen("Registro Rural", router.RouteRegister),
		spinner:    newSpinner(),
	}
	s.reset()
	return s
}

// Init stores the context and focuses the first field.
func (s *Register) Init(ctx *Context) tea.Cmd {
	s.SetContext(ctx)
	s.setFocus(regName)
	return nil
}

func (s *Register) reset() {
	s.name = newInput("Seu nome completo", 120)
	s.age = newInput("Sua idade", 3)
	s.document = newInput("", 0)
	s.hectares = newInput("Área em hectares", 12)
	s.email = newInput("seu@email.com", 254)
	s.password = newPasswordInput("Mínimo 6 caracteres")
	s.propType = ""
	s.applyType()
	s.setFocus(regName)
}

// Update handles form input and registration results.
func (s *Register) Update(msg tea.Msg) (Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case registerResultMsg:
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
			s.moveFocus(1)
			return s, nil
		case "shift+tab", "up":
			s.moveFocus(-1)
			return s, nil
		case "left", "right", " ":
			if s.focus == regType {
				s.cycleType(msg.String() == "left")
				return s, nil
			}
		case "enter":
			switch s.focus {
			case regType:
				s.cycleType(false)
				return s, nil
			case regSubmit, regPassword:
				return s, s.submit()
			case regLogin:
				return s, Navigate(string(router.RouteLogin))
			default:
				s.moveFocus(1)
				return s, nil
			}
		}
	}

	if in := s.focusedInput(); in != nil {
		var cmd tea.Cmd
		*in, cmd = in.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *Register) focusedInput() *textinput.Model {
	switch s.focus {
	case regName:
		return &s.name
	case regAge:
		return &s.age
	case regDocument:
		return &s.document
	case regHectares:
		return &s.hectares
	case regEmail:
		return &s.email
	case regPassword:
		return &s.password
	}
	return nil
}

// moveFocus steps through the form, skipping the document field until a
// property type is chosen.
func (s *Register) moveFocus(step int) {
	next := wrapFocus(s.focus+step, regFocusCount)
	if next == regDocument && s.propType == "" {
		next = wrapFocus(next+step, regFocusCount)
	}
	s.setFocus(next)
}

func (s *Register) setFocus(i int) {
	s.focus = wrapFocus(i, regFocusCount)
	for _, in := range []*textinput.Model{&s.name, &s.age, &s.document, &s.hectares, &s.email, &s.password} {
		in.Blur()
	}
	if in := s.focusedInput(); in != nil {
		in.Focus()
	}
}

func (s *Register) cycleType(backwards bool) {
	switch {
	case s.propType == "" && backwards:
		s.propType = auth.PropertyCompany
	case s.propType == "":
		s.propType = auth.PropertyFamily
	case s.propType == auth.PropertyFamily:
		s.propType = auth.PropertyCompany
	default:
		s.propType = auth.PropertyFamily
	}
	s.applyType()
}

// applyType adapts the document field to the selected property type.
func (s *Register) applyType() {
	s.document.CharLimit = s.propType.DocumentLimit()
	s.document.Placeholder = s.propType.DocumentPlaceholder()
	if v := []rune(s.document.Value()); len(v) > s.document.CharLimit {
		s.document.SetValue(string(v[:s.document.CharLimit]))
	}
}

func (s *Register) form() auth.RegistrationForm {
	return auth.RegistrationForm{
		Name:     s.name.Value(),
		Age:      s.age.Value(),
		Type:     s.propType,
		Document: s.document.Value(),
		Hectares: s.hectares.Value(),
		Email:    s.email.Value(),
		Password: s.password.Value(),
	}
}

func (s *Register) submit() tea.Cmd {
	ctx := s.Context()
	form := s.form()
	minPassword := ctx.minPasswordLength()
	if err := form.Validate(minPassword); err != nil {
		s.SetAlert(Alert{Kind: AlertError, Text: auth.RegisterMessage(err)})
		return nil
	}
	s.loading = true
	s.ClearAlert()
	now := ctx.now()
	return tea.Batch(s.spinner.Tick, func() tea.Msg {
		svc, err := ctx.service()
		if err != nil {
			return registerResultMsg{err: err}
		}
		reqCtx, cancel := ctx.requestContext()
		defer cancel()
		session, err := auth.Register(reqCtx, svc, form, minPassword, now)
		return registerResultMsg{session: session, err: err}
	})
}

func (s *Register) finish(msg registerResultMsg) tea.Cmd {
	s.loading = false
	ctx := s.Context()
	log := ctx.logger()
	if msg.err != nil {
		if msg.session.UserID != "" {
			log.Warn("register: account created without profile",
				zap.String("uid", msg.session.UserID),
				zap.Error(msg.err))
		} else {
			log.Info("register: create account failed", zap.String("kind", string(auth.KindOf(msg.err))))
		}
		s.SetAlert(Alert{Kind: AlertError, Text: auth.RegisterMessage(msg.err)})
		return nil
	}
	log.Info("register: account created", zap.String("uid", msg.session.UserID))
	s.reset()
	s.SetAlert(Alert{Kind: AlertSuccess, Text: auth.MsgRegisterSuccess})
	return ctx.after(RegisterRedirectDelay, NavigateMsg{Path: string(router.RouteLogin)})
}

// View renders the form.
func (s *Register) View() string {
	typeLabel := "◀ Selecione o tipo ▶"
	switch s.propType {
	case auth.PropertyFamily:
		typeLabel = "◀ Agricultor Familiar (CPF) ▶"
	case auth.PropertyCompany:
		typeLabel = "◀ Produtor Rural (PJ) ▶"
	}
	lines := []string{
		titleStyle.Render("🚜 Registro Rural"),
		subtitleStyle.Render("Cadastre sua propriedade"),
		"",
		renderLabel("Nome", s.focus == regName),
		"  " + s.name.View(),
		renderLabel("Idade", s.focus == regAge),
		"  " + s.age.View(),
		renderLabel("Tipo de Propriedade", s.focus == regType),
		"  " + typeLabel,
	}
	if s.propType != "" {
		lines = append(lines,
			renderLabel(s.propType.DocumentLabel(), s.focus == regDocument),
			"  "+s.document.View(),
		)
	}
	lines = append(lines,
		renderLabel("Hectares", s.focus == regHectares),
		"  "+s.hectares.View(),
		renderLabel("Email", s.focus == regEmail),
		"  "+s.email.View(),
		renderLabel("Senha", s.focus == regPassword),
		"  "+s.password.View(),
		"",
	)
	if s.loading {
		lines = append(lines, s.spinner.View()+" Plantando sua conta...")
	} else {
		lines = append(lines, renderButton("Criar conta", s.focus == regSubmit))
	}
	lines = append(lines, "", renderLabel("Já tem conta? Entrar", s.focus == regLogin))
	if alert := s.Alert(); alert.Visible() {
		lines = append(lines, "", alert.render())
	}
	card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	hint := hintStyle.Render("tab próximo campo · ←/→ tipo · enter confirmar · esc voltar")
	return lipgloss.JoinVertical(lipgloss.Left, card, hint)
}
