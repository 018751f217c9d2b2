package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/picnichood/picnic-cli/internal/api"
)

type loginResultMsg struct {
	resp *api.LoginResponse
	err  error
}

type loginScreen struct {
	deps       *Deps
	email      textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	spin       spinner.Model
	errMsg     string
}

func newLoginScreen(deps *Deps) *loginScreen {
	email := textinput.New()
	email.Placeholder = "Email Address"
	email.CharLimit = 120
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 120
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &loginScreen{
		deps:     deps,
		email:    email,
		password: password,
		spin:     sp,
	}
}

func (s *loginScreen) Init() tea.Cmd {
	return textinput.Blink
}

func (s *loginScreen) capturingInput() bool {
	return s.email.Focused() || s.password.Focused()
}

func (s *loginScreen) Update(msg tea.Msg) (screen, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if s.submitting {
			return s, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			s.focus = (s.focus + 1) % 2
			if s.focus == 0 {
				s.password.Blur()
				return s, s.email.Focus()
			}
			s.email.Blur()
			return s, s.password.Focus()
		case "enter":
			if s.focus == 0 {
				s.focus = 1
				s.email.Blur()
				return s, s.password.Focus()
			}
			return s.submit()
		}

	case loginResultMsg:
		s.submitting = false
		if msg.err != nil {
			s.errMsg = msg.err.Error()
			return s, nil
		}
		if err := s.deps.Session.Set(msg.resp.Token, msg.resp.User); err != nil {
			s.errMsg = err.Error()
			return s, nil
		}
		s.deps.Log.Info("login_ok", "user", msg.resp.User.Username)
		return s, navigateTo(routeCatalog)

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	s.email, cmd = s.email.Update(msg)
	cmds = append(cmds, cmd)
	s.password, cmd = s.password.Update(msg)
	cmds = append(cmds, cmd)
	return s, tea.Batch(cmds...)
}

func (s *loginScreen) submit() (screen, tea.Cmd) {
	email := strings.TrimSpace(s.email.Value())
	password := s.password.Value()
	if email == "" || password == "" {
		s.errMsg = "Email and password are required"
		return s, nil
	}

	s.submitting = true
	s.errMsg = ""
	deps := s.deps
	login := func() tea.Msg {
		resp, err := deps.API.Login(context.Background(), email, password)
		return loginResultMsg{resp: resp, err: err}
	}
	return s, tea.Batch(s.spin.Tick, login)
}

func (s *loginScreen) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Welcome Back"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Sign in to continue shopping"))
	b.WriteString("\n\n")
	b.WriteString(s.email.View())
	b.WriteString("\n")
	b.WriteString(s.password.View())
	b.WriteString("\n\n")
	if s.errMsg != "" {
		b.WriteString(errorStyle.Render(s.errMsg))
		b.WriteString("\n")
	}
	if s.submitting {
		b.WriteString(s.spin.View() + " Signing in...")
	} else {
		b.WriteString(helpStyle.Render("enter sign in • tab switch field • ctrl+c quit"))
	}
	return b.String()
}
