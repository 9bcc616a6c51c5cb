package ui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/custctl/internal/models"
	"github.com/desertthunder/custctl/internal/services"
	"github.com/desertthunder/custctl/internal/shared"
)

const (
	loginUsername = iota
	loginEmail
	loginPassword
)

// loginForm is the sign-in / sign-up screen.
type loginForm struct {
	form
	register bool
	err      string
	keys     formKeys
}

func newLoginForm() loginForm {
	lf := loginForm{
		form: form{fields: []field{
			newField("Username", "jdoe", false),
			newField("Email", "you@example.com", false),
			newField("Password", "password", true),
		}},
		keys: newFormKeys("sign up / sign in"),
	}
	lf.focusAt(loginEmail)
	return lf
}

func (lf *loginForm) visible(i int) bool {
	return lf.register || i != loginUsername
}

func (lf *loginForm) credentials() models.Credentials {
	creds := models.Credentials{Email: lf.value(loginEmail), Password: lf.form.fields[loginPassword].input.Value()}
	if lf.register {
		creds.Username = lf.value(loginUsername)
	}
	return creds
}

// step moves focus by delta, skipping the username field in sign-in mode.
func (lf *loginForm) step(delta int) tea.Cmd {
	i := lf.focus + delta
	n := len(lf.fields)
	i = ((i % n) + n) % n
	if !lf.visible(i) {
		i = ((i+delta)%n + n) % n
	}
	return lf.focusAt(i)
}

func (m *Model) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	lf := &m.login
	switch {
	case key.Matches(msg, lf.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, lf.keys.toggle):
		lf.register = !lf.register
		lf.err = ""
		if lf.register {
			return m, lf.focusAt(loginUsername)
		}
		return m, lf.focusAt(loginEmail)
	case key.Matches(msg, lf.keys.next):
		return m, lf.step(1)
	case key.Matches(msg, lf.keys.prev):
		return m, lf.step(-1)
	case key.Matches(msg, lf.keys.submit):
		if lf.focus != loginPassword {
			return m, lf.step(1)
		}
		creds := lf.credentials()
		if creds.Email == "" || creds.Password == "" || (lf.register && creds.Username == "") {
			lf.err = "All fields are required"
			return m, nil
		}
		lf.err = ""
		return m, m.startBusy(m.authenticate(creds, lf.register))
	}

	return m, lf.update(msg)
}

func (m *Model) authenticate(creds models.Credentials, register bool) tea.Cmd {
	return func() tea.Msg {
		if register {
			if err := m.client.Register(m.ctx, creds); err != nil {
				return loggedInMsg(err)
			}
		}
		token, err := m.client.Login(m.ctx, creds)
		if err != nil {
			return loggedInMsg(err)
		}
		return loggedInMsg(m.session.Set(m.ctx, token))
	}
}

func (m *Model) handleLoggedIn(err error) (tea.Model, tea.Cmd) {
	m.stopBusy()
	if err != nil {
		m.login.err = loginErrorText(err, m.login.register)
		m.logger.Warn("authentication failed", "error", err)
		return m, nil
	}

	m.login.reset()
	m.login.register = false
	m.login.err = ""
	m.login.focusAt(loginEmail)
	m.view = DashboardView
	m.status = ""
	return m, m.fetch()
}

func loginErrorText(err error, register bool) string {
	var apiErr *services.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	switch {
	case errors.Is(err, shared.ErrConflict):
		return "An account with that email already exists"
	case errors.Is(err, shared.ErrAuthFailed):
		return "Invalid email or password"
	case errors.Is(err, shared.ErrNetwork):
		return "Could not reach the server"
	case register:
		return "Registration failed"
	default:
		return fmt.Sprintf("Login failed: %v", err)
	}
}

func (m *Model) renderLogin() string {
	title := "Sign in"
	if m.login.register {
		title = "Create an account"
	}

	body := styles.title.Render(title) + "\n" + m.login.view(m.login.visible)
	if m.login.err != "" {
		body += "\n" + styles.err.Render(m.login.err) + "\n"
	}
	if m.busy() {
		body += "\n" + m.spinner.View() + " Signing in..."
	}

	k := m.login.keys
	return styles.modal.Render(body) + "\n" + m.help.ShortHelpView([]key.Binding{k.next, k.submit, k.toggle, k.quit})
}
