package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"repdesk/internal/api"
	"repdesk/internal/model"
	"repdesk/internal/session"
)

type loginState struct {
	phone    textinput.Model
	password textinput.Model
	focus    int // 0 = phone, 1 = password
	busy     bool
	errMsg   string
}

func newLoginState() loginState {
	phone := textinput.New()
	phone.Placeholder = "phone number"
	phone.CharLimit = 32
	phone.Width = 32

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 64
	password.Width = 32

	phone.Focus()
	return loginState{phone: phone, password: password}
}

func (m appModel) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.login.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "shift+tab", "up", "down":
			m.login.focus = 1 - m.login.focus
			if m.login.focus == 0 {
				m.login.password.Blur()
				return m, m.login.phone.Focus()
			}
			m.login.phone.Blur()
			return m, m.login.password.Focus()

		case "enter":
			phone := strings.TrimSpace(m.login.phone.Value())
			password := m.login.password.Value()
			if phone == "" || password == "" {
				m.login.errMsg = "enter phone number and password"
				return m, nil
			}
			m.login.busy = true
			m.login.errMsg = ""
			return m, loginCmd(m.client(), phone, password)
		}

	case loginDoneMsg:
		m.login.busy = false
		if msg.err != nil {
			if errors.Is(msg.err, api.ErrInvalidCredentials) {
				m.login.errMsg = "phone number or password is incorrect"
			} else {
				m.login.errMsg = msg.err.Error()
			}
			return m, nil
		}
		if !session.RoleAllowed(msg.sess.Role) {
			// Authenticated but not one of the operator roles.
			m.login.errMsg = "this account is not permitted to use the admin panel"
			return m, nil
		}
		if err := m.sessions.Save(msg.sess); err != nil {
			m.login.errMsg = "could not save session: " + err.Error()
			return m, nil
		}
		m.sess = msg.sess
		m.view = viewEditor
		m.ed = newEditorState(model.NewDraft())
		return m, nil
	}

	var cmd tea.Cmd
	if m.login.focus == 0 {
		m.login.phone, cmd = m.login.phone.Update(msg)
	} else {
		m.login.password, cmd = m.login.password.Update(msg)
	}
	return m, cmd
}

func (m appModel) viewLoginScreen() string {
	label := lipgloss.NewStyle().Bold(true)

	var b strings.Builder
	b.WriteString(label.Render("Sign in"))
	b.WriteString("\n\n")
	b.WriteString("Phone     " + m.login.phone.View() + "\n")
	b.WriteString("Password  " + m.login.password.View() + "\n")

	if m.login.busy {
		b.WriteString("\n" + styleMuted().Render("signing in..."))
	}
	if m.login.errMsg != "" {
		b.WriteString("\n" + styleError().Render(m.login.errMsg))
	}

	b.WriteString("\n\n" + styleMuted().Render("enter: sign in • tab: switch field • ctrl+c: quit"))

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Padding(1, 3)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		box.Render(b.String()))
}
