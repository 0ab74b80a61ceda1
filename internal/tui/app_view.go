package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"repdesk/internal/session"
)

func (m appModel) View() string {
	if !m.seenWindowSize {
		return ""
	}

	if m.modal != modalNone {
		body := m.modalBody
		if m.modal == modalConfirmDelete {
			body += "\n\n" + renderConfirmButtons(m.modalFocus, "Delete")
		} else {
			body += "\n\n" + styleMuted().Render("enter: close")
		}
		box := renderModalBox(m.modalTitle, body, m.width)
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	if m.view == viewLogin {
		return m.viewLoginScreen()
	}

	var body string
	switch m.view {
	case viewEditor:
		body = m.viewEditorScreen()
	case viewList:
		body = m.viewListScreen()
	}

	content := m.viewHeader() + "\n\n" + body
	if m.flash != "" {
		content += "\n" + styleError().Render(m.flash)
	}
	return lipgloss.NewStyle().Padding(1, 2).Render(content)
}

func (m appModel) viewHeader() string {
	title := lipgloss.NewStyle().Bold(true).Render("repdesk")

	who := m.sess.Name
	if who == "" {
		who = "signed in"
	}
	role := m.sess.Role
	if session.Allowed(m.sess, session.RoleAdmin) {
		role = role + " (full access)"
	}

	where := "editor"
	if m.view == viewList {
		where = "requests"
	}

	meta := styleMuted().Render(strings.Join([]string{who, role, where}, " • "))
	return title + "  " + meta
}
