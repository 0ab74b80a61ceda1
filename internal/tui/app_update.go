package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.seenWindowSize = true
		m.ed.desc.SetWidth(min(48, max(20, m.width-20)))
		return m, nil

	case tea.KeyMsg:
		m.flash = ""
		if msg.String() == "ctrl+c" {
			m.teardownList()
			return m, tea.Quit
		}
		if m.modal != modalNone {
			return m.updateModal(msg)
		}

	case pushEventMsg, formsLoadedMsg, cacheLoadedMsg, actionDoneMsg:
		// List results are routed even when another view is frontmost; the
		// generation check inside drops anything stale.
		return m.updateList(msg)
	}

	switch m.view {
	case viewLogin:
		return m.updateLogin(msg)
	case viewEditor:
		return m.updateEditor(msg)
	case viewList:
		return m.updateList(msg)
	}
	return m, nil
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalInfo, modalDetail:
		switch msg.String() {
		case "enter", "esc", " ", "q":
			m.modal = modalNone
			if m.afterModal != nil {
				target := *m.afterModal
				m.afterModal = nil
				if target == viewList {
					return m.enterList()
				}
				m.view = target
			}
		}
		return m, nil

	case modalConfirmDelete:
		switch msg.String() {
		case "esc":
			m.modal = modalNone
			return m, nil
		case "left", "right", "tab", "shift+tab":
			if m.modalFocus == confirmCancel {
				m.modalFocus = confirmOK
			} else {
				m.modalFocus = confirmCancel
			}
			return m, nil
		case "enter", " ":
			id := m.modalTarget
			confirmed := m.modalFocus == confirmOK
			m.modal = modalNone
			m.modalFocus = confirmCancel
			if confirmed {
				return m, deleteFormCmd(m.client(), id, m.ls.seq)
			}
			return m, nil
		}
		return m, nil
	}

	m.modal = modalNone
	return m, nil
}
