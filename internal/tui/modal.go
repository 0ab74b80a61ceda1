package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmChoice int

const (
	confirmCancel confirmChoice = iota
	confirmOK
)

func modalBodyWidth(screenWidth int) int {
	w := screenWidth - 12
	if w > 64 {
		w = 64
	}
	if w < 24 {
		w = 24
	}
	return w
}

// renderModalBox draws a bordered modal panel with a title line and body,
// sized to the screen. The caller overlays the result with overlayCenter.
func renderModalBox(title, body string, screenWidth int) string {
	w := modalBodyWidth(screenWidth)

	titleStyle := lipgloss.NewStyle().Bold(true).Width(w)
	bodyStyle := lipgloss.NewStyle().Width(w)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	if body != "" {
		b.WriteString("\n\n")
		b.WriteString(bodyStyle.Render(body))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorMuted).
		Background(colorSurfaceBg).
		Foreground(colorSurfaceFg).
		Padding(1, 2)

	return box.Render(b.String())
}

// renderConfirmButtons renders a Cancel/OK button row for confirm modals.
func renderConfirmButtons(focus confirmChoice, okLabel string) string {
	btn := lipgloss.NewStyle().Padding(0, 2).Background(colorControlBg)
	btnActive := lipgloss.NewStyle().Padding(0, 2).
		Background(colorAccent).Foreground(colorAccentFg).Bold(true)

	cancel := btn.Render("Cancel")
	ok := btn.Render(okLabel)
	if focus == confirmCancel {
		cancel = btnActive.Render("Cancel")
	} else {
		ok = btnActive.Render(okLabel)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cancel, "  ", ok)
}
