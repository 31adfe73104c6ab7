package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	sections := []string{
		m.renderHeader(contentWidth),
		m.renderModelSelector(),
		m.renderInput(contentWidth),
		m.renderButtons(),
		m.renderOutput(contentWidth),
		m.renderStatusBar(contentWidth),
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	content := lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("✦ Pulse"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.binary()),
	)
	return headerStyle.Width(width).Render(content)
}

func (m Model) renderModelSelector() string {
	label := selectorLabelStyle.Render("Model:")

	if len(m.models) == 0 {
		return label + errorStyle.Render("no models found")
	}

	name := selectorValueStyle.Render(m.SelectedModel())
	if m.focus == focusModels {
		name = selectorFocusStyle.Render(m.SelectedModel())
	}
	position := hintStyle.Render(fmt.Sprintf(" (%d/%d)", m.selected+1, len(m.models)))

	return label + selectorArrowStyle.Render("‹ ") + name + selectorArrowStyle.Render(" ›") + position
}

func (m Model) renderInput(width int) string {
	style := inputPanelStyle
	if m.focus == focusInput && m.controlsEnabled {
		style = inputPanelFocusStyle
	}
	return style.Width(width).Render(m.input.View())
}

func (m Model) renderButtons() string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderButton("Send", focusSend),
		m.renderButton("Clear", focusClear),
	)
}

func (m Model) renderButton(label string, area focusArea) string {
	switch {
	case !m.controlsEnabled:
		return buttonDisabledStyle.Render(label)
	case m.focus == area:
		return buttonFocusedStyle.Render(label)
	default:
		return buttonStyle.Render(label)
	}
}

func (m Model) renderOutput(width int) string {
	content := m.output.View()
	if m.state == stateRunning {
		content = m.spinner.View() + " " + loadingStyle.Render(m.outputText)
	}

	return outputAreaStyle.
		Width(width).
		Height(m.output.Height).
		Render(content)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Tab", "Focus"},
		{"←→", "Model"},
		{"Ctrl+L", "Clear"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}
	if m.copyEnabled {
		shortcuts = append(shortcuts, struct {
			key  string
			desc string
		}{"Ctrl+Y", "Copy"})
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	if m.status != "" {
		note := statusNoteStyle
		if m.statusWarn {
			note = statusWarnStyle
		}
		bar = note.Render(m.status) + "  │  " + bar
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}
