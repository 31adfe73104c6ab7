// Package tui provides the terminal user interface for pulse.
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/pulse/internal/errors"
	"github.com/diogo/pulse/internal/render"
)

// Color variables (updated from theme)
var (
	colorSurface lipgloss.Color
	colorBorder  lipgloss.Color

	colorPrimary   lipgloss.Color
	colorSecondary lipgloss.Color
	colorAccent    lipgloss.Color
	colorWarning   lipgloss.Color
	colorError     lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	// Model selector row
	selectorLabelStyle lipgloss.Style
	selectorValueStyle lipgloss.Style
	selectorFocusStyle lipgloss.Style
	selectorArrowStyle lipgloss.Style

	inputPanelStyle      lipgloss.Style
	inputPanelFocusStyle lipgloss.Style
	inputLabelStyle      lipgloss.Style

	// Buttons
	buttonStyle         lipgloss.Style
	buttonFocusedStyle  lipgloss.Style
	buttonDisabledStyle lipgloss.Style

	outputAreaStyle lipgloss.Style
	outputErrStyle  lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style
	statusNoteStyle lipgloss.Style
	statusWarnStyle lipgloss.Style

	errorStyle lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorSurface = theme.Surface
	colorBorder = theme.Border
	colorPrimary = theme.Primary
	colorSecondary = theme.Secondary
	colorAccent = theme.Accent
	colorWarning = theme.Warning
	colorError = theme.Error
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

func rebuildStyles() {
	headerStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2)

	titleStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	subtitleStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	hintStyle = lipgloss.NewStyle().
		Foreground(colorTextMute).
		Italic(true)

	selectorLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true).
		MarginRight(1)

	selectorValueStyle = lipgloss.NewStyle().
		Foreground(colorText)

	selectorFocusStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true).
		Underline(true)

	selectorArrowStyle = lipgloss.NewStyle().
		Foreground(colorTextDim)

	inputPanelStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 1).
		MarginTop(1)

	inputPanelFocusStyle = inputPanelStyle.
		BorderForeground(colorPrimary)

	inputLabelStyle = lipgloss.NewStyle().
		Foreground(colorPrimary).
		Bold(true)

	buttonStyle = lipgloss.NewStyle().
		Foreground(colorText).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Padding(0, 2).
		MarginRight(1)

	buttonFocusedStyle = buttonStyle.
		Foreground(colorAccent).
		Background(colorSurface).
		BorderForeground(colorAccent).
		Bold(true)

	buttonDisabledStyle = buttonStyle.
		Foreground(colorTextMute).
		BorderForeground(colorTextMute)

	outputAreaStyle = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorBorder).
		Foreground(colorText).
		Padding(0, 1)

	outputErrStyle = lipgloss.NewStyle().
		Foreground(colorError)

	loadingStyle = lipgloss.NewStyle().
		Foreground(colorAccent).
		Bold(true)

	statusBarStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusKeyStyle = lipgloss.NewStyle().
		Foreground(colorTextDim).
		Bold(true)

	statusDescStyle = lipgloss.NewStyle().
		Foreground(colorTextMute)

	statusNoteStyle = lipgloss.NewStyle().
		Foreground(colorSecondary).
		Italic(true)

	statusWarnStyle = lipgloss.NewStyle().
		Foreground(colorWarning).
		Bold(true)

	errorStyle = lipgloss.NewStyle().
		Foreground(colorError).
		Bold(true)
}

// FormatError renders err for the command line with the same wording the
// output area uses, followed by a hint when one applies.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := lipgloss.NewStyle().Foreground(colorError)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(strings.TrimRight(DescribeError(err, ""), "\n")))

	switch {
	case errors.IsNotFound(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Install the runner or point --runner at its binary"))
	case errors.IsTimeout(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Raise timeout_seconds in ~/.pulse/config.json or set it to 0"))
	case errors.IsEmptyQuery(err):
		sb.WriteString(dimStyle.Render("\n  Hint: Pass the query as an argument or pipe it on stdin"))
	}

	return sb.String()
}
