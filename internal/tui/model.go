package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/pulse/internal/ansi"
	apperrors "github.com/diogo/pulse/internal/errors"
	"github.com/diogo/pulse/internal/render"
)

// Fixed texts shown in the output area
const (
	emptyQueryMessage = "Error: Input field cannot be empty."
	loadingMessage    = "Loading..."
	exitErrorPrefix   = "Error: "
	otherErrorPrefix  = "An error occurred: "
)

// Message types for the TUI
type (
	// resultMsg carries the outcome of one runner invocation back to the
	// event loop. Exactly one is produced per dispatched request.
	resultMsg struct {
		model  string
		output string
		err    error
	}
	copiedMsg struct {
		err error
	}
)

// Runner is the subset of the model runner the TUI depends on.
type Runner interface {
	Run(ctx context.Context, model, query string) (string, error)
	Binary() string
}

type focusArea int

const (
	focusModels focusArea = iota
	focusInput
	focusSend
	focusClear
	focusCount
)

type dispatchState int

const (
	stateIdle dispatchState = iota
	stateRunning
)

// Options configures a Model.
type Options struct {
	// Models is the installed model list, in display order.
	Models []string
	// DefaultModel is preselected when present in Models.
	DefaultModel    string
	Markdown        bool
	RenderOptions   render.Options
	CopyToClipboard bool
	Logger          *slog.Logger
}

// Model holds all interface state. Every field is owned by the event loop;
// the worker goroutine only ever returns a resultMsg.
type Model struct {
	ctx    context.Context
	runner Runner
	logger *slog.Logger

	models   []string
	selected int // -1 when no model is available

	input   textinput.Model
	output  viewport.Model
	spinner spinner.Model

	outputText string // what the output area currently shows
	plainText  string // unrendered text, used for clipboard copies

	focus           focusArea
	controlsEnabled bool
	state           dispatchState
	status          string
	statusWarn      bool

	markdown      bool
	renderOptions render.Options
	copyEnabled   bool

	ready  bool
	width  int
	height int
}

// NewModel creates the TUI model.
func NewModel(ctx context.Context, runner Runner, opts Options) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.CharLimit = 4000
	ti.Prompt = "› "
	ti.PromptStyle = inputLabelStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	models := append([]string(nil), opts.Models...)
	selected := -1
	if len(models) > 0 {
		selected = 0
		for i, name := range models {
			if name == opts.DefaultModel {
				selected = i
				break
			}
		}
	}

	renderOptions := opts.RenderOptions
	if renderOptions.Style == "" {
		renderOptions = render.DefaultOptions()
	}

	return Model{
		ctx:             ctx,
		runner:          runner,
		logger:          logger,
		models:          models,
		selected:        selected,
		input:           ti,
		output:          viewport.New(80, 10),
		spinner:         s,
		focus:           focusInput,
		controlsEnabled: true,
		state:           stateIdle,
		markdown:        opts.Markdown,
		renderOptions:   renderOptions,
		copyEnabled:     opts.CopyToClipboard,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		return m.finish(msg)

	case copiedMsg:
		if msg.err != nil {
			m.logger.Warn("clipboard copy failed", "error", msg.err)
			m.status = "Copy failed"
		} else {
			m.status = "Copied to clipboard"
		}
		m.statusWarn = msg.err != nil
		return m, nil

	case spinner.TickMsg:
		if m.state == stateRunning {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.controlsEnabled {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		return m.moveFocus(1)

	case "shift+tab":
		return m.moveFocus(-1)

	case "ctrl+l":
		if m.controlsEnabled {
			m.Clear()
		}
		return m, nil

	case "ctrl+y":
		return m, m.copyOutput()

	case "pgup", "pgdown":
		m.output, cmd = m.output.Update(msg)
		return m, cmd

	case "enter":
		if m.focus == focusClear {
			if m.controlsEnabled {
				m.Clear()
			}
			return m, nil
		}
		return m.Send()

	case "left", "up":
		if m.focus == focusModels {
			m.cycleModel(-1)
			return m, nil
		}

	case "right", "down":
		if m.focus == focusModels {
			m.cycleModel(1)
			return m, nil
		}
	}

	// Only KeyMsg reaches the input to keep escape sequences out of it
	if m.focus == focusInput && m.controlsEnabled {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

// Send validates the query and, if valid, dispatches it to the runner on a
// worker goroutine. At most one request is in flight: a Send while another
// request is running is ignored regardless of control state.
func (m Model) Send() (Model, tea.Cmd) {
	if m.state == stateRunning {
		m.logger.Debug("send ignored, request already in flight")
		return m, nil
	}

	query := strings.TrimSpace(m.input.Value())
	if query == "" {
		m.setOutput(emptyQueryMessage, emptyQueryMessage)
		return m, nil
	}

	m.status, m.statusWarn = "", false
	model := m.SelectedModel()
	if model == "" {
		m.logger.Warn("sending request without a selected model")
		m.status, m.statusWarn = "No model selected", true
	}

	m.setOutput(loadingMessage, loadingMessage)
	m.setControlsEnabled(false)
	m.state = stateRunning
	m.logger.Info("dispatching request", "model", model, "query_len", len(query))

	return m, tea.Batch(m.dispatch(model, query), m.spinner.Tick)
}

// dispatch runs the blocking runner call. bubbletea executes the returned
// command off the event loop and feeds its message back into Update.
func (m Model) dispatch(model, query string) tea.Cmd {
	ctx, runner := m.ctx, m.runner
	return func() (msg tea.Msg) {
		defer func() {
			if r := recover(); r != nil {
				msg = resultMsg{model: model, err: fmt.Errorf("runner panicked: %v", r)}
			}
		}()

		output, err := runner.Run(ctx, model, query)
		return resultMsg{model: model, output: output, err: err}
	}
}

// finish applies a request outcome. Controls are re-enabled on every path.
func (m Model) finish(msg resultMsg) (Model, tea.Cmd) {
	m.state = stateIdle
	cmd := m.setControlsEnabled(true)

	if msg.err != nil {
		m.logger.Error("request failed", "model", msg.model, "error", msg.err)
		text := m.describeError(msg.err)
		m.setOutput(text, text)
		return m, cmd
	}

	plain := ansi.Strip(msg.output)
	m.logger.Info("request finished", "model", msg.model, "output_len", len(plain))
	m.setOutput(render.Response(plain, m.markdown, m.renderOptions.WithWidth(m.output.Width)), plain)
	return m, cmd
}

// describeError maps a runner failure onto the text shown to the user.
func (m Model) describeError(err error) string {
	return DescribeError(err, m.binary())
}

// DescribeError returns the user-facing text for err. binary names the runner
// in the not-found message; when empty it is taken from err.
func DescribeError(err error, binary string) string {
	switch {
	case err == nil:
		return ""
	case apperrors.IsEmptyQuery(err):
		return emptyQueryMessage
	case apperrors.IsExitError(err):
		out, _ := apperrors.GetExitOutput(err)
		return exitErrorPrefix + ansi.Strip(out)
	case apperrors.IsNotFound(err):
		var nf *apperrors.NotFoundError
		if binary == "" && errors.As(err, &nf) {
			binary = nf.Binary
		}
		return exitErrorPrefix + apperrors.NewNotFoundError(binary, nil).Error()
	case apperrors.IsTimeout(err):
		return exitErrorPrefix + err.Error()
	default:
		return otherErrorPrefix + err.Error()
	}
}

// Clear empties the query input and the output area.
func (m *Model) Clear() {
	m.input.SetValue("")
	m.setOutput("", "")
	m.status, m.statusWarn = "", false
}

func (m *Model) setOutput(text, plain string) {
	m.outputText = text
	m.plainText = plain
	m.refreshOutput()
	m.output.GotoTop()
}

// refreshOutput wraps the output text to the viewport width so long results
// and error output scroll instead of growing the panel.
func (m *Model) refreshOutput() {
	style := lipgloss.NewStyle()
	if isErrorText(m.outputText) {
		style = outputErrStyle
	}
	if m.output.Width > 0 {
		style = style.Width(m.output.Width)
	}
	m.output.SetContent(style.Render(m.outputText))
}

func isErrorText(text string) bool {
	return strings.HasPrefix(text, exitErrorPrefix) || strings.HasPrefix(text, otherErrorPrefix)
}

// setControlsEnabled toggles the input and both buttons together.
func (m *Model) setControlsEnabled(enabled bool) tea.Cmd {
	m.controlsEnabled = enabled
	if !enabled {
		m.input.Blur()
		return nil
	}
	if m.focus == focusInput {
		return m.input.Focus()
	}
	return nil
}

func (m Model) moveFocus(delta int) (Model, tea.Cmd) {
	m.focus = focusArea((int(m.focus) + delta + int(focusCount)) % int(focusCount))
	if m.focus == focusInput && m.controlsEnabled {
		return m, m.input.Focus()
	}
	m.input.Blur()
	return m, nil
}

func (m *Model) cycleModel(delta int) {
	if len(m.models) == 0 {
		return
	}
	m.selected = (m.selected + delta + len(m.models)) % len(m.models)
}

func (m Model) copyOutput() tea.Cmd {
	if !m.copyEnabled || m.plainText == "" {
		return nil
	}
	text := m.plainText
	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(text)}
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3   // Header panel with border
	selectorHeight := 1 // Model selector row
	inputHeight := 4    // Input panel with border and margin
	buttonsHeight := 3  // Button row with borders
	statusHeight := 1
	borders := 2 // Output panel border

	vpHeight := height - headerHeight - selectorHeight - inputHeight - buttonsHeight - statusHeight - borders
	if vpHeight < 3 {
		vpHeight = 3
	}
	contentWidth := width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	m.output.Width = contentWidth - outputAreaStyle.GetHorizontalPadding()
	m.output.Height = vpHeight
	m.input.Width = contentWidth - 6
	m.refreshOutput()
	m.ready = true
}

func (m Model) binary() string {
	if m.runner == nil {
		return "runner"
	}
	return m.runner.Binary()
}

// SelectedModel returns the current model, or "" when none is installed.
func (m Model) SelectedModel() string {
	if m.selected < 0 || m.selected >= len(m.models) {
		return ""
	}
	return m.models[m.selected]
}

// Output returns the text shown in the output area.
func (m Model) Output() string {
	return m.outputText
}

// Query returns the raw contents of the input field.
func (m Model) Query() string {
	return m.input.Value()
}

// ControlsEnabled reports whether the input and both buttons accept actions.
func (m Model) ControlsEnabled() bool {
	return m.controlsEnabled
}

// Running reports whether a request is in flight.
func (m Model) Running() bool {
	return m.state == stateRunning
}

// Run starts the TUI and blocks until the user quits. The model list in opts
// is loaded by the caller before the program starts.
func Run(ctx context.Context, runner Runner, opts Options) error {
	p := tea.NewProgram(
		NewModel(ctx, runner, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}
