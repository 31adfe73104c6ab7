package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/diogo/pulse/internal/errors"
)

// fakeRunner records calls and returns canned results.
type fakeRunner struct {
	mu        sync.Mutex
	output    string
	err       error
	panicWith any
	calls     int
	lastModel string
	lastQuery string
}

func (f *fakeRunner) Run(ctx context.Context, model, query string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.lastModel = model
	f.lastQuery = query
	f.mu.Unlock()

	if f.panicWith != nil {
		panic(f.panicWith)
	}
	return f.output, f.err
}

func (f *fakeRunner) Binary() string { return "ollama" }

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestModel(r *fakeRunner, models ...string) Model {
	return NewModel(context.Background(), r, Options{Models: models})
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	got, ok := updated.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", updated)
	}
	return got, cmd
}

// findResult executes cmd (descending into batches) and returns the first
// resultMsg it yields.
func findResult(cmd tea.Cmd) (resultMsg, bool) {
	if cmd == nil {
		return resultMsg{}, false
	}
	switch msg := cmd().(type) {
	case resultMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if r, ok := findResult(c); ok {
				return r, true
			}
		}
	}
	return resultMsg{}, false
}

var enterKey = tea.KeyMsg{Type: tea.KeyEnter}

func TestNewModel_DefaultSelection(t *testing.T) {
	tests := []struct {
		name         string
		models       []string
		defaultModel string
		want         string
	}{
		{"no models", nil, "", ""},
		{"first model", []string{"llama3", "mistral"}, "", "llama3"},
		{"configured default", []string{"llama3", "mistral"}, "mistral", "mistral"},
		{"missing default", []string{"llama3"}, "phi3", "llama3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewModel(context.Background(), &fakeRunner{}, Options{Models: tt.models, DefaultModel: tt.defaultModel})
			if got := m.SelectedModel(); got != tt.want {
				t.Errorf("SelectedModel() = %q, want %q", got, tt.want)
			}
			if !m.ControlsEnabled() {
				t.Error("controls should start enabled")
			}
			if m.Running() {
				t.Error("model should start idle")
			}
		})
	}
}

func TestSend_EmptyQuery(t *testing.T) {
	for _, query := range []string{"", "   ", "\t \t"} {
		r := &fakeRunner{}
		m := newTestModel(r, "llama3")
		m.input.SetValue(query)

		m, cmd := update(t, m, enterKey)

		if cmd != nil {
			if _, ok := findResult(cmd); ok {
				t.Errorf("query %q: runner should not be dispatched", query)
			}
		}
		if r.callCount() != 0 {
			t.Errorf("query %q: runner called %d times", query, r.callCount())
		}
		if m.Output() != emptyQueryMessage {
			t.Errorf("query %q: output = %q, want %q", query, m.Output(), emptyQueryMessage)
		}
		if !m.ControlsEnabled() || m.Running() {
			t.Errorf("query %q: model should stay idle with controls enabled", query)
		}
	}
}

func TestSend_DisablesControlsWhileRunning(t *testing.T) {
	r := &fakeRunner{output: "hi"}
	m := newTestModel(r, "llama3")
	m.input.SetValue("  why is the sky blue?  ")

	m, cmd := m.Send()

	if cmd == nil {
		t.Fatal("expected a dispatch command")
	}
	if m.Output() != loadingMessage {
		t.Errorf("output = %q, want %q", m.Output(), loadingMessage)
	}
	if m.ControlsEnabled() {
		t.Error("controls should be disabled while running")
	}
	if !m.Running() {
		t.Error("model should be running")
	}
	if r.callCount() != 0 {
		t.Error("runner must not be called on the event loop")
	}

	res, ok := findResult(cmd)
	if !ok {
		t.Fatal("dispatch command did not produce a result")
	}
	if r.lastModel != "llama3" || r.lastQuery != "why is the sky blue?" {
		t.Errorf("runner got model=%q query=%q", r.lastModel, r.lastQuery)
	}
	if res.output != "hi" {
		t.Errorf("result output = %q", res.output)
	}
}

func TestSend_SingleRequestInFlight(t *testing.T) {
	r := &fakeRunner{output: "ok"}
	m := newTestModel(r, "llama3")
	m.input.SetValue("first")

	m, first := m.Send()
	if first == nil {
		t.Fatal("expected first dispatch")
	}

	// Programmatic second send, bypassing disabled controls
	m.input.SetValue("second")
	m, second := m.Send()
	if second != nil {
		t.Error("second send should be ignored while running")
	}
	if m.Output() != loadingMessage {
		t.Errorf("output changed to %q", m.Output())
	}

	// Key presses are ignored too
	m, cmd := update(t, m, enterKey)
	if _, ok := findResult(cmd); ok {
		t.Error("enter while running should not dispatch")
	}
}

func TestDispatch_ControlsReenabledOnEveryOutcome(t *testing.T) {
	tests := []struct {
		name   string
		runner *fakeRunner
		want   string
	}{
		{
			name:   "success",
			runner: &fakeRunner{output: "\x1b[1mThe sky\x1b[0m scatters light"},
			want:   "The sky scatters light",
		},
		{
			name: "non-zero exit",
			runner: &fakeRunner{err: apperrors.NewExitError(1,
				"\x1b[31merror: model 'x' not found\x1b[0m", []string{"run", "x", "q"})},
			want: "Error: error: model 'x' not found",
		},
		{
			name:   "runner not found",
			runner: &fakeRunner{err: apperrors.NewNotFoundError("ollama", nil)},
			want:   "Error: 'ollama' command not found. Please ensure it is installed and in your PATH.",
		},
		{
			name:   "unexpected error",
			runner: &fakeRunner{err: errors.New("broken pipe")},
			want:   "An error occurred: broken pipe",
		},
		{
			name:   "runner panics",
			runner: &fakeRunner{panicWith: "boom"},
			want:   "An error occurred: runner panicked: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(tt.runner, "llama3")
			m.input.SetValue("why?")

			m, cmd := update(t, m, enterKey)
			res, ok := findResult(cmd)
			if !ok {
				t.Fatal("dispatch command did not produce a result")
			}

			m, _ = update(t, m, res)

			if m.Output() != tt.want {
				t.Errorf("output = %q, want %q", m.Output(), tt.want)
			}
			if !m.ControlsEnabled() {
				t.Error("controls should be re-enabled")
			}
			if m.Running() {
				t.Error("model should be idle")
			}
			if m.Query() != "why?" {
				t.Errorf("query should be kept, got %q", m.Query())
			}
		})
	}
}

func TestDispatch_TimeoutMessage(t *testing.T) {
	m := newTestModel(&fakeRunner{err: apperrors.NewTimeoutError("ollama run after 1s")}, "llama3")
	m.input.SetValue("q")

	m, cmd := m.Send()
	res, _ := findResult(cmd)
	m, _ = update(t, m, res)

	if !strings.HasPrefix(m.Output(), "Error: runner timed out") {
		t.Errorf("output = %q", m.Output())
	}
}

func TestClear(t *testing.T) {
	states := map[string]func(Model) Model{
		"idle": func(m Model) Model { return m },
		"loading": func(m Model) Model {
			m, _ = m.Send()
			return m
		},
		"success": func(m Model) Model {
			m, cmd := m.Send()
			res, _ := findResult(cmd)
			m, _ = m.finish(res)
			return m
		},
		"error": func(m Model) Model {
			m, _ = m.finish(resultMsg{err: errors.New("x")})
			return m
		},
	}

	for name, setup := range states {
		t.Run(name, func(t *testing.T) {
			m := newTestModel(&fakeRunner{output: "answer"}, "llama3")
			m.input.SetValue("question")
			m = setup(m)

			m.Clear()

			if m.Query() != "" {
				t.Errorf("query = %q, want empty", m.Query())
			}
			if m.Output() != "" {
				t.Errorf("output = %q, want empty", m.Output())
			}
		})
	}
}

func TestClear_KeyIgnoredWhileRunning(t *testing.T) {
	m := newTestModel(&fakeRunner{}, "llama3")
	m.input.SetValue("question")
	m, _ = m.Send()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlL})

	if m.Output() != loadingMessage {
		t.Errorf("ctrl+l while running changed output to %q", m.Output())
	}
	if m.Query() != "question" {
		t.Errorf("ctrl+l while running changed query to %q", m.Query())
	}
}

func TestClear_ButtonViaFocus(t *testing.T) {
	m := newTestModel(&fakeRunner{}, "llama3")
	m.input.SetValue("question")
	m.setOutput("old", "old")

	// input -> send -> clear
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != focusClear {
		t.Fatalf("focus = %d, want focusClear", m.focus)
	}

	m, cmd := update(t, m, enterKey)
	if _, ok := findResult(cmd); ok {
		t.Error("clear should not dispatch")
	}
	if m.Query() != "" || m.Output() != "" {
		t.Errorf("clear left query=%q output=%q", m.Query(), m.Output())
	}
}

func TestModelSelector_Cycles(t *testing.T) {
	m := newTestModel(&fakeRunner{}, "a", "b", "c")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if m.focus != focusModels {
		t.Fatalf("focus = %d, want focusModels", m.focus)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.SelectedModel() != "b" {
		t.Errorf("after right: %q", m.SelectedModel())
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.SelectedModel() != "c" {
		t.Errorf("left should wrap, got %q", m.SelectedModel())
	}
}

func TestModelSelector_NoModels(t *testing.T) {
	r := &fakeRunner{err: apperrors.NewExitError(1, "model is required", nil)}
	m := newTestModel(r)
	m.cycleModel(1)
	if m.SelectedModel() != "" {
		t.Errorf("SelectedModel() = %q, want empty", m.SelectedModel())
	}

	m.input.SetValue("hello")
	m, cmd := m.Send()
	res, ok := findResult(cmd)
	if !ok {
		t.Fatal("send without models should still dispatch")
	}
	if m.status != "No model selected" || !m.statusWarn {
		t.Errorf("status = %q warn=%v, want no-model warning", m.status, m.statusWarn)
	}
	if r.lastModel != "" {
		t.Errorf("model = %q, want empty", r.lastModel)
	}
	m, _ = m.finish(res)
	if m.Output() != "Error: model is required" || !m.ControlsEnabled() {
		t.Errorf("output = %q enabled=%v", m.Output(), m.ControlsEnabled())
	}
}

func TestTyping_IgnoredWhileRunning(t *testing.T) {
	m := newTestModel(&fakeRunner{}, "llama3")
	m.input.SetValue("abc")
	m, _ = m.Send()

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("xyz")})
	if m.Query() != "abc" {
		t.Errorf("typing while running changed query to %q", m.Query())
	}
}

func TestCopyOutput(t *testing.T) {
	m := NewModel(context.Background(), &fakeRunner{}, Options{CopyToClipboard: false})
	m.setOutput("text", "text")
	if m.copyOutput() != nil {
		t.Error("copy disabled should yield no command")
	}

	m = NewModel(context.Background(), &fakeRunner{}, Options{CopyToClipboard: true})
	if m.copyOutput() != nil {
		t.Error("nothing to copy should yield no command")
	}

	m, _ = update(t, m, copiedMsg{})
	if m.status != "Copied to clipboard" {
		t.Errorf("status = %q", m.status)
	}
	m, _ = update(t, m, copiedMsg{err: errors.New("no xclip")})
	if m.status != "Copy failed" {
		t.Errorf("status = %q", m.status)
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := newTestModel(&fakeRunner{})
		_, cmd := update(t, m, key)
		if cmd == nil {
			t.Fatalf("%s: expected quit command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s: expected tea.QuitMsg", key)
		}
	}
}

func TestView(t *testing.T) {
	m := newTestModel(&fakeRunner{}, "llama3", "mistral")
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("view before size = %q", got)
	}

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	for _, want := range []string{"Pulse", "ollama", "llama3", "(1/2)", "Send", "Clear"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m.input.SetValue("q")
	m, _ = m.Send()
	if !strings.Contains(m.View(), loadingMessage) {
		t.Error("view should show loading placeholder while running")
	}
}

func TestView_NoModels(t *testing.T) {
	m := newTestModel(&fakeRunner{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "no models found") {
		t.Error("view should report that no models were found")
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		binary string
		want   string
	}{
		{"nil", nil, "", ""},
		{"empty query", apperrors.ErrEmptyQuery, "", "Error: Input field cannot be empty."},
		{"exit output stripped", apperrors.NewExitError(1, "\x1b[31mpull model first\x1b[0m\n", nil), "", "Error: pull model first\n"},
		{"not found uses error binary", apperrors.NewNotFoundError("/opt/ollama", nil), "",
			"Error: '/opt/ollama' command not found. Please ensure it is installed and in your PATH."},
		{"not found prefers given binary", fmt.Errorf("wrapped: %w", apperrors.NewNotFoundError("x", nil)), "ollama",
			"Error: 'ollama' command not found. Please ensure it is installed and in your PATH."},
		{"timeout", apperrors.NewTimeoutError("ollama run after 1s"), "", "Error: ollama run after 1s"},
		{"other", errors.New("boom"), "", "An error occurred: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DescribeError(tt.err, tt.binary); got != tt.want {
				t.Errorf("DescribeError() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	if FormatError(nil) != "" {
		t.Error("nil error should format as empty")
	}

	got := FormatError(apperrors.NewExitError(1, "\x1b[31mpull model first\x1b[0m\n", nil))
	if !strings.Contains(got, "Error: pull model first") || strings.Contains(got, "\x1b[31mpull") {
		t.Errorf("exit output should be shown stripped, got %q", got)
	}
	if strings.Contains(got, "exited with status") {
		t.Errorf("exit status should not replace the runner output, got %q", got)
	}

	got = FormatError(apperrors.ErrEmptyQuery)
	if !strings.Contains(got, emptyQueryMessage) {
		t.Errorf("empty query should use the input message, got %q", got)
	}

	got = FormatError(apperrors.NewNotFoundError("ollama", nil))
	if !strings.Contains(got, "'ollama' command not found") || !strings.Contains(got, "--runner") {
		t.Errorf("not found error should include message and hint, got %q", got)
	}
}

func TestOutput_LongErrorScrolls(t *testing.T) {
	var lines []string
	for i := 0; i < 200; i++ {
		lines = append(lines, fmt.Sprintf("stack frame %d", i))
	}
	r := &fakeRunner{err: apperrors.NewExitError(2, strings.Join(lines, "\n"), nil)}
	m := newTestModel(r, "llama3")
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m.input.SetValue("q")
	m, cmd := m.Send()
	res, ok := findResult(cmd)
	if !ok {
		t.Fatal("expected a result message")
	}
	m, _ = m.finish(res)

	if m.output.TotalLineCount() <= m.output.Height {
		t.Fatalf("error output should overflow the viewport, got %d lines for height %d",
			m.output.TotalLineCount(), m.output.Height)
	}

	panel := m.renderOutput(80 - 4)
	if h, limit := lipgloss.Height(panel), m.output.Height+outputAreaStyle.GetVerticalFrameSize(); h > limit {
		t.Errorf("output panel height = %d, want at most %d", h, limit)
	}
	if strings.Contains(panel, "stack frame 199") {
		t.Error("tail of the error should be off screen before scrolling")
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyPgDown})
	if m.output.YOffset == 0 {
		t.Error("pgdown should scroll the error output")
	}
}

func TestSend_NoModelWarning(t *testing.T) {
	m := newTestModel(&fakeRunner{})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 160, Height: 30})
	m.input.SetValue("q")
	m, _ = m.Send()
	if !strings.Contains(m.View(), "No model selected") {
		t.Error("status bar should show the no-model warning")
	}

	m.Clear()
	if m.status != "" || m.statusWarn {
		t.Errorf("clear should reset the status, got %q warn=%v", m.status, m.statusWarn)
	}
}
