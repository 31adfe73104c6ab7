package commands

import (
	"context"
	"testing"
)

// fakeRunner is a scripted ModelRunner.
type fakeRunner struct {
	binary    string
	models    []string
	listErr   error
	output    string
	runErr    error
	lastModel string
	lastQuery string
	runCalls  int
}

func (f *fakeRunner) ListModels(ctx context.Context) ([]string, error) {
	return f.models, f.listErr
}

func (f *fakeRunner) Run(ctx context.Context, model, query string) (string, error) {
	f.runCalls++
	f.lastModel = model
	f.lastQuery = query
	return f.output, f.runErr
}

func (f *fakeRunner) Binary() string {
	if f.binary == "" {
		return "ollama"
	}
	return f.binary
}

// isolateHome points HOME at a temp dir so config and logs stay out of the
// real home directory.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}
