package commands

import (
	"context"

	"github.com/diogo/pulse/internal/config"
	"github.com/diogo/pulse/internal/runner"
	"github.com/diogo/pulse/internal/tui"
)

// ModelRunner is the runner surface the commands need.
type ModelRunner interface {
	runner.ModelLister
	tui.Runner
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewRunner builds the runner for the resolved configuration.
	NewRunner func(cfg config.Config) ModelRunner

	// RunTUI starts the interactive interface.
	RunTUI func(ctx context.Context, r tui.Runner, opts tui.Options) error
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewRunner: func(cfg config.Config) ModelRunner {
			return runner.New(
				runner.WithBinary(cfg.Runner),
				runner.WithTimeout(cfg.Timeout()),
				runner.WithEnv(cfg.RunnerEnv()),
			)
		},
		RunTUI: tui.Run,
	}
}

// orDefault fills nil fields with the production implementations.
func (d *Dependencies) orDefault() *Dependencies {
	def := NewDependencies()
	if d == nil {
		return def
	}
	out := *d
	if out.NewRunner == nil {
		out.NewRunner = def.NewRunner
	}
	if out.RunTUI == nil {
		out.RunTUI = def.RunTUI
	}
	return &out
}
