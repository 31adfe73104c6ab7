// Package runner shells out to a locally installed model runner CLI.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/diogo/pulse/internal/ansi"
	pulseerrors "github.com/diogo/pulse/internal/errors"
)

// DefaultBinary is the runner executable used when none is configured.
const DefaultBinary = "ollama"

// Subcommands understood by the runner.
const (
	listSubcommand = "list"
	runSubcommand  = "run"
)

// Runner invokes the external model runner. It holds no per-request state and
// is safe for concurrent use.
type Runner struct {
	binary  string
	env     []string
	timeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// New creates a Runner with optional configuration.
func New(opts ...Option) *Runner {
	r := &Runner{
		binary: DefaultBinary,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	if r.binary == "" {
		r.binary = DefaultBinary
	}
	return r
}

// WithBinary overrides the runner executable (name on PATH or absolute path).
func WithBinary(binary string) Option {
	return func(r *Runner) {
		r.binary = binary
	}
}

// WithEnv sets extra environment variables for every invocation.
func WithEnv(env []string) Option {
	return func(r *Runner) {
		if len(env) == 0 {
			r.env = nil
			return
		}
		r.env = append([]string(nil), env...)
	}
}

// WithTimeout bounds each invocation. Zero or negative means no timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

// Binary returns the configured runner executable.
func (r *Runner) Binary() string {
	return r.binary
}

// Timeout returns the per-invocation timeout, zero when disabled.
func (r *Runner) Timeout() time.Duration {
	return r.timeout
}

// ListModels runs `<binary> list` and returns the installed model names in
// the order the runner printed them.
func (r *Runner) ListModels(ctx context.Context) ([]string, error) {
	out, err := r.exec(ctx, listSubcommand)
	if err != nil {
		return nil, err
	}
	return ParseModelList(ansi.Strip(out)), nil
}

// Run sends query to model and returns the runner's combined output with
// control sequences removed.
func (r *Runner) Run(ctx context.Context, model, query string) (string, error) {
	out, err := r.exec(ctx, runSubcommand, model, query)
	if err != nil {
		return "", err
	}
	return ansi.Strip(out), nil
}

// exec runs the binary with args and captures combined stdout/stderr.
// The returned output is raw; callers decide whether to strip it.
func (r *Runner) exec(ctx context.Context, args ...string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.binary, args...)
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	data, err := cmd.CombinedOutput()
	if err == nil {
		return string(data), nil
	}

	return string(data), r.classify(ctx, err, string(data), args)
}

// classify maps an exec failure onto the error taxonomy.
func (r *Runner) classify(ctx context.Context, err error, output string, args []string) error {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return pulseerrors.NewNotFoundError(r.binary, err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return pulseerrors.NewTimeoutError(fmt.Sprintf("%s %s after %s", r.binary, args[0], r.timeout))
		}
		return ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return pulseerrors.NewExitError(exitErr.ExitCode(), output, args)
	}

	return fmt.Errorf("failed to execute %s: %w", r.binary, err)
}
