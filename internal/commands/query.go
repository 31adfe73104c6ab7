package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/pulse/internal/config"
	apperrors "github.com/diogo/pulse/internal/errors"
	"github.com/diogo/pulse/internal/logging"
	"github.com/diogo/pulse/internal/render"
	"github.com/diogo/pulse/internal/runner"
)

// NewQueryCmd creates the one-shot query command
func NewQueryCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "query [text]",
		Short: "Send a single query and print the response",
		Long: `Send one query to the runner and print its output.

The query is taken from the argument, or from stdin when stdin is not a
terminal. Without --model, the configured default model is used, then the
first installed model.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := readQuery(args, cmd.InOrStdin(), isTerminal(os.Stdin))
			if err != nil {
				return err
			}

			cfg := resolveConfig(cmd)
			logger, closer := logging.New(cfg.LogFile, cfg.Verbose)
			defer closer.Close()

			r := deps.orDefault().NewRunner(cfg)
			return runQuery(commandContext(cmd), r, query, cmd.OutOrStdout(), cmd.ErrOrStderr(), queryOptions{
				cfg:         cfg,
				logger:      logger,
				showSpinner: isTerminal(os.Stderr),
				width:       getTerminalWidth(),
			})
		},
	}
}

type queryOptions struct {
	cfg         config.Config
	logger      *slog.Logger
	showSpinner bool
	width       int
}

// readQuery returns the trimmed query from args or a piped stdin.
func readQuery(args []string, stdin io.Reader, stdinIsTerminal bool) (string, error) {
	var query string
	switch {
	case len(args) > 0:
		query = args[0]
	case !stdinIsTerminal && stdin != nil:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		query = string(data)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", apperrors.ErrEmptyQuery
	}
	return query, nil
}

// runQuery sends one query and writes the stripped response to out.
func runQuery(ctx context.Context, r ModelRunner, query string, out, errOut io.Writer, opts queryOptions) error {
	model := opts.cfg.DefaultModel
	if model == "" {
		if models := runner.InstalledModels(ctx, r, opts.logger); len(models) > 0 {
			model = models[0]
		}
	}
	if model == "" {
		return fmt.Errorf("no model selected and none installed; pass --model")
	}

	var act *activity
	if opts.showSpinner {
		act = startActivity(errOut, fmt.Sprintf("Asking %s", model))
	}

	if opts.logger != nil {
		opts.logger.Info("dispatching query", "model", model, "query_len", len(query))
	}
	output, err := r.Run(ctx, model, query)
	if err != nil {
		if act != nil {
			act.stop()
		}
		if opts.logger != nil {
			opts.logger.Error("query failed", "model", model, "error", err)
		}
		return err
	}
	if act != nil {
		act.done(model)
	}

	width := opts.width
	if width <= 0 {
		width = 80
	}
	text := render.Response(output, opts.cfg.RenderMarkdown, render.OptionsFromConfig(opts.cfg.Markdown).WithWidth(width))
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	_, err = io.WriteString(out, text)
	return err
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
