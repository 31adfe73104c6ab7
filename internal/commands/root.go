// Package commands provides CLI commands for pulse.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/pulse/internal/config"
	"github.com/diogo/pulse/internal/logging"
	"github.com/diogo/pulse/internal/render"
	"github.com/diogo/pulse/internal/runner"
	"github.com/diogo/pulse/internal/tui"
)

var (
	// Global flags
	runnerFlag   string
	modelFlag    string
	markdownFlag bool
	verboseFlag  bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command, which starts the interactive interface.
func NewRootCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pulse",
		Short: "Terminal front-end for a local model runner",
		Long: `pulse is a small terminal interface for a locally installed model runner
(ollama by default). Pick an installed model, type a question, and read the
answer without leaving the terminal.

Examples:
  pulse                               Start the interface
  pulse -m llama3:latest              Preselect a model
  pulse --runner /opt/ollama/ollama   Use a specific runner binary
  pulse models                        List installed models
  pulse query "What is Go?"           Ask once and print the answer
  cat prompt.txt | pulse query        Read the query from stdin`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "pulse %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runInteractive(commandContext(cmd), deps.orDefault(), resolveConfig(cmd))
		},
	}

	cmd.PersistentFlags().StringVarP(&runnerFlag, "runner", "r", "", "Runner binary (default from config, or ollama)")
	cmd.PersistentFlags().StringVarP(&modelFlag, "model", "m", "", "Model to use (e.g., llama3:latest)")
	cmd.PersistentFlags().BoolVar(&markdownFlag, "markdown", false, "Render responses as markdown")
	cmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Write debug entries to the log file")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewModelsCmd(deps))
	cmd.AddCommand(NewQueryCmd(deps))

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(nil)

// Execute runs the root command
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, tui.FormatError(err))
		os.Exit(1)
	}
}

// runInteractive lists models once, then hands control to the TUI.
func runInteractive(ctx context.Context, deps *Dependencies, cfg config.Config) error {
	logger, closer := logging.New(cfg.LogFile, cfg.Verbose)
	defer closer.Close()

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		tui.UpdateTheme()
	}

	// Cancelled on exit so an in-flight runner process is killed with the UI
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := deps.NewRunner(cfg)
	models := runner.InstalledModels(ctx, r, logger)
	logger.Info("starting interface", "runner", r.Binary(), "models", len(models))

	return deps.RunTUI(ctx, r, tui.Options{
		Models:          models,
		DefaultModel:    cfg.DefaultModel,
		Markdown:        cfg.RenderMarkdown,
		RenderOptions:   render.OptionsFromConfig(cfg.Markdown),
		CopyToClipboard: cfg.CopyToClipboard,
		Logger:          logger,
	})
}

// resolveConfig loads the config file and applies flag overrides.
func resolveConfig(cmd *cobra.Command) config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, using defaults\n", err)
	}

	if runnerFlag != "" {
		cfg.Runner = runnerFlag
	}
	if modelFlag != "" {
		cfg.DefaultModel = modelFlag
	}
	if flagChanged(cmd, "markdown") {
		cfg.RenderMarkdown = markdownFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
	return cfg
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Changed
	}
	return false
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
