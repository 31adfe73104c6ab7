package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/diogo/pulse/internal/runner"
)

var modelsPlainFlag bool

// NewModelsCmd creates the models command
func NewModelsCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List installed models",
		Long: `List the models reported by the runner's list subcommand.

Rows with fewer than four columns are skipped, the same way the interactive
model selector builds its list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := deps.orDefault()
			r := d.NewRunner(resolveConfig(cmd))
			return listModels(commandContext(cmd), r, cmd.OutOrStdout(), modelsPlainFlag)
		},
	}
	cmd.Flags().BoolVarP(&modelsPlainFlag, "plain", "p", false, "Print one model name per line")
	return cmd
}

// listModels prints installed models. Unlike the interface, a listing
// failure is reported to the caller.
func listModels(ctx context.Context, lister runner.ModelLister, out io.Writer, plain bool) error {
	models, err := lister.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if plain {
		for _, name := range models {
			fmt.Fprintln(out, name)
		}
		return nil
	}

	if len(models) == 0 {
		fmt.Fprintln(out, "No models found.")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Model"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	for i, name := range models {
		table.Append([]string{fmt.Sprintf("%d", i+1), name})
	}
	table.Render()
	return nil
}
