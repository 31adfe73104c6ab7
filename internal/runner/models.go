package runner

import (
	"context"
	"log/slog"
	"strings"

	pulseerrors "github.com/diogo/pulse/internal/errors"
)

// minModelColumns is the number of whitespace-separated columns a listing row
// needs before its first column is taken as a model name (NAME ID SIZE MODIFIED).
const minModelColumns = 4

// ModelLister lists installed models.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// ParseModelList extracts model names from the tabular output of the list
// subcommand. The first line is a header. Rows with fewer than four columns
// are skipped. Order is preserved and duplicates are kept.
func ParseModelList(output string) []string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) <= 1 {
		return []string{}
	}

	models := []string{}
	for _, line := range lines[1:] {
		fields := strings.Fields(line)
		if len(fields) >= minModelColumns {
			models = append(models, fields[0])
		}
	}
	return models
}

// InstalledModels lists models and never fails: any error is reported to
// logger and an empty slice is returned.
func InstalledModels(ctx context.Context, lister ModelLister, logger *slog.Logger) []string {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	models, err := lister.ListModels(ctx)
	switch {
	case err == nil:
		if len(models) == 0 {
			logger.Info("no models found")
		} else {
			logger.Debug("installed models", "models", models)
		}
		return models
	case pulseerrors.IsNotFound(err):
		logger.Error("runner not found", "error", err)
	case pulseerrors.IsExitError(err):
		out, _ := pulseerrors.GetExitOutput(err)
		logger.Error("error fetching models", "code", pulseerrors.GetExitCode(err), "output", strings.TrimSpace(out))
	default:
		logger.Error("unexpected error listing models", "error", err)
	}
	return []string{}
}
