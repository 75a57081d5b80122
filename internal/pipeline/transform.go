package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/depth-log-etl/internal/domain"
)

// DepthTransformer implements Transformer with the domain cleaning and
// aggregation functions.
type DepthTransformer struct {
	settings domain.ReportSettings
	logger   *slog.Logger
}

// NewTransformer creates a DepthTransformer with fixed report settings.
func NewTransformer(settings domain.ReportSettings, logger *slog.Logger) *DepthTransformer {
	return &DepthTransformer{settings: settings, logger: logger}
}

func (t *DepthTransformer) Transform(_ context.Context, raw domain.RawLog) (*domain.Report, error) {
	series, err := domain.ParseRows(raw.Rows)
	if err != nil {
		return nil, err
	}

	if len(series) < t.settings.Filter.WindowSize {
		t.logger.Warn("fewer samples than the rolling window; every sample will be dropped",
			"source", raw.Source,
			"samples", len(series),
			"window_size", t.settings.Filter.WindowSize,
		)
	}

	t.logger.Info("generating report", "source", raw.Source, "samples", len(series))
	return domain.BuildReport(raw.Source, series, t.settings)
}
