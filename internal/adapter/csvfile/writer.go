package csvfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/couchcryptid/depth-log-etl/internal/domain"
)

// ReportWriter writes reports as indented JSON to a file, replacing it
// atomically. It implements pipeline.Loader.
type ReportWriter struct {
	path   string
	logger *slog.Logger
}

// NewReportWriter creates a ReportWriter for path. Parent directories are
// created on first write.
func NewReportWriter(path string, logger *slog.Logger) *ReportWriter {
	return &ReportWriter{path: path, logger: logger}
}

func (w *ReportWriter) Name() string { return "file" }

// LoadReport serializes the report and renames it into place.
func (w *ReportWriter) LoadReport(ctx context.Context, report *domain.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize report: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}

	w.logger.Info("report written", "path", w.path, "days", len(report.Daily))
	return nil
}

// ReadReport loads a report previously written by ReportWriter.
func ReadReport(path string) (*domain.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r domain.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}
