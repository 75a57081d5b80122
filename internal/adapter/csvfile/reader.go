package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/depth-log-etl/internal/domain"
)

var errMissingColumn = errors.New("column missing from row")

// Reader extracts timestamp/value rows from a sensor log CSV file.
// It implements pipeline.Extractor.
type Reader struct {
	path            string
	timestampColumn int
	valueColumn     int
	logger          *slog.Logger
}

// NewReader creates a Reader for the file at path, taking the timestamp and
// depth value from the given zero-based columns.
func NewReader(path string, timestampColumn, valueColumn int, logger *slog.Logger) *Reader {
	return &Reader{
		path:            path,
		timestampColumn: timestampColumn,
		valueColumn:     valueColumn,
		logger:          logger,
	}
}

// ExtractRows reads the whole file. The header row is returned as the first
// row; skipping it is the parser's job.
func (r *Reader) ExtractRows(ctx context.Context) (domain.RawLog, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawLog{}, err
	}
	r.logger.Info("reading data", "path", r.path)

	f, err := os.Open(r.path)
	if err != nil {
		return domain.RawLog{}, fmt.Errorf("open sensor log: %w", err)
	}
	defer f.Close()

	rows, err := ReadRows(f, r.timestampColumn, r.valueColumn)
	if err != nil {
		return domain.RawLog{}, err
	}
	r.logger.Debug("read sensor log", "path", r.path, "rows", len(rows))
	return domain.RawLog{Source: r.path, Rows: rows}, nil
}

// ReadRows reads every CSV record from src and projects it onto the
// timestamp and value columns. Rows too short to hold both columns are
// reported as *domain.FormatError.
func ReadRows(src io.Reader, timestampColumn, valueColumn int) ([]domain.RawRow, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []domain.RawRow
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if timestampColumn >= len(record) {
			return nil, &domain.FormatError{Line: line, Field: "timestamp", Err: errMissingColumn}
		}
		if valueColumn >= len(record) {
			return nil, &domain.FormatError{Line: line, Field: "value", Err: errMissingColumn}
		}
		rows = append(rows, domain.RawRow{
			Line:      line,
			Timestamp: record[timestampColumn],
			Value:     record[valueColumn],
		})
	}
	return rows, nil
}
