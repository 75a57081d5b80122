package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/depth-log-etl/internal/domain"
	"github.com/couchcryptid/depth-log-etl/internal/observability"
)

// Extractor reads a complete sensor log.
type Extractor interface {
	ExtractRows(ctx context.Context) (domain.RawLog, error)
}

// Transformer turns a raw log into a report.
type Transformer interface {
	Transform(ctx context.Context, log domain.RawLog) (*domain.Report, error)
}

// Loader delivers a finished report to a destination.
type Loader interface {
	Name() string
	LoadReport(ctx context.Context, report *domain.Report) error
}

const (
	defaultInitialBackoff = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
)

// Pipeline orchestrates one extract-transform-load run.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []Loader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	latest      atomic.Pointer[domain.Report]

	loadAttempts   int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLoadAttempts sets how many times each loader is tried before the run fails.
func WithLoadAttempts(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.loadAttempts = n
		}
	}
}

// WithBackoff overrides the retry backoff between load attempts.
func WithBackoff(initial, maxBackoff time.Duration) Option {
	return func(p *Pipeline) {
		p.initialBackoff = initial
		p.maxBackoff = maxBackoff
	}
}

// New creates a Pipeline with the given stages and observability.
func New(e Extractor, t Transformer, loaders []Loader, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor:      e,
		transformer:    t,
		loaders:        loaders,
		logger:         logger,
		metrics:        metrics,
		loadAttempts:   1,
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a run has completed successfully.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no report has been produced yet")
	}
	return nil
}

// LatestReport returns the report of the last successful run, or nil.
func (p *Pipeline) LatestReport() *domain.Report {
	return p.latest.Load()
}

// Run extracts the log, builds the report and hands it to every loader in
// order. Any error aborts the run; a malformed row means no loader is called.
func (p *Pipeline) Run(ctx context.Context) (*domain.Report, error) {
	start := time.Now()
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	raw, err := p.extractor.ExtractRows(ctx)
	if err != nil {
		p.countFormatError(err)
		return nil, fmt.Errorf("extract: %w", err)
	}

	report, err := p.transformer.Transform(ctx, raw)
	if err != nil {
		p.countFormatError(err)
		return nil, fmt.Errorf("transform %s: %w", raw.Source, err)
	}

	for _, l := range p.loaders {
		if err := p.load(ctx, l, report); err != nil {
			return nil, err
		}
	}

	// Report gauges only describe published reports.
	p.metrics.SamplesParsed.Add(float64(len(report.Raw)))
	p.metrics.SamplesDropped.Add(float64(report.Dropped()))
	p.metrics.DailyAggregates.Set(float64(len(report.Daily)))
	if report.Marker != nil {
		p.metrics.LatestDepth.Set(report.Marker.Value)
	}
	p.latest.Store(report)
	p.ready.Store(true)
	p.metrics.LastRunSuccess.SetToCurrentTime()
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.logger.Info("pipeline run complete",
		"source", report.Source,
		"samples", len(report.Raw),
		"cleaned", len(report.Cleaned),
		"days", len(report.Daily),
		"duration", time.Since(start),
	)
	return report, nil
}

// load tries a loader up to loadAttempts times with exponential backoff.
func (p *Pipeline) load(ctx context.Context, l Loader, report *domain.Report) error {
	backoff := p.initialBackoff
	var err error
	for attempt := 1; attempt <= p.loadAttempts; attempt++ {
		if err = l.LoadReport(ctx, report); err == nil {
			return nil
		}
		p.metrics.LoadErrors.WithLabelValues(l.Name()).Inc()
		p.logger.Warn("load report failed", "loader", l.Name(), "attempt", attempt, "error", err)

		if attempt == p.loadAttempts || ctx.Err() != nil {
			break
		}
		if !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, p.maxBackoff)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("load %s: %w", l.Name(), ctx.Err())
	}
	return fmt.Errorf("load %s: %w", l.Name(), err)
}

func (p *Pipeline) countFormatError(err error) {
	var fe *domain.FormatError
	if errors.As(err, &fe) {
		p.metrics.FormatErrors.Inc()
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
