package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/depth-log-etl/internal/adapter/csvfile"
	httpadapter "github.com/couchcryptid/depth-log-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/depth-log-etl/internal/adapter/kafka"
	"github.com/couchcryptid/depth-log-etl/internal/config"
	"github.com/couchcryptid/depth-log-etl/internal/domain"
	"github.com/couchcryptid/depth-log-etl/internal/observability"
	"github.com/couchcryptid/depth-log-etl/internal/pipeline"
	"golang.org/x/sync/errgroup"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] <sensor-log.csv>\n", os.Args[0])
		flag.PrintDefaults()
	}
	out := flag.String("out", "", "report JSON path (overrides REPORT_PATH)")
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *out != "" {
		cfg.ReportPath = *out
	}

	if code := run(cfg, flag.Arg(0)); code != 0 {
		os.Exit(code)
	}
}

// run produces one report from logPath and, when SERVE is set, keeps the HTTP
// endpoints up until a signal arrives.
func run(cfg *config.Config, logPath string) int {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	var loaders []pipeline.Loader
	if cfg.ReportPath != "" {
		loaders = append(loaders, csvfile.NewReportWriter(cfg.ReportPath, logger))
	}
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		loaders = append(loaders, writer)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	reader := csvfile.NewReader(logPath, cfg.TimestampColumn, cfg.ValueColumn, logger)
	settings := domain.ReportSettings{
		Filter: domain.FilterConfig{
			WindowSize: cfg.RollingWindowSize,
			Tolerance:  cfg.OutlierToleranceCM,
		},
		DisplayWindow: cfg.DisplayRollingWindow,
	}
	transformer := pipeline.NewTransformer(settings, logger)

	p := pipeline.New(reader, transformer, loaders, logger, metrics,
		pipeline.WithLoadAttempts(cfg.LoadRetries))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	if cfg.Serve {
		srv := httpadapter.NewServer(cfg.HTTPAddr, p, p, logger)
		g.Go(func() error {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	exitCode := 0
	report, err := p.Run(gctx)
	switch {
	case err != nil:
		logger.Error("pipeline error", "error", err)
		exitCode = 1
		stop()
	case cfg.Serve:
		logger.Info("serving report until interrupted", "addr", cfg.HTTPAddr, "days", len(report.Daily))
	default:
		stop()
	}
	if err == nil && report.Marker != nil {
		logger.Info("latest daily mean", "label", report.Marker.Label, "dropped", report.Dropped())
	}

	if err := g.Wait(); err != nil {
		logger.Error("http server error", "error", err)
		exitCode = 1
	}
	logger.Info("shutting down")

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return exitCode
}
