// Command genmock writes a synthetic ThingSpeak-style sensor log for fixtures
// and demos. Depth drifts slowly over the days, each reading carries gaussian
// noise, and a small fraction of readings are replaced by echo (too shallow)
// or bounce (too deep) spikes that the outlier filter is expected to remove.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data/mock/feeds.csv \
//	  -days 14 -per-day 96 -seed 42 -start 2023-05-01
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/couchcryptid/depth-log-etl/internal/domain"
)

// genConfig controls the shape of the generated log.
type genConfig struct {
	start     time.Time
	days      int
	perDay    int
	seed      uint64
	baseDepth float64 // cm at start
	drift     float64 // cm per day, negative when the level falls
	noise     float64 // std-dev of per-reading noise, cm
	spikeRate float64 // fraction of readings replaced by a spike
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated CSV")
	days := flag.Int("days", 14, "number of days to generate")
	perDay := flag.Int("per-day", 96, "readings per day")
	seed := flag.Uint64("seed", 1, "random seed")
	start := flag.String("start", "2023-05-01", "first day (YYYY-MM-DD, UTC)")
	spikeRate := flag.Float64("spike-rate", 0.03, "fraction of readings replaced by echo/bounce spikes")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *days < 1 || *perDay < 1 {
		return fmt.Errorf("-days and -per-day must be at least 1")
	}
	if *spikeRate < 0 || *spikeRate > 1 {
		return fmt.Errorf("-spike-rate must be within [0, 1]")
	}
	startDay, err := time.Parse(time.DateOnly, *start)
	if err != nil {
		return fmt.Errorf("parse -start: %w", err)
	}

	cfg := genConfig{
		start:     startDay,
		days:      *days,
		perDay:    *perDay,
		seed:      *seed,
		baseDepth: 150,
		drift:     -1.5,
		noise:     1.2,
		spikeRate: *spikeRate,
	}
	series, spikes := generate(cfg)

	if err := writeFile(*out, series); err != nil {
		return fmt.Errorf("writing sensor log: %w", err)
	}
	log.Printf("wrote %d readings (%d spikes) to %s", len(series), spikes, *out)

	return printStats(series)
}

// generate returns the synthetic series and how many readings were spiked.
func generate(cfg genConfig) (domain.Series, int) {
	rng := rand.New(rand.NewPCG(cfg.seed, cfg.seed^0x9e3779b97f4a7c15))
	step := 24 * time.Hour / time.Duration(cfg.perDay)

	series := make(domain.Series, 0, cfg.days*cfg.perDay)
	spikes := 0
	for i := range cfg.days * cfg.perDay {
		elapsed := time.Duration(i) * step
		dayFrac := elapsed.Hours() / 24

		// Slow drift with a small daily cycle.
		depth := cfg.baseDepth + cfg.drift*dayFrac + 2*math.Sin(2*math.Pi*dayFrac)
		depth += rng.NormFloat64() * cfg.noise

		if rng.Float64() < cfg.spikeRate {
			spikes++
			offset := 30 + rng.Float64()*60
			if rng.IntN(2) == 0 {
				depth -= offset
			} else {
				depth += offset
			}
		}

		series = append(series, domain.Sample{
			Time:  cfg.start.Add(elapsed),
			Value: math.Max(0, math.Round(depth*100)/100),
		})
	}
	return series, spikes
}

// writeCSV emits the ThingSpeak feed layout: created_at,entry_id,field1.
func writeCSV(w io.Writer, series domain.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"created_at", "entry_id", "field1"}); err != nil {
		return err
	}
	for i, s := range series {
		record := []string{
			s.Time.UTC().Format(domain.TimestampLayout),
			strconv.Itoa(i + 1),
			strconv.FormatFloat(s.Value, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeFile(path string, series domain.Series) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeCSV(f, series); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printStats runs the real report builder over the generated series so the
// numbers can be pasted into test assertions.
func printStats(series domain.Series) error {
	report, err := domain.BuildReport("genmock", series, domain.DefaultReportSettings())
	if err != nil {
		return err
	}

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Samples: %d\n", len(report.Raw))
	if report.Summary != nil {
		fmt.Printf("Raw: mean=%.2f std=%.2f min=%.2f max=%.2f\n",
			report.Summary.Mean, report.Summary.StdDev, report.Summary.Min, report.Summary.Max)
	}
	fmt.Printf("Cleaned: %d kept, %d dropped\n", len(report.Cleaned), report.Dropped())
	fmt.Printf("Days: %d\n", len(report.Daily))
	for _, d := range report.Daily {
		fmt.Printf("  %s mean=%.2f n=%d\n", d.Day, d.Mean, d.Count)
	}
	if report.Marker != nil {
		fmt.Printf("Marker: %s\n", report.Marker.Label)
	}
	return nil
}
