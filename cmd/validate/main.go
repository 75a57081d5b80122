// Command validate re-runs the cleaning core over a sensor log and checks a
// previously written report against it. Every stage is recomputed
// independently (naive rolling minimum, explicit band test, per-day grouping)
// so a regression in the optimized code paths shows up as a mismatch.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -log data/mock/feeds.csv \
//	  -report graphs/report.json
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/couchcryptid/depth-log-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/depth-log-etl/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrorsShown caps the detail printed per failed phase.
const maxErrorsShown = 20

func main() {
	logPath := flag.String("log", "", "path to the sensor log CSV")
	reportPath := flag.String("report", "", "path to the report JSON")
	tsCol := flag.Int("timestamp-column", 0, "CSV column holding the timestamp")
	valCol := flag.Int("value-column", 2, "CSV column holding the depth value")
	flag.Parse()

	if *logPath == "" || *reportPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*logPath, *reportPath, *tsCol, *valCol); code != 0 {
		os.Exit(code)
	}
}

func run(logPath, reportPath string, tsCol, valCol int) int {
	fmt.Println("=== Depth Report Validation ===")
	fmt.Println()

	series, err := loadSeries(logPath, tsCol, valCol)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load sensor log: %v\n", err)
		return 1
	}

	report, err := csvfile.ReadReport(reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load report: %v\n", err)
		return 1
	}
	if err := report.Settings.Filter.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: report settings: %v\n", err)
		return 1
	}

	mins := naiveRollingMin(series.Values(), report.Settings.Filter.WindowSize)

	phases := []*phase{
		validateRawSeries(series, report),
		validateRollingMin(series, report.Settings.Filter.WindowSize, mins),
		validateCleaned(series, report, mins),
		validateDaily(report),
		validateMarker(report),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Samples: %d raw, %d cleaned, %d days (window=%d, tolerance=%gcm)\n",
		len(series), len(report.Cleaned), len(report.Daily),
		report.Settings.Filter.WindowSize, report.Settings.Filter.Tolerance)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrorsShown {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrorsShown)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadSeries(path string, tsCol, valCol int) (domain.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := csvfile.ReadRows(f, tsCol, valCol)
	if err != nil {
		return nil, err
	}
	return domain.ParseRows(rows)
}

// naiveRollingMin is the O(n·w) reference for the rolling minimum. NaN marks
// positions without a full window.
func naiveRollingMin(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i < window-1 {
			out[i] = math.NaN()
			continue
		}
		m := values[i-window+1]
		for _, v := range values[i-window+2 : i+1] {
			m = math.Min(m, v)
		}
		out[i] = m
	}
	return out
}

// ── Phase: raw series ──

func validateRawSeries(series domain.Series, report *domain.Report) *phase {
	p := &phase{name: "Report raw series matches sensor log"}

	if len(report.Raw) != len(series) {
		p.errorf("raw length: report=%d log=%d", len(report.Raw), len(series))
		return p
	}
	for i := range series {
		if !sampleEq(series[i], report.Raw[i]) {
			p.errorf("raw[%d]: report=%v log=%v", i, report.Raw[i], series[i])
		}
	}

	rolling, err := domain.RollingMean(series.Values(), report.Settings.DisplayWindow)
	if err != nil {
		p.errorf("display rolling mean: %v", err)
		return p
	}
	if len(rolling) != len(report.RollingMean) {
		p.errorf("rolling_mean length: report=%d expected=%d", len(report.RollingMean), len(rolling))
		return p
	}
	for i := range rolling {
		got := report.RollingMean[i]
		if got.Valid != rolling[i].Valid || (got.Valid && !floatEq(got.Float64, rolling[i].Float64)) {
			p.errorf("rolling_mean[%d]: report=%s expected=%s", i, got, rolling[i])
		}
	}

	stds := naiveRollingStdDev(series.Values(), report.Settings.DisplayWindow)
	if len(stds) != len(report.RollingStdDev) {
		p.errorf("rolling_std_dev length: report=%d expected=%d", len(report.RollingStdDev), len(stds))
		return p
	}
	for i, want := range stds {
		got := report.RollingStdDev[i]
		switch {
		case math.IsNaN(want) && got.Valid:
			p.errorf("rolling_std_dev[%d]: defined (%g) without enough history", i, got.Float64)
		case !math.IsNaN(want) && (!got.Valid || math.Abs(got.Float64-want) > 1e-6*math.Max(1, want)):
			p.errorf("rolling_std_dev[%d]: report=%s expected=%g", i, got, want)
		}
	}
	return p
}

// naiveRollingStdDev is the two-pass sample standard deviation of each full
// window. NaN marks positions without one, and every position for a window of 1.
func naiveRollingStdDev(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if window < 2 || i < window-1 {
			out[i] = math.NaN()
			continue
		}
		w := values[i-window+1 : i+1]
		var mean float64
		for _, v := range w {
			mean += v
		}
		mean /= float64(window)
		var ss float64
		for _, v := range w {
			ss += (v - mean) * (v - mean)
		}
		out[i] = math.Sqrt(ss / float64(window-1))
	}
	return out
}

// ── Phase: rolling minimum ──

func validateRollingMin(series domain.Series, window int, naive []float64) *phase {
	p := &phase{name: "Rolling minimum matches naive window"}

	mins, err := domain.RollingMin(series.Values(), window)
	if err != nil {
		p.errorf("rolling min: %v", err)
		return p
	}
	for i := range naive {
		want := naive[i]
		switch {
		case math.IsNaN(want) && mins[i].Valid:
			p.errorf("min[%d]: defined (%g) before a full window", i, mins[i].Float64)
		case !math.IsNaN(want) && !mins[i].Valid:
			p.errorf("min[%d]: undefined, want %g", i, want)
		case !math.IsNaN(want) && mins[i].Float64 != want:
			p.errorf("min[%d]: got %g, want %g", i, mins[i].Float64, want)
		}
	}
	return p
}

// ── Phase: cleaned series ──

func validateCleaned(series domain.Series, report *domain.Report, mins []float64) *phase {
	p := &phase{name: "Cleaned series subset, prefix and band"}
	cfg := report.Settings.Filter

	if !isSubsequence(report.Cleaned, series) {
		p.errorf("cleaned series is not an order-preserving subsequence of the raw series")
	}

	prefix := min(cfg.WindowSize-1, len(series))
	if !isSubsequence(report.Cleaned, series[prefix:]) {
		p.errorf("cleaned series uses samples from the first %d readings", prefix)
	}

	var want domain.Series
	for i, s := range series {
		if math.IsNaN(mins[i]) {
			continue
		}
		if s.Value >= mins[i]-cfg.Tolerance && s.Value <= mins[i]+cfg.Tolerance {
			want = append(want, s)
		}
	}
	if len(want) != len(report.Cleaned) {
		p.errorf("cleaned length: report=%d expected=%d", len(report.Cleaned), len(want))
		return p
	}
	for i := range want {
		if !sampleEq(want[i], report.Cleaned[i]) {
			p.errorf("cleaned[%d]: report=%v expected=%v", i, report.Cleaned[i], want[i])
		}
	}
	return p
}

func isSubsequence(sub, full domain.Series) bool {
	j := 0
	for i := 0; i < len(full) && j < len(sub); i++ {
		if sampleEq(full[i], sub[j]) {
			j++
		}
	}
	return j == len(sub)
}

// ── Phase: daily aggregates ──

func validateDaily(report *domain.Report) *phase {
	p := &phase{name: "Daily aggregates partition cleaned series"}

	type group struct {
		sum   float64
		count int
	}
	groups := map[domain.Day]*group{}
	for _, s := range report.Cleaned {
		d := domain.DayOf(s.Time)
		g, ok := groups[d]
		if !ok {
			g = &group{}
			groups[d] = g
		}
		g.sum += s.Value
		g.count++
	}

	total := 0
	for i, agg := range report.Daily {
		total += agg.Count
		if i > 0 && !report.Daily[i-1].Day.Before(agg.Day) {
			p.errorf("daily[%d]: %s not after %s", i, agg.Day, report.Daily[i-1].Day)
		}
		g, ok := groups[agg.Day]
		if !ok {
			p.errorf("daily[%d]: %s has no cleaned samples", i, agg.Day)
			continue
		}
		if g.count != agg.Count {
			p.errorf("daily %s: count=%d expected=%d", agg.Day, agg.Count, g.count)
		}
		if want := g.sum / float64(g.count); !floatEq(want, agg.Mean) {
			p.errorf("daily %s: mean=%g expected=%g", agg.Day, agg.Mean, want)
		}
	}
	if len(groups) != len(report.Daily) {
		p.errorf("days: report=%d expected=%d", len(report.Daily), len(groups))
	}
	if total != len(report.Cleaned) {
		p.errorf("group sizes sum to %d, cleaned has %d samples", total, len(report.Cleaned))
	}
	return p
}

// ── Phase: trend marker ──

func validateMarker(report *domain.Report) *phase {
	p := &phase{name: "Trend marker matches latest day"}

	if len(report.Daily) == 0 {
		if report.Marker != nil {
			p.errorf("marker present without daily aggregates: %q", report.Marker.Label)
		}
		return p
	}
	if report.Marker == nil {
		p.errorf("marker missing with %d daily aggregates", len(report.Daily))
		return p
	}

	last := report.Daily[len(report.Daily)-1]
	if !floatEq(report.Marker.Value, last.Mean) {
		p.errorf("marker value=%g, last daily mean=%g", report.Marker.Value, last.Mean)
	}
	if report.Marker.Day != last.Day || !report.Marker.Time.Equal(last.Day.Time()) {
		p.errorf("marker day=%s time=%s, last day=%s", report.Marker.Day, report.Marker.Time, last.Day)
	}
	if want := domain.LatestMarker(report.Daily).Label; report.Marker.Label != want {
		p.errorf("marker label=%q, want %q", report.Marker.Label, want)
	}
	return p
}

// ── Helpers ──

func sampleEq(a, b domain.Sample) bool {
	return a.Time.Equal(b.Time) && a.Value == b.Value
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
