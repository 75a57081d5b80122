package domain

import (
	"fmt"
	"time"
)

// ReportSettings records the tuning constants a report was produced with.
type ReportSettings struct {
	Filter        FilterConfig `json:"filter"`
	DisplayWindow int          `json:"display_window"`
}

// DefaultReportSettings returns the documented defaults.
func DefaultReportSettings() ReportSettings {
	return ReportSettings{Filter: DefaultFilterConfig(), DisplayWindow: DefaultWindowSize}
}

// Report is everything a chart renderer needs: the raw series with its
// display overlays (rolling mean with a ±1 rolling std-dev band), the cleaned series, and the daily aggregates with the
// optional trend marker. Marker and the summaries are nil when there is
// nothing to show.
type Report struct {
	Source      string         `json:"source"`
	GeneratedAt time.Time      `json:"generated_at"`
	Settings    ReportSettings `json:"settings"`

	Raw           Series         `json:"raw"`
	RollingMean   []NullFloat    `json:"rolling_mean"`
	RollingStdDev []NullFloat    `json:"rolling_std_dev"`
	Summary       *SeriesSummary `json:"summary"`

	Cleaned      Series      `json:"cleaned"`
	CleanedRange *ValueRange `json:"cleaned_range"`

	Daily      []DailyAggregate `json:"daily"`
	DailyRange *ValueRange      `json:"daily_range"`
	Marker     *TrendMarker     `json:"marker"`
}

// Dropped returns how many raw samples the outlier filter discarded.
func (r *Report) Dropped() int {
	return len(r.Raw) - len(r.Cleaned)
}

// BuildReport runs the cleaning and aggregation stages over a parsed series.
func BuildReport(source string, raw Series, settings ReportSettings) (*Report, error) {
	rolling, err := Rolling(raw.Values(), settings.DisplayWindow)
	if err != nil {
		return nil, fmt.Errorf("display rolling stats: %w", err)
	}

	summary, err := Summarize(raw)
	if err != nil {
		return nil, err
	}

	cleaned, err := FilterOutliers(raw, settings.Filter)
	if err != nil {
		return nil, fmt.Errorf("filter outliers: %w", err)
	}

	daily := AggregateDaily(cleaned)
	dailyMeans := make([]float64, len(daily))
	for i := range daily {
		dailyMeans[i] = daily[i].Mean
	}

	return &Report{
		Source:        source,
		GeneratedAt:   clock.Now().UTC(),
		Settings:      settings,
		Raw:           raw,
		RollingMean:   rolling.Mean,
		RollingStdDev: rolling.StdDev,
		Summary:       summary,
		Cleaned:       cleaned,
		CleanedRange:  DisplayRange(cleaned.Values()),
		Daily:         daily,
		DailyRange:    DisplayRange(dailyMeans),
		Marker:        LatestMarker(daily),
	}, nil
}
