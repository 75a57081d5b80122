package domain

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// SeriesSummary describes a whole series: its mean with a population
// standard deviation band, and its extremes.
type SeriesSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize returns nil for an empty series.
func Summarize(series Series) (*SeriesSummary, error) {
	if len(series) == 0 {
		return nil, nil
	}
	data := stats.Float64Data(series.Values())

	mean, err := stats.Mean(data)
	if err != nil {
		return nil, fmt.Errorf("summary mean: %w", err)
	}
	std, err := stats.StandardDeviationPopulation(data)
	if err != nil {
		return nil, fmt.Errorf("summary std dev: %w", err)
	}
	lo, err := stats.Min(data)
	if err != nil {
		return nil, fmt.Errorf("summary min: %w", err)
	}
	hi, err := stats.Max(data)
	if err != nil {
		return nil, fmt.Errorf("summary max: %w", err)
	}

	return &SeriesSummary{Count: len(series), Mean: mean, StdDev: std, Min: lo, Max: hi}, nil
}

// ValueRange is a closed display interval for a chart's value axis.
type ValueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// DisplayRange pads the extremes of values by 10% and clamps the lower bound
// at zero. It returns nil for no values.
func DisplayRange(values []float64) *ValueRange {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return &ValueRange{Low: max(0, lo-lo*0.1), High: hi + hi*0.1}
}
