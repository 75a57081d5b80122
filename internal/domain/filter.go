package domain

import "math"

const (
	// DefaultWindowSize is the number of samples in the rolling-minimum
	// reference window. Larger windows give a steadier reference but react
	// more slowly to genuine level shifts.
	DefaultWindowSize = 50

	// DefaultToleranceCM is the permitted distance (cm) from the rolling
	// minimum. Larger values keep more noise; smaller values may discard
	// genuine rapid changes.
	DefaultToleranceCM = 10.0
)

// FilterConfig parameterizes the outlier filter.
type FilterConfig struct {
	WindowSize int     `json:"window_size"`
	Tolerance  float64 `json:"tolerance_cm"`
}

// DefaultFilterConfig returns the documented defaults.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{WindowSize: DefaultWindowSize, Tolerance: DefaultToleranceCM}
}

// Validate checks the window size and tolerance.
func (c FilterConfig) Validate() error {
	if c.WindowSize < 1 {
		return ErrInvalidWindow
	}
	if c.Tolerance < 0 || math.IsNaN(c.Tolerance) || math.IsInf(c.Tolerance, 0) {
		return ErrInvalidTolerance
	}
	return nil
}

// FilterOutliers keeps the samples whose value lies within
// [rollingMin-tolerance, rollingMin+tolerance] of the rolling minimum over
// cfg.WindowSize samples. Samples without a full window of history have no
// reference and are dropped, so the first WindowSize-1 samples never survive.
// The result is an order-preserving subsequence of series.
func FilterOutliers(series Series, cfg FilterConfig) (Series, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mins, err := RollingMin(series.Values(), cfg.WindowSize)
	if err != nil {
		return nil, err
	}

	cleaned := make(Series, 0, len(series))
	for i, s := range series {
		if mins[i].Within(s.Value, cfg.Tolerance) {
			cleaned = append(cleaned, s)
		}
	}
	return cleaned, nil
}
