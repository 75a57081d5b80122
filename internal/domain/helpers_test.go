package domain

import (
	"time"
)

var testStart = time.Date(2020, time.March, 14, 0, 0, 0, 0, time.UTC)

// seriesEvery builds a series starting at testStart with one sample per step.
func seriesEvery(step time.Duration, values ...float64) Series {
	s := make(Series, len(values))
	for i, v := range values {
		s[i] = Sample{Time: testStart.Add(time.Duration(i) * step), Value: v}
	}
	return s
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}
