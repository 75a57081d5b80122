package domain

import (
	"fmt"
	"time"
)

// TrendMarker annotates the most recent daily aggregate for display.
type TrendMarker struct {
	Value float64   `json:"value"`
	Time  time.Time `json:"time"`
	Day   Day       `json:"day"`
	Label string    `json:"label"`
}

// LatestMarker builds a marker from the last entry of daily, which must be
// sorted by day. It returns nil when daily is empty.
func LatestMarker(daily []DailyAggregate) *TrendMarker {
	if len(daily) == 0 {
		return nil
	}
	last := daily[len(daily)-1]
	return &TrendMarker{
		Value: last.Mean,
		Time:  last.Day.Time(),
		Day:   last.Day,
		Label: fmt.Sprintf("last = %.2fcm @ %s", last.Mean, last.Day),
	}
}
