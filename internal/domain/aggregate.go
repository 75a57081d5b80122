package domain

import (
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Day is a UTC calendar day.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the UTC calendar day of t.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{Year: y, Month: m, Day: d}
}

// Time returns midnight UTC at the start of the day.
func (d Day) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is an earlier day than o.
func (d Day) Before(o Day) bool {
	if d.Year != o.Year {
		return d.Year < o.Year
	}
	if d.Month != o.Month {
		return d.Month < o.Month
	}
	return d.Day < o.Day
}

func (d Day) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText encodes the day as YYYY-MM-DD.
func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a YYYY-MM-DD day.
func (d *Day) UnmarshalText(b []byte) error {
	t, err := time.Parse(time.DateOnly, string(b))
	if err != nil {
		return fmt.Errorf("decode day: %w", err)
	}
	*d = DayOf(t)
	return nil
}

// DailyAggregate is the mean of all cleaned samples on one calendar day.
type DailyAggregate struct {
	Day   Day     `json:"day"`
	Mean  float64 `json:"mean"`
	Count int     `json:"count"`
}

// AggregateDaily groups samples by UTC calendar day and reduces each group to
// its arithmetic mean. The result is sorted by day ascending and contains no
// entry for days without samples. An empty series yields an empty result.
func AggregateDaily(series Series) []DailyAggregate {
	groups := make(map[Day][]float64)
	for _, s := range series {
		d := DayOf(s.Time)
		groups[d] = append(groups[d], s.Value)
	}

	out := make([]DailyAggregate, 0, len(groups))
	for d, values := range groups {
		out = append(out, DailyAggregate{Day: d, Mean: stat.Mean(values, nil), Count: len(values)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}
