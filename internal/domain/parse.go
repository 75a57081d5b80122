package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the fixed timestamp format of the sensor log, e.g.
// "2020-03-14 07:45:12 UTC". The trailing "UTC" is literal text.
const TimestampLayout = "2006-01-02 15:04:05 UTC"

var (
	errNonFinite      = errors.New("value is not finite")
	errTimestampShape = errors.New("does not match " + TimestampLayout)
	errNumberSyntax   = errors.New("hex or underscore digits are not accepted")
)

// ParseRows converts raw log rows into a Series. The first row is the header
// and is discarded. Every instant is tagged UTC and every value is a finite
// float64. The first malformed row aborts parsing with a *FormatError and a
// nil Series.
func ParseRows(rows []RawRow) (Series, error) {
	if len(rows) <= 1 {
		return Series{}, nil
	}

	records := rows[1:]
	series := make(Series, 0, len(records))
	for i, row := range records {
		line := row.Line
		if line == 0 {
			line = i + 2
		}

		ts, err := ParseTimestamp(row.Timestamp)
		if err != nil {
			return nil, &FormatError{Line: line, Field: "timestamp", Value: row.Timestamp, Err: err}
		}
		v, err := parseValue(row.Value)
		if err != nil {
			return nil, &FormatError{Line: line, Field: "value", Value: row.Value, Err: err}
		}
		series = append(series, Sample{Time: ts, Value: v})
	}
	return series, nil
}

// ParseTimestamp parses a log timestamp into a UTC instant. The input must
// match TimestampLayout exactly; a fractional-seconds suffix such as ".999"
// or ",5" is an error.
func ParseTimestamp(s string) (time.Time, error) {
	if len(s) != len(TimestampLayout) {
		return time.Time{}, errTimestampShape
	}
	t, err := time.Parse(TimestampLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	if t.Format(TimestampLayout) != s {
		return time.Time{}, errTimestampShape
	}
	return t.UTC(), nil
}

// parseValue accepts decimal and exponent notation with surrounding
// whitespace. Hex floats and digit separators are rejected.
func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "xX_") {
		return 0, errNumberSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}
