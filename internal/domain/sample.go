package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// RawRow is one (timestamp, value) pair as read from the sensor log, before
// any parsing. Line is the 1-based source line, used in error messages.
type RawRow struct {
	Line      int
	Timestamp string
	Value     string
}

// Sample is a single depth reading in centimetres at a UTC instant.
type Sample struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Series is an ordered sequence of samples. Order is file order, which is
// assumed to be chronological and is never re-sorted.
type Series []Sample

// Values returns the sample values in series order.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i := range s {
		out[i] = s[i].Value
	}
	return out
}

// NullFloat is a float64 that may be undefined, in the style of
// sql.NullFloat64. Rolling statistics use it for positions without enough
// history; an undefined value never satisfies a band test.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Some returns a defined NullFloat.
func Some(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

// Within reports whether v lies in the closed band [n-tol, n+tol].
// It is always false when n is undefined.
func (n NullFloat) Within(v, tol float64) bool {
	if !n.Valid {
		return false
	}
	return v >= n.Float64-tol && v <= n.Float64+tol
}

func (n NullFloat) String() string {
	if !n.Valid {
		return "undefined"
	}
	return fmt.Sprintf("%g", n.Float64)
}

// MarshalJSON encodes an undefined value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON decodes null as an undefined value.
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decode nullable float: %w", err)
	}
	*n = Some(v)
	return nil
}

// RawLog is a sensor log as handed over by a reader: the rows in file order,
// header first, and a name identifying where they came from.
type RawLog struct {
	Source string
	Rows   []RawRow
}
