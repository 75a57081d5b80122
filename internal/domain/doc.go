// Package domain cleans and aggregates water-depth sensor logs.
//
// # Data Source
//
// The sensor is an ultrasonic distance probe mounted above a water surface.
// Readings are logged to ThingSpeak and exported as CSV with one row per
// reading. The pipeline uses two columns: the creation timestamp and the
// depth in centimetres.
//
// Time format:
//
//	"YYYY-MM-DD HH:MM:SS UTC", e.g. "2020-03-14 07:45:12 UTC".
//	Every parsed instant is UTC; no local-time conversion happens anywhere.
//
// Failure modes of the probe:
//
//	Echoes from the tank wall read far shallower than the true level, and
//	bounced pulses read far deeper. The true level changes slowly compared to
//	the sampling cadence, so both show up as isolated jumps away from the
//	recent minimum.
//
// # Cleaning
//
// A reading is kept when it lies within a fixed tolerance (default 10cm) of
// the rolling minimum of the last N readings (default 50). Readings without N
// readings of history have no reference and are dropped. See [FilterOutliers].
//
// # Aggregation
//
// Kept readings are grouped by UTC calendar day and averaged. Days with no
// kept readings produce no entry. The last day becomes the trend marker
// labelled "last = 42.17cm @ 2020-03-14". See [AggregateDaily] and
// [LatestMarker].
package domain
