package domain

import "time"

// Metric is one point of the time-series table, keyed by
// (date, measurement, organization). Metrics are never deleted; recomputing
// the same day overwrites the value.
type Metric struct {
	Date         time.Time `db:"date"`
	Measurement  string    `db:"measurement"`
	Organization *string   `db:"organization"`
	Value        *float64  `db:"value"`
}
