// Package holiday provides the holiday reference calendar consumed by
// the day classifier.
package holiday

import (
	"time"
)

// Holiday is one non-working calendar date. Static reference data;
// synchronization never mutates it.
type Holiday struct {
	ID    int64     `db:"id" json:"id"`
	Day   time.Time `db:"day" json:"day"`
	Label string    `db:"label" json:"label"`
}
