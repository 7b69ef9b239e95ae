// Package technician provides the technician reference entity and the
// resolver that maps raw feed payloads onto durable local identities.
package technician

import (
	"time"
)

// Technician is a field technician known to the system. Rows are created
// by the resolver on first sighting in the external feed and refreshed on
// later sightings; they are never deleted by synchronization.
type Technician struct {
	ID int64 `db:"id" json:"id"`

	FirstName string `db:"first_name" json:"firstName"`
	LastName  string `db:"last_name" json:"lastName"`

	// Badge is the unique internal personnel key. Derived from the email
	// local part when the feed provides an email, synthesized otherwise.
	Badge string `db:"badge" json:"badge"`

	// Email is the feed account identifier; globally unique when present
	// and the preferred deduplication key.
	Email *string `db:"email" json:"email,omitempty"`

	// AccountType is the feed's account-type code, pass-through.
	AccountType *int `db:"account_type" json:"accountType,omitempty"`

	Active bool `db:"active" json:"active"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// FullName returns the display name.
func (t *Technician) FullName() string {
	if t.LastName == "" {
		return t.FirstName
	}
	return t.FirstName + " " + t.LastName
}
