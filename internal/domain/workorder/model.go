// Package workorder provides the work-order entity mirrored from the
// external scheduling feed.
package workorder

import (
	"time"

	"fieldstock/internal/domain/technician"
)

// Status codes used by the external feed.
const (
	StatusPending    = 1
	StatusFinalized  = 2
	StatusInProgress = 3
)

// ClientInfo is the client metadata block carried on each order.
// All fields are opaque pass-through from the feed.
type ClientInfo struct {
	InternalCode *string `db:"client_internal_code" json:"clientInternalCode,omitempty"`
	ClientID     *string `db:"client_id" json:"clientId,omitempty"`
	Company      *string `db:"client_company" json:"clientCompany,omitempty"`
	TaxID        *string `db:"client_tax_id" json:"clientTaxId,omitempty"`
	Address      *string `db:"client_address" json:"clientAddress,omitempty"`
	Province     *string `db:"client_province" json:"clientProvince,omitempty"`
	City         *string `db:"client_city" json:"clientCity,omitempty"`
	Country      *string `db:"client_country" json:"clientCountry,omitempty"`
	Phone        *string `db:"client_phone" json:"clientPhone,omitempty"`
	Email        *string `db:"client_email" json:"clientEmail,omitempty"`
	ERPID        *string `db:"client_erp_id" json:"clientErpId,omitempty"`
}

// WorkOrder is one technician dispatch record. The external id is the
// sole deduplication key and is immutable once persisted; only finalized
// orders are ever stored.
type WorkOrder struct {
	ID int64 `db:"id" json:"id"`

	// ExternalID is the immutable feed identifier.
	ExternalID string `db:"external_id" json:"externalId"`

	Number     *int `db:"number" json:"number,omitempty"`
	FiscalYear *int `db:"fiscal_year" json:"fiscalYear,omitempty"`

	// Date is the nominal order date reported by the feed.
	Date time.Time `db:"order_date" json:"date"`

	// StartedAt/EndedAt bound the work interval the overtime split is
	// computed from. Always set for finalized orders.
	StartedAt *time.Time `db:"started_at" json:"startedAt,omitempty"`
	EndedAt   *time.Time `db:"ended_at" json:"endedAt,omitempty"`

	// Description is the requested-work free text.
	Description string  `db:"description" json:"description"`
	Notes       *string `db:"notes" json:"notes,omitempty"`

	Status   int  `db:"status" json:"status"`
	Signed   bool `db:"signed" json:"signed"`
	Archived bool `db:"archived" json:"archived"`

	ClientInfo

	ProjectID *string `db:"project_id" json:"projectId,omitempty"`
	ERPID     *string `db:"erp_id" json:"erpId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`

	// Technicians assigned to the order. Loaded separately; not a column.
	Technicians []technician.Technician `db:"-" json:"technicians,omitempty"`
}

// HasInterval reports whether both interval bounds are present.
func (w *WorkOrder) HasInterval() bool {
	return w.StartedAt != nil && w.EndedAt != nil
}
