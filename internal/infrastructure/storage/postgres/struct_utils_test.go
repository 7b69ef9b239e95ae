package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fieldstock/internal/domain/workorder"
)

func TestExtractDBColumns_RecursesEmbedded(t *testing.T) {
	cols := ExtractDBColumns[workorder.WorkOrder]()

	assert.Contains(t, cols, "id")
	assert.Contains(t, cols, "external_id")
	assert.Contains(t, cols, "started_at")
	// From the embedded ClientInfo block.
	assert.Contains(t, cols, "client_company")
	// Tagged "-", never a column.
	assert.NotContains(t, cols, "technicians")
}

func TestStructToMap(t *testing.T) {
	company := "Acme SL"
	start := time.Date(2025, 5, 5, 8, 0, 0, 0, time.UTC)
	order := workorder.WorkOrder{
		ID:          7,
		ExternalID:  "ext-7",
		StartedAt:   &start,
		Description: "pump overhaul",
		ClientInfo:  workorder.ClientInfo{Company: &company},
	}

	m := StructToMap(&order)

	assert.Equal(t, int64(7), m["id"])
	assert.Equal(t, "ext-7", m["external_id"])
	assert.Equal(t, &start, m["started_at"])
	assert.Equal(t, &company, m["client_company"])
	assert.NotContains(t, m, "technicians")
}

func TestStructToMap_NilPointer(t *testing.T) {
	var order *workorder.WorkOrder
	assert.Empty(t, StructToMap(order))
}
