// Package sync reconciles the external dispatch feed with local
// storage: it pulls finalized work orders, resolves their technicians,
// and keeps one overtime record per (order, technician) pair.
package sync

import (
	"context"
	"encoding/json"
	"time"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/core/tx"
	"fieldstock/internal/domain/holiday"
	"fieldstock/internal/domain/overtime"
	"fieldstock/internal/domain/technician"
	"fieldstock/internal/domain/workcal"
	"fieldstock/internal/domain/workorder"
	"fieldstock/internal/sync/feed"
	"fieldstock/pkg/logger"
)

// FeedClient is the slice of the feed client the orchestrator needs.
type FeedClient interface {
	FetchAll(ctx context.Context) ([]feed.RawOrder, error)
}

// SnapshotStore archives the raw payload of a completed fetch.
// Archiving is best effort; a failure never fails the run.
type SnapshotStore interface {
	Save(ctx context.Context, payload []byte, orderCount int) error
}

// Stats summarizes one synchronization run.
type Stats struct {
	NewOrders        int `json:"newOrders"`
	UpdatedOrders    int `json:"updatedOrders"`
	NewTechnicians   int `json:"newTechnicians"`
	OvertimeComputed int `json:"overtimeComputed"`
	Errors           int `json:"errors"`
}

// Orchestrator runs the fetch-resolve-persist cycle. Each order is
// processed in its own transaction so one bad document cannot poison
// the batch.
type Orchestrator struct {
	feed      FeedClient
	orders    workorder.Repository
	records   overtime.Repository
	resolver  *technician.Resolver
	holidays  *holiday.Service
	txManager tx.Manager
	archive   SnapshotStore
	log       *logger.Logger
}

// NewOrchestrator creates a sync orchestrator. archive may be nil.
func NewOrchestrator(
	feedClient FeedClient,
	orders workorder.Repository,
	records overtime.Repository,
	resolver *technician.Resolver,
	holidays *holiday.Service,
	txManager tx.Manager,
	archive SnapshotStore,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		feed:      feedClient,
		orders:    orders,
		records:   records,
		resolver:  resolver,
		holidays:  holidays,
		txManager: txManager,
		archive:   archive,
		log:       log.WithComponent("sync"),
	}
}

// RunOnce executes a full synchronization cycle and returns its stats.
// A fetch failure is degraded to a counted error and the partial batch
// is still processed; only a calendar load failure aborts the run.
func (o *Orchestrator) RunOnce(ctx context.Context) (*Stats, error) {
	log := o.log.WithContext(ctx)
	started := time.Now()
	stats := &Stats{}

	raw, err := o.feed.FetchAll(ctx)
	if err != nil {
		log.Warnw("feed fetch incomplete, processing partial batch",
			"fetched", len(raw), "error", err)
		stats.Errors++
	}

	cal, err := o.holidays.Calendar(ctx)
	if err != nil {
		return nil, err
	}

	for i := range raw {
		order := &raw[i]
		if order.Status != workorder.StatusFinalized {
			continue
		}
		err := o.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return o.processOrder(ctx, order, cal, stats)
		})
		if err != nil {
			log.Warnw("order sync failed", "external_id", order.ID, "error", err)
			stats.Errors++
		}
	}

	o.archiveBatch(ctx, raw)

	log.Infow("sync run complete",
		"duration", time.Since(started).String(),
		"fetched", len(raw),
		"new_orders", stats.NewOrders,
		"updated_orders", stats.UpdatedOrders,
		"new_technicians", stats.NewTechnicians,
		"overtime_computed", stats.OvertimeComputed,
		"errors", stats.Errors,
	)
	return stats, nil
}

// processOrder reconciles a single finalized feed document. Runs
// inside its own transaction.
func (o *Orchestrator) processOrder(ctx context.Context, raw *feed.RawOrder, cal workcal.Calendar, stats *Stats) error {
	if raw.ID == "" {
		return apperror.NewValidation("order document has no id")
	}
	if raw.StartedAt == "" || raw.EndedAt == "" {
		return apperror.NewMissingInterval(raw.ID)
	}
	startedAt, err := feed.ParseTime(raw.StartedAt)
	if err != nil {
		return apperror.NewValidation("unparseable start timestamp").WithDetail("value", raw.StartedAt)
	}
	endedAt, err := feed.ParseTime(raw.EndedAt)
	if err != nil {
		return apperror.NewValidation("unparseable end timestamp").WithDetail("value", raw.EndedAt)
	}
	if len(raw.Technicians) == 0 {
		return apperror.NewValidation("order document has no technicians")
	}

	techIDs, err := o.resolveTechnicians(ctx, raw.Technicians, stats)
	if err != nil {
		return err
	}

	existing, err := o.orders.FindByExternalID(ctx, raw.ID)
	switch {
	case apperror.IsNotFound(err):
		return o.createOrder(ctx, raw, startedAt, endedAt, techIDs, cal, stats)
	case err != nil:
		return err
	}

	intervalChanged := existing.EndedAt == nil || !existing.EndedAt.Equal(endedAt) ||
		existing.StartedAt == nil || !existing.StartedAt.Equal(startedAt)
	if intervalChanged {
		if err := o.orders.UpdateInterval(ctx, existing.ID, startedAt, endedAt); err != nil {
			return err
		}
		// The interval moved, so all derived records are stale. The
		// assignment set is replaced rather than merged to match the
		// feed exactly.
		if err := o.orders.ReplaceAssignments(ctx, existing.ID, techIDs); err != nil {
			return err
		}
		if err := o.records.DeleteByOrder(ctx, existing.ID); err != nil {
			return err
		}
		stats.UpdatedOrders++
	} else {
		// Unchanged interval: late-added technicians are attached
		// additively, nothing is detached.
		if err := o.orders.EnsureAssignments(ctx, existing.ID, techIDs); err != nil {
			return err
		}
	}

	return o.ensureRecords(ctx, existing.ID, techIDs, startedAt, endedAt, cal, stats)
}

func (o *Orchestrator) createOrder(ctx context.Context, raw *feed.RawOrder, startedAt, endedAt time.Time, techIDs []int64, cal workcal.Calendar, stats *Stats) error {
	order := mapOrder(raw, startedAt, endedAt)
	if err := o.orders.Create(ctx, order); err != nil {
		return err
	}
	if err := o.orders.EnsureAssignments(ctx, order.ID, techIDs); err != nil {
		return err
	}
	stats.NewOrders++

	return o.ensureRecords(ctx, order.ID, techIDs, startedAt, endedAt, cal, stats)
}

// ensureRecords creates the missing overtime record for every
// technician of the order. The pair existence check runs on every sync
// pass regardless of whether the order looked changed, so a technician
// attached after the first pass still gets a record.
func (o *Orchestrator) ensureRecords(ctx context.Context, orderID int64, techIDs []int64, startedAt, endedAt time.Time, cal workcal.Calendar, stats *Stats) error {
	breakdown := workcal.Compute(startedAt, endedAt, cal)

	for _, techID := range techIDs {
		exists, err := o.records.ExistsForPair(ctx, orderID, techID)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		rec := overtime.NewRecord(orderID, techID, startedAt, endedAt, breakdown, true)
		if err := o.records.Create(ctx, rec); err != nil {
			return err
		}
		stats.OvertimeComputed++
	}
	return nil
}

func (o *Orchestrator) resolveTechnicians(ctx context.Context, raws []feed.RawTechnician, stats *Stats) ([]int64, error) {
	ids := make([]int64, 0, len(raws))
	for _, rt := range raws {
		// The feed omits the account type on some documents; treat
		// those as regular accounts like the feed's own UI does.
		accountType := 1
		if rt.AccountType != nil {
			accountType = *rt.AccountType
		}
		tech, created, err := o.resolver.Resolve(ctx, technician.Sighting{
			Account:     rt.Account,
			DisplayName: rt.DisplayName,
			AccountType: accountType,
		})
		if err != nil {
			return nil, err
		}
		if created {
			stats.NewTechnicians++
		}
		ids = append(ids, tech.ID)
	}
	return ids, nil
}

func (o *Orchestrator) archiveBatch(ctx context.Context, raw []feed.RawOrder) {
	if o.archive == nil || len(raw) == 0 {
		return
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		o.log.WithContext(ctx).Warnw("snapshot marshal failed", "error", err)
		return
	}
	if err := o.archive.Save(ctx, payload, len(raw)); err != nil {
		o.log.WithContext(ctx).Warnw("snapshot archive failed", "error", err)
	}
}

func mapOrder(raw *feed.RawOrder, startedAt, endedAt time.Time) *workorder.WorkOrder {
	orderDate := startedAt
	if raw.Date != "" {
		if d, err := feed.ParseTime(raw.Date); err == nil {
			orderDate = d
		}
	}

	return &workorder.WorkOrder{
		ExternalID:  raw.ID,
		Number:      raw.Number,
		FiscalYear:  raw.FiscalYear,
		Date:        orderDate,
		StartedAt:   &startedAt,
		EndedAt:     &endedAt,
		Description: raw.Description,
		Notes:       raw.Notes,
		Status:      raw.Status,
		Signed:      raw.Signed,
		Archived:    raw.Archived,
		ClientInfo: workorder.ClientInfo{
			InternalCode: raw.ClientInternalCode,
			ClientID:     raw.ClientID,
			Company:      raw.ClientCompany,
			TaxID:        raw.ClientTaxID,
			Address:      raw.ClientAddress,
			Province:     raw.ClientProvince,
			City:         raw.ClientCity,
			Country:      raw.ClientCountry,
			Phone:        raw.ClientPhone,
			Email:        raw.ClientEmail,
			ERPID:        raw.ClientERPID,
		},
		ProjectID: raw.ProjectID,
		ERPID:     raw.ERPID,
	}
}
