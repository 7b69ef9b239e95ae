package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/workorder"
)

const (
	workOrderTable  = "work_orders"
	assignmentTable = "work_order_technicians"
)

// Compile-time check.
var _ workorder.Repository = (*WorkOrderRepo)(nil)

// WorkOrderRepo is the PostgreSQL implementation of workorder.Repository.
type WorkOrderRepo struct {
	tx   *TxManager
	cols []string
}

// NewWorkOrderRepo creates a work order repository.
func NewWorkOrderRepo(tx *TxManager) *WorkOrderRepo {
	return &WorkOrderRepo{
		tx:   tx,
		cols: ExtractDBColumns[workorder.WorkOrder](),
	}
}

func (r *WorkOrderRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *WorkOrderRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(workOrderTable)
}

func (r *WorkOrderRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, notFoundID any) (*workorder.WorkOrder, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var w workorder.WorkOrder
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &w, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(workOrderTable, notFoundID)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &w, nil
}

// GetByID retrieves a work order by primary key.
func (r *WorkOrderRepo) GetByID(ctx context.Context, id int64) (*workorder.WorkOrder, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// FindByExternalID retrieves a work order by its feed identifier.
func (r *WorkOrderRepo) FindByExternalID(ctx context.Context, externalID string) (*workorder.WorkOrder, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"external_id": externalID}), externalID)
}

// Create inserts a new work order and populates its ID.
func (r *WorkOrderRepo) Create(ctx context.Context, w *workorder.WorkOrder) error {
	now := time.Now()
	w.CreatedAt = now
	w.UpdatedAt = now

	data := StructToMap(w)
	delete(data, "id")

	q := r.builder().
		Insert(workOrderTable).
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&w.ID); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate(workOrderTable, "external_id", w.ExternalID).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// Update rewrites the mutable columns of an existing order.
func (r *WorkOrderRepo) Update(ctx context.Context, w *workorder.WorkOrder) error {
	w.UpdatedAt = time.Now()

	data := StructToMap(w)
	delete(data, "id")
	delete(data, "external_id")
	delete(data, "created_at")

	q := r.builder().
		Update(workOrderTable).
		SetMap(data).
		Where(squirrel.Eq{"id": w.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(workOrderTable, w.ID)
	}
	return nil
}

// UpdateInterval persists a changed work interval.
func (r *WorkOrderRepo) UpdateInterval(ctx context.Context, id int64, startedAt, endedAt time.Time) error {
	q := r.builder().
		Update(workOrderTable).
		Set("started_at", startedAt).
		Set("ended_at", endedAt).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"id": id})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(workOrderTable, id)
	}
	return nil
}

// EnsureAssignments attaches technicians to the order, keeping any
// existing assignments.
func (r *WorkOrderRepo) EnsureAssignments(ctx context.Context, orderID int64, technicianIDs []int64) error {
	if len(technicianIDs) == 0 {
		return nil
	}

	q := r.builder().
		Insert(assignmentTable).
		Columns("work_order_id", "technician_id").
		Suffix("ON CONFLICT (work_order_id, technician_id) DO NOTHING")
	for _, techID := range technicianIDs {
		q = q.Values(orderID, techID)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NewNotFound(workOrderTable, orderID).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// ReplaceAssignments rewrites the order's technician set.
func (r *WorkOrderRepo) ReplaceAssignments(ctx context.Context, orderID int64, technicianIDs []int64) error {
	del := r.builder().
		Delete(assignmentTable).
		Where(squirrel.Eq{"work_order_id": orderID})

	sql, args, err := del.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}

	return r.EnsureAssignments(ctx, orderID, technicianIDs)
}

// AssignedTechnicianIDs lists technicians attached to the order.
func (r *WorkOrderRepo) AssignedTechnicianIDs(ctx context.Context, orderID int64) ([]int64, error) {
	q := r.builder().
		Select("technician_id").
		From(assignmentTable).
		Where(squirrel.Eq{"work_order_id": orderID}).
		OrderBy("technician_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []int64
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return out, nil
}
