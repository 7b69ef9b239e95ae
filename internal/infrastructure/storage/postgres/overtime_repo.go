package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/overtime"
)

const overtimeTable = "overtime_records"

// Compile-time check.
var _ overtime.Repository = (*OvertimeRepo)(nil)

// OvertimeRepo is the PostgreSQL implementation of overtime.Repository.
type OvertimeRepo struct {
	tx   *TxManager
	cols []string
}

// NewOvertimeRepo creates an overtime record repository.
func NewOvertimeRepo(tx *TxManager) *OvertimeRepo {
	return &OvertimeRepo{
		tx:   tx,
		cols: ExtractDBColumns[overtime.Record](),
	}
}

func (r *OvertimeRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *OvertimeRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(overtimeTable)
}

// ExistsForPair reports whether a record already exists for the
// (work order, technician) pair.
func (r *OvertimeRepo) ExistsForPair(ctx context.Context, orderID, technicianID int64) (bool, error) {
	q := r.builder().
		Select("1").
		From(overtimeTable).
		Where(squirrel.Eq{"work_order_id": orderID, "technician_id": technicianID}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, apperror.NewDatabase(err)
	}
	return true, nil
}

// Create inserts a record and populates its ID.
func (r *OvertimeRepo) Create(ctx context.Context, rec *overtime.Record) error {
	rec.CreatedAt = time.Now()

	data := StructToMap(rec)
	delete(data, "id")

	q := r.builder().
		Insert(overtimeTable).
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&rec.ID); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate(overtimeTable, "work_order_id,technician_id",
				fmt.Sprintf("%d,%d", rec.WorkOrderID, rec.TechnicianID)).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// DeleteByOrder removes every record belonging to the order.
func (r *OvertimeRepo) DeleteByOrder(ctx context.Context, orderID int64) error {
	q := r.builder().
		Delete(overtimeTable).
		Where(squirrel.Eq{"work_order_id": orderID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(err)
	}
	return nil
}

// ListByOrder returns the order's records.
func (r *OvertimeRepo) ListByOrder(ctx context.Context, orderID int64) ([]overtime.Record, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"work_order_id": orderID}).
		OrderBy("technician_id")

	return r.list(ctx, q)
}

// ListByPeriod returns records with work dates in [from, to],
// optionally restricted to one technician.
func (r *OvertimeRepo) ListByPeriod(ctx context.Context, from, to time.Time, technicianID *int64) ([]overtime.Record, error) {
	q := r.baseSelect().
		Where(squirrel.GtOrEq{"work_date": from}).
		Where(squirrel.LtOrEq{"work_date": to}).
		OrderBy("work_date", "technician_id")

	if technicianID != nil {
		q = q.Where(squirrel.Eq{"technician_id": *technicianID})
	}

	return r.list(ctx, q)
}

func (r *OvertimeRepo) list(ctx context.Context, q squirrel.SelectBuilder) ([]overtime.Record, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []overtime.Record
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return out, nil
}
