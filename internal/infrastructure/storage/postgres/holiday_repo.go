package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"fieldstock/internal/core/apperror"
	"fieldstock/internal/domain/holiday"
)

const holidayTable = "holidays"

// Compile-time check.
var _ holiday.Repository = (*HolidayRepo)(nil)

// HolidayRepo is the PostgreSQL implementation of holiday.Repository.
type HolidayRepo struct {
	tx   *TxManager
	cols []string
}

// NewHolidayRepo creates a holiday repository.
func NewHolidayRepo(tx *TxManager) *HolidayRepo {
	return &HolidayRepo{
		tx:   tx,
		cols: ExtractDBColumns[holiday.Holiday](),
	}
}

func (r *HolidayRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// List returns all holidays ordered by date.
func (r *HolidayRepo) List(ctx context.Context) ([]holiday.Holiday, error) {
	q := r.builder().
		Select(r.cols...).
		From(holidayTable).
		OrderBy("day")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []holiday.Holiday
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return out, nil
}

// Create inserts a holiday; the date is unique.
func (r *HolidayRepo) Create(ctx context.Context, h *holiday.Holiday) error {
	q := r.builder().
		Insert(holidayTable).
		Columns("day", "label").
		Values(h.Day, h.Label).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&h.ID); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate(holidayTable, "day", h.Day.Format("2006-01-02")).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// DeleteByDay removes the holiday on the given date.
func (r *HolidayRepo) DeleteByDay(ctx context.Context, day time.Time) error {
	q := r.builder().
		Delete(holidayTable).
		Where(squirrel.Eq{"day": day})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(holidayTable, day.Format("2006-01-02"))
	}
	return nil
}
