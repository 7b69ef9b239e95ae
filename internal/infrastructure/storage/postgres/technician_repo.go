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
	"fieldstock/internal/domain/technician"
)

const technicianTable = "technicians"

// Compile-time check.
var _ technician.Repository = (*TechnicianRepo)(nil)

// TechnicianRepo is the PostgreSQL implementation of technician.Repository.
type TechnicianRepo struct {
	tx   *TxManager
	cols []string
}

// NewTechnicianRepo creates a technician repository.
func NewTechnicianRepo(tx *TxManager) *TechnicianRepo {
	return &TechnicianRepo{
		tx:   tx,
		cols: ExtractDBColumns[technician.Technician](),
	}
}

func (r *TechnicianRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *TechnicianRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(r.cols...).From(technicianTable)
}

func (r *TechnicianRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, notFoundID any) (*technician.Technician, error) {
	sql, args, err := q.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var t technician.Technician
	if err := pgxscan.Get(ctx, r.tx.GetQuerier(ctx), &t, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound(technicianTable, notFoundID)
		}
		return nil, apperror.NewDatabase(err)
	}
	return &t, nil
}

// GetByID retrieves a technician by primary key.
func (r *TechnicianRepo) GetByID(ctx context.Context, id int64) (*technician.Technician, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"id": id}), id)
}

// FindByEmail retrieves a technician by exact email match.
func (r *TechnicianRepo) FindByEmail(ctx context.Context, email string) (*technician.Technician, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"email": email}), email)
}

// FindByBadge retrieves a technician by exact badge match.
func (r *TechnicianRepo) FindByBadge(ctx context.Context, badge string) (*technician.Technician, error) {
	return r.getOne(ctx, r.baseSelect().Where(squirrel.Eq{"badge": badge}), badge)
}

// BadgeExists reports whether any technician carries the badge.
func (r *TechnicianRepo) BadgeExists(ctx context.Context, badge string) (bool, error) {
	q := r.builder().
		Select("1").
		From(technicianTable).
		Where(squirrel.Eq{"badge": badge}).
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

// Create inserts a new technician and populates its ID.
func (r *TechnicianRepo) Create(ctx context.Context, t *technician.Technician) error {
	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	data := StructToMap(t)
	delete(data, "id")

	q := r.builder().
		Insert(technicianTable).
		SetMap(data).
		Suffix("RETURNING id")

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if err := r.tx.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate(technicianTable, "badge", t.Badge).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	return nil
}

// Update refreshes the mutable fields of an existing technician.
func (r *TechnicianRepo) Update(ctx context.Context, t *technician.Technician) error {
	t.UpdatedAt = time.Now()

	data := StructToMap(t)
	delete(data, "id")
	delete(data, "created_at")

	q := r.builder().
		Update(technicianTable).
		SetMap(data).
		Where(squirrel.Eq{"id": t.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.tx.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.NewDuplicate(technicianTable, "badge", t.Badge).WithCause(err)
		}
		return apperror.NewDatabase(err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(technicianTable, t.ID)
	}
	return nil
}

// List returns technicians ordered by name, optionally active only.
func (r *TechnicianRepo) List(ctx context.Context, activeOnly bool) ([]technician.Technician, error) {
	q := r.baseSelect().OrderBy("last_name", "first_name", "id")
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []technician.Technician
	if err := pgxscan.Select(ctx, r.tx.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, apperror.NewDatabase(err)
	}
	return out, nil
}
