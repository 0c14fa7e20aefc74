package booking

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant

	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.WorkStart,
		&t.WorkEnd,
		&t.WorkingDays,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	return &t, nil
}

func scanResource(row pgx.Row) (*Resource, error) {
	var r Resource

	err := row.Scan(
		&r.ID,
		&r.TenantID,
		&r.Name,
		&r.WorkStart,
		&r.WorkEnd,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrResourceNotFound
		}
		return nil, err
	}

	return &r, nil
}

func scanService(row pgx.Row) (*Service, error) {
	var s Service

	err := row.Scan(
		&s.ID,
		&s.TenantID,
		&s.Name,
		&s.DurationMinutes,
		&s.PriceCents,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}

	return &s, nil
}

func (d *PgDirectory) GetTenant(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, name, work_start, work_end, working_days, created_at, updated_at
		FROM tenants
		WHERE id = $1
	`, id)
	return scanTenant(row)
}

func (d *PgDirectory) GetResource(ctx context.Context, id uuid.UUID) (*Resource, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, work_start, work_end, active, created_at, updated_at
		FROM resources
		WHERE id = $1
	`, id)
	return scanResource(row)
}

func (d *PgDirectory) ListActiveResources(ctx context.Context, tenantID uuid.UUID) ([]Resource, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, tenant_id, name, work_start, work_end, active, created_at, updated_at
		FROM resources
		WHERE tenant_id = $1
		  AND active
		ORDER BY id
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (d *PgDirectory) GetService(ctx context.Context, id uuid.UUID) (*Service, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT id, tenant_id, name, duration_minutes, price_cents, created_at, updated_at
		FROM services
		WHERE id = $1
	`, id)
	return scanService(row)
}

var _ Directory = (*PgDirectory)(nil)
