package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgLedger struct {
	pool *pgxpool.Pool
}

func NewPgLedger(pool *pgxpool.Pool) *PgLedger {
	return &PgLedger{pool: pool}
}

const commitmentColumns = `
	id, tenant_id, resource_id, service_id, kind, status,
	start_at, end_at, hold_expires_at,
	customer_name, customer_phone, reason,
	created_at, updated_at`

func scanCommitment(row pgx.Row) (*Commitment, error) {
	var c Commitment

	err := row.Scan(
		&c.ID,
		&c.TenantID,
		&c.ResourceID,
		&c.ServiceID,
		&c.Kind,
		&c.Status,
		&c.StartAt,
		&c.EndAt,
		&c.HoldExpiresAt,
		&c.CustomerName,
		&c.CustomerPhone,
		&c.Reason,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommitmentNotFound
		}
		return nil, err
	}

	return &c, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ListActiveCommitments reads blocking commitments overlapping [windowStart,
// windowEnd) in one statement, which gives the snapshot semantics callers
// rely on: confirmed rows plus holds whose expiry is still after asOf.
func (r *PgLedger) ListActiveCommitments(ctx context.Context, resourceID uuid.UUID, windowStart, windowEnd, asOf time.Time) ([]Commitment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commitmentColumns+`
		FROM commitments
		WHERE resource_id = $1
		  AND start_at < $3
		  AND end_at > $2
		  AND (status = 'confirmed' OR (status = 'hold' AND hold_expires_at > $4))
		ORDER BY start_at
	`, resourceID, windowStart, windowEnd, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgLedger) InsertHold(ctx context.Context, hold Commitment) (*Commitment, error) {
	id := hold.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO commitments (
			id, tenant_id, resource_id, service_id, kind, status,
			start_at, end_at, hold_expires_at,
			customer_name, customer_phone, reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, 'booking', 'hold', $5, $6, $7, $8, $9, NULL, now(), now())
		RETURNING `+commitmentColumns+`
	`, id, hold.TenantID, hold.ResourceID, hold.ServiceID,
		hold.StartAt, hold.EndAt, hold.HoldExpiresAt,
		hold.CustomerName, hold.CustomerPhone)

	created, err := scanCommitment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWindow
		}
		return nil, err
	}
	return created, nil
}

func (r *PgLedger) GetCommitment(ctx context.Context, id uuid.UUID) (*Commitment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commitmentColumns+`
		FROM commitments
		WHERE id = $1
	`, id)
	return scanCommitment(row)
}

func (r *PgLedger) Transition(ctx context.Context, id uuid.UUID, from, to CommitmentStatus) (*Commitment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE commitments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+commitmentColumns+`
	`, id, to, from)

	return scanCommitment(row)
}

func (r *PgLedger) ExpireLapsedInWindow(ctx context.Context, resourceID uuid.UUID, windowStart, windowEnd, now time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE commitments
		SET status = 'expired',
		    updated_at = now()
		WHERE resource_id = $1
		  AND status = 'hold'
		  AND hold_expires_at <= $4
		  AND start_at < $3
		  AND end_at > $2
	`, resourceID, windowStart, windowEnd, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *PgLedger) FindLapsedHolds(ctx context.Context, now time.Time) ([]Commitment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commitmentColumns+`
		FROM commitments
		WHERE status = 'hold'
		  AND hold_expires_at IS NOT NULL
		  AND hold_expires_at < $1
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Commitment
	for rows.Next() {
		c, err := scanCommitment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// InsertTimeOff records a time-off block for a resource. Stored as a
// confirmed commitment so availability treats it like any other busy window.
func (r *PgLedger) InsertTimeOff(ctx context.Context, tenantID, resourceID uuid.UUID, startAt, endAt time.Time, reason *string) (*Commitment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO commitments (
			id, tenant_id, resource_id, service_id, kind, status,
			start_at, end_at, hold_expires_at,
			customer_name, customer_phone, reason,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, NULL, 'timeoff', 'confirmed', $4, $5, NULL, NULL, NULL, $6, now(), now())
		RETURNING `+commitmentColumns+`
	`, uuid.New(), tenantID, resourceID, startAt, endAt, reason)

	created, err := scanCommitment(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWindow
		}
		return nil, err
	}
	return created, nil
}

var _ Ledger = (*PgLedger)(nil)
