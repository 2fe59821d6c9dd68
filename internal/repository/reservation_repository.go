package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mfrancon/roomreserve/internal/model"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

const reservationColumns = `id, room_id, user_id, title, starts_at, ends_at, recurring, recurring_until, recurring_group_id, cancelled_at, created_at, updated_at`

// ReservationTx is the unit of work for admitting a booking. It is opened by
// BeginRoomTx, which also takes the room's exclusive lock; the lock is
// released when the transaction commits or rolls back, so it spans exactly
// the validate-then-insert critical section.
type ReservationTx interface {
	OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	CountFutureActive(ctx context.Context, userID int64, after time.Time) (int, error)
	Insert(ctx context.Context, res *model.Reservation) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BeginRoomTx opens a transaction and serializes on the room via a
// transaction-scoped advisory lock. Two concurrent admissions for the same
// room cannot both pass their overlap checks; unrelated rooms never contend.
func (r *ReservationRepository) BeginRoomTx(ctx context.Context, roomID int64) (ReservationTx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, roomID); err != nil {
		_ = tx.Rollback(ctx)
		return nil, fmt.Errorf("acquire room lock: %w", err)
	}

	return &reservationTx{tx: tx}, nil
}

// GetByID returns the reservation, or nil when it does not exist.
func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return res, nil
}

// List returns every reservation ordered by start time.
func (r *ReservationRepository) List(ctx context.Context) ([]*model.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations ORDER BY starts_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, res)
	}

	return reservations, nil
}

// Cancel stamps the cancellation time and returns the updated row, or nil
// when the reservation does not exist.
func (r *ReservationRepository) Cancel(ctx context.Context, id int64, at time.Time) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET cancelled_at = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reservationColumns

	res, err := scanReservation(r.pool.QueryRow(ctx, query, id, at))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("cancel reservation: %w", err)
	}

	return res, nil
}

// OverlapExists reports whether any active reservation on the room overlaps
// [start, end). Half-open semantics: a reservation ending exactly when
// another starts does not overlap. This variant reads committed state
// without the room lock and backs the availability path.
func (r *ReservationRepository) OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	return overlapExists(ctx, r.pool, roomID, start, end)
}

type reservationTx struct {
	tx pgx.Tx
}

func (t *reservationTx) OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error) {
	return overlapExists(ctx, t.tx, roomID, start, end)
}

func (t *reservationTx) CountFutureActive(ctx context.Context, userID int64, after time.Time) (int, error) {
	return countFutureActive(ctx, t.tx, userID, after)
}

// Insert stages the reservation inside the transaction and fills its
// generated fields. Nothing is durable until Commit.
func (t *reservationTx) Insert(ctx context.Context, res *model.Reservation) error {
	query := `
		INSERT INTO reservations (room_id, user_id, title, starts_at, ends_at, recurring, recurring_until, recurring_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(
		ctx, query,
		res.RoomID,
		res.UserID,
		res.Title,
		res.StartsAt,
		res.EndsAt,
		res.Recurring,
		res.RecurringUntil,
		res.RecurringGroupID,
	).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}

	return nil
}

func (t *reservationTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

func (t *reservationTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func overlapExists(ctx context.Context, q querier, roomID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE room_id = $1
			  AND cancelled_at IS NULL
			  AND starts_at < $3
			  AND ends_at > $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, roomID, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlap: %w", err)
	}
	return exists, nil
}

func countFutureActive(ctx context.Context, q querier, userID int64, after time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM reservations
		WHERE user_id = $1
		  AND cancelled_at IS NULL
		  AND starts_at > $2
	`

	var count int
	if err := q.QueryRow(ctx, query, userID, after).Scan(&count); err != nil {
		return 0, fmt.Errorf("count future reservations: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.RoomID,
		&res.UserID,
		&res.Title,
		&res.StartsAt,
		&res.EndsAt,
		&res.Recurring,
		&res.RecurringUntil,
		&res.RecurringGroupID,
		&res.CancelledAt,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
