package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raghuenggcollege/campus-events/internal/model"
)

const regColumns = `id, event_id, user_id, status, registered_at, updated_at`

// RegistrationRepository handles persistence for registrations.
// The zero value is not usable; construct with NewRegistrationRepository.
type RegistrationRepository struct {
	pool *pgxpool.Pool
	q    querier
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{pool: db, q: db}
}

// InTx runs fn against a transaction-backed view of the repository.
// Nested calls reuse the enclosing transaction.
func (r *RegistrationRepository) InTx(ctx context.Context, fn func(RegistrationStore) error) error {
	if r.pool == nil {
		return fn(r)
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(&RegistrationRepository{q: tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Create inserts a new registration. The unique (event_id, user_id)
// constraint is the last line of defense against duplicate rows.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	_, err := r.q.Exec(ctx,
		`INSERT INTO registrations (id, event_id, user_id, status, registered_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		reg.ID, reg.EventID, reg.UserID, reg.Status, reg.RegisteredAt, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// GetByID returns a single registration or ErrNotFound.
func (r *RegistrationRepository) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = $1`, id))
}

// GetByUserAndEvent returns the unique registration for a (user, event)
// pair, or ErrNotFound.
func (r *RegistrationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID))
}

// Update persists the status and updated_at of an existing registration.
func (r *RegistrationRepository) Update(ctx context.Context, reg *model.Registration) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE registrations SET status = $2, updated_at = $3 WHERE id = $1`,
		reg.ID, reg.Status, reg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByEventAndStatus returns the number of registrations for an event
// in the given status.
func (r *RegistrationRepository) CountByEventAndStatus(ctx context.Context, eventID string, status model.Status) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1 AND status = $2`,
		eventID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// OldestWaitlisted returns the waitlisted registration that has waited
// longest, ties broken by id ascending, or ErrNotFound when none wait.
func (r *RegistrationRepository) OldestWaitlisted(ctx context.Context, eventID string) (*model.Registration, error) {
	return r.scanOne(r.q.QueryRow(ctx,
		`SELECT `+regColumns+`
		 FROM registrations
		 WHERE event_id = $1 AND status = $2
		 ORDER BY registered_at ASC, id ASC
		 LIMIT 1`,
		eventID, model.StatusWaitlist))
}

// ListByUser returns all registrations belonging to a user, any status,
// oldest first.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT `+regColumns+`
		 FROM registrations
		 WHERE user_id = $1
		 ORDER BY registered_at ASC, id ASC`,
		userID)
}

// ListByEvent returns all registrations for an event, oldest first.
func (r *RegistrationRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return r.list(ctx,
		`SELECT `+regColumns+`
		 FROM registrations
		 WHERE event_id = $1
		 ORDER BY registered_at ASC, id ASC`,
		eventID)
}

func (r *RegistrationRepository) list(ctx context.Context, sql string, args ...any) ([]model.Registration, error) {
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		var reg model.Registration
		if err := rows.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, reg)
	}
	return regs, rows.Err()
}

func (r *RegistrationRepository) scanOne(row pgx.Row) (*model.Registration, error) {
	var reg model.Registration
	err := row.Scan(&reg.ID, &reg.EventID, &reg.UserID, &reg.Status, &reg.RegisteredAt, &reg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return &reg, nil
}
