// Package repository implements all database queries for the campus events
// system. It uses pgx directly (no ORM) for transparency and performance.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/raghuenggcollege/campus-events/internal/model"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// EventStore is the persistence contract for events.
type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, after time.Time) ([]model.Event, error)
	Update(ctx context.Context, event *model.Event) error
	Delete(ctx context.Context, id string) error
}

// RegistrationStore is the persistence contract for registrations.
//
// InTx runs fn against a transactional view of the store: every write fn
// performs commits atomically, or not at all if fn returns an error. The
// registration manager relies on this so a cancellation and its promotion
// never partially persist.
type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) error
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetByUserAndEvent(ctx context.Context, userID, eventID string) (*model.Registration, error)
	Update(ctx context.Context, reg *model.Registration) error
	CountByEventAndStatus(ctx context.Context, eventID string, status model.Status) (int, error)
	OldestWaitlisted(ctx context.Context, eventID string) (*model.Registration, error)
	ListByUser(ctx context.Context, userID string) ([]model.Registration, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error)
	InTx(ctx context.Context, fn func(RegistrationStore) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same query
// methods serve pooled and transactional access.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
