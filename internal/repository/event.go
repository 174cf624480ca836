package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/raghuenggcollege/campus-events/internal/model"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, description, venue, start_time, end_time, capacity, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		event.ID, event.Title, event.Description, event.Venue,
		event.StartTime, event.EndTime, event.Capacity, event.CreatedAt, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID returns a single event or ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.QueryRow(ctx,
		`SELECT id, title, description, venue, start_time, end_time, capacity, created_at, updated_at
		 FROM events WHERE id = $1`,
		id,
	).Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.StartTime, &e.EndTime, &e.Capacity, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return &e, nil
}

// ListUpcoming returns all events starting after the given time, soonest first.
func (r *EventRepository) ListUpcoming(ctx context.Context, after time.Time) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, description, venue, start_time, end_time, capacity, created_at, updated_at
		 FROM events
		 WHERE start_time > $1
		 ORDER BY start_time ASC`,
		after,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.Venue, &e.StartTime, &e.EndTime, &e.Capacity, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update replaces the mutable fields of an event.
func (r *EventRepository) Update(ctx context.Context, event *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, description = $3, venue = $4, start_time = $5, end_time = $6, capacity = $7, updated_at = $8
		 WHERE id = $1`,
		event.ID, event.Title, event.Description, event.Venue,
		event.StartTime, event.EndTime, event.Capacity, event.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an event. Its registrations go with it via the
// ON DELETE CASCADE constraint.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
