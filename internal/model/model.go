// Package model defines the core domain types for the campus events system.
package model

import "time"

// Status is the lifecycle state of a registration.
type Status string

const (
	// StatusConfirmed means the registration holds a seat within capacity.
	StatusConfirmed Status = "CONFIRMED"
	// StatusWaitlist means no seat was available at registration time;
	// waitlisted registrations are promoted in registration-time order.
	StatusWaitlist Status = "WAITLIST"
	// StatusCancelled means the seat was relinquished. A cancelled
	// registration can be re-activated by a later register call.
	StatusCancelled Status = "CANCELLED"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusConfirmed, StatusWaitlist, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the registration currently occupies a seat or a
// waitlist position. At most one active registration may exist per
// (user, event) pair.
func (s Status) Active() bool {
	return s == StatusConfirmed || s == StatusWaitlist
}

// Event represents a bookable event created by an organizer.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Registration represents a user's registration for an event.
// Exactly one row exists per (user, event) pair; status transitions
// mutate the row in place rather than creating new rows.
type Registration struct {
	ID           string    `json:"id"`
	EventID      string    `json:"event_id"`
	UserID       string    `json:"user_id"`
	Status       Status    `json:"status"`
	RegisteredAt time.Time `json:"registered_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CreateEventRequest is the payload for creating a new event.
type CreateEventRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Venue       string    `json:"venue"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    int       `json:"capacity"`
}

// UpdateEventRequest carries the full replacement state for an event,
// mirroring CreateEventRequest.
type UpdateEventRequest = CreateEventRequest

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
