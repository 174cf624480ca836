// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer. It owns the registration
// state machine and the per-event concurrency scope that defends the
// confirmed-count invariant.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/raghuenggcollege/campus-events/internal/model"
	"github.com/raghuenggcollege/campus-events/internal/repository"
)

// EventLookup is the narrow read-only view of events the registration
// manager needs. Event CRUD itself is the event service's concern.
type EventLookup interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

// Notifier delivers user-facing notifications. Delivery is best-effort
// and asynchronous: implementations must not block the caller, and
// failures never propagate back.
type Notifier interface {
	Notify(userID, subject, body string)
}

// RegistrationService owns all registration-state transitions.
//
// Invariant: for any event, the number of CONFIRMED registrations never
// exceeds the event's capacity. The read-count/decide/persist sequence
// for one event is serialized behind a per-event lock, and each mutation
// sequence commits atomically through the store's transactional scope.
type RegistrationService struct {
	events        EventLookup
	registrations repository.RegistrationStore
	notifier      Notifier
	locks         *eventLocks

	clock func() time.Time
	newID func() string
}

// NewRegistrationService constructs a RegistrationService with its
// collaborators. lockTimeout bounds per-event lock acquisition; callers
// that hit it receive ErrBusy.
func NewRegistrationService(
	events EventLookup,
	registrations repository.RegistrationStore,
	notifier Notifier,
	lockTimeout time.Duration,
) *RegistrationService {
	return &RegistrationService{
		events:        events,
		registrations: registrations,
		notifier:      notifier,
		locks:         newEventLocks(lockTimeout),
		clock:         func() time.Time { return time.Now().UTC() },
		newID:         func() string { return uuid.New().String() },
	}
}

// Register registers a user for an event. The user is CONFIRMED while
// seats remain, WAITLIST otherwise. A CANCELLED registration for the
// same (user, event) pair is re-activated in place, its status
// recomputed against current capacity; an active one fails with
// ErrAlreadyRegistered.
func (s *RegistrationService) Register(ctx context.Context, eventID, userID string) (*model.Registration, error) {
	if eventID == "" {
		return nil, fmt.Errorf("event id is required")
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}

	release, err := s.locks.acquire(ctx, eventID)
	if err != nil {
		return nil, err
	}
	defer release()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	var out *model.Registration
	err = s.registrations.InTx(ctx, func(store repository.RegistrationStore) error {
		existing, err := store.GetByUserAndEvent(ctx, userID, eventID)
		switch {
		case err == nil:
			if existing.Status != model.StatusCancelled {
				return ErrAlreadyRegistered
			}
		case errors.Is(err, repository.ErrNotFound):
			existing = nil
		default:
			return fmt.Errorf("lookup registration: %w", err)
		}

		status, err := s.nextStatus(ctx, store, event)
		if err != nil {
			return err
		}

		now := s.clock()
		if existing != nil {
			// Re-activation mutates the existing row; the (user, event)
			// pair never grows a second one.
			existing.Status = status
			existing.UpdatedAt = now
			if err := store.Update(ctx, existing); err != nil {
				return err
			}
			out = existing
			return nil
		}

		reg := &model.Registration{
			ID:           s.newID(),
			EventID:      eventID,
			UserID:       userID,
			Status:       status,
			RegisteredAt: now,
			UpdatedAt:    now,
		}
		if err := store.Create(ctx, reg); err != nil {
			return err
		}
		out = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if out.Status == model.StatusConfirmed {
		s.notifyConfirmed(out.UserID, event)
	}
	return out, nil
}

// Cancel sets the registration to CANCELLED and, if that freed a seat,
// promotes the longest-waiting WAITLIST registration for the event. Only
// the owning user may cancel. Cancelling an already-cancelled
// registration is a no-op. The cancellation and its promotion commit
// together or not at all.
func (s *RegistrationService) Cancel(ctx context.Context, registrationID, callerUserID string) error {
	if registrationID == "" {
		return fmt.Errorf("registration id is required")
	}
	if callerUserID == "" {
		return fmt.Errorf("user id is required")
	}

	// Pre-read to learn the event and check ownership; the status itself
	// is re-read under the lock before any mutation.
	reg, err := s.registrations.GetByID(ctx, registrationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("get registration: %w", err)
	}
	if reg.UserID != callerUserID {
		return ErrUnauthorized
	}

	release, err := s.locks.acquire(ctx, reg.EventID)
	if err != nil {
		return err
	}
	defer release()

	event, err := s.events.GetByID(ctx, reg.EventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	var promoted *model.Registration
	err = s.registrations.InTx(ctx, func(store repository.RegistrationStore) error {
		reg, err := store.GetByID(ctx, registrationID)
		if err != nil {
			return err
		}
		if reg.Status == model.StatusCancelled {
			return nil
		}

		now := s.clock()
		reg.Status = model.StatusCancelled
		reg.UpdatedAt = now
		if err := store.Update(ctx, reg); err != nil {
			return err
		}

		// A single cancellation frees at most one seat, so at most one
		// waitlisted registration is promoted, and promotion never
		// cascades into a second one.
		confirmed, err := store.CountByEventAndStatus(ctx, event.ID, model.StatusConfirmed)
		if err != nil {
			return fmt.Errorf("count confirmed: %w", err)
		}
		if confirmed >= event.Capacity {
			return nil
		}

		next, err := store.OldestWaitlisted(ctx, event.ID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("find waitlist: %w", err)
		}
		next.Status = model.StatusConfirmed
		next.UpdatedAt = now
		if err := store.Update(ctx, next); err != nil {
			return err
		}
		promoted = next
		return nil
	})
	if err != nil {
		return err
	}

	if promoted != nil {
		s.notifyConfirmed(promoted.UserID, event)
	}
	return nil
}

// ListForUser returns all registrations belonging to a user, any status.
func (s *RegistrationService) ListForUser(ctx context.Context, userID string) ([]model.Registration, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	return s.registrations.ListByUser(ctx, userID)
}

// ListForEvent returns all registrations for an event, oldest first.
func (s *RegistrationService) ListForEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.registrations.ListByEvent(ctx, eventID)
}

// nextStatus decides CONFIRMED or WAITLIST from the current confirmed
// count. A count already past capacity means the invariant was breached
// by an earlier fault; the operation aborts as retryable rather than
// making it worse.
func (s *RegistrationService) nextStatus(ctx context.Context, store repository.RegistrationStore, event *model.Event) (model.Status, error) {
	confirmed, err := store.CountByEventAndStatus(ctx, event.ID, model.StatusConfirmed)
	if err != nil {
		return "", fmt.Errorf("count confirmed: %w", err)
	}
	if confirmed > event.Capacity {
		return "", fmt.Errorf("confirmed count %d exceeds capacity %d for event %s: %w",
			confirmed, event.Capacity, event.ID, ErrBusy)
	}
	if confirmed < event.Capacity {
		return model.StatusConfirmed, nil
	}
	return model.StatusWaitlist, nil
}

func (s *RegistrationService) notifyConfirmed(userID string, event *model.Event) {
	subject := "Registration Confirmed: " + event.Title
	body := fmt.Sprintf(
		"You have successfully registered for %s.\nVenue: %s\nTime: %s\n\nSee you there!",
		event.Title, event.Venue, event.StartTime.Format(time.RFC1123),
	)
	s.notifier.Notify(userID, subject, body)
}
