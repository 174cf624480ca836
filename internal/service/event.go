package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raghuenggcollege/campus-events/internal/model"
	"github.com/raghuenggcollege/campus-events/internal/repository"
)

// maxCapacity caps event size to keep obviously bad input out.
const maxCapacity = 100_000

// EventService orchestrates event CRUD. Zero-capacity events are legal:
// every registrant lands on the waitlist.
type EventService struct {
	events repository.EventStore

	clock func() time.Time
	newID func() string
}

// NewEventService constructs an EventService.
func NewEventService(events repository.EventStore) *EventService {
	return &EventService{
		events: events,
		clock:  func() time.Time { return time.Now().UTC() },
		newID:  func() string { return uuid.New().String() },
	}
}

// CreateEvent validates the request and persists a new event.
func (s *EventService) CreateEvent(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	if err := validateEventRequest(&req); err != nil {
		return nil, err
	}

	now := s.clock()
	event := &model.Event{
		ID:          s.newID(),
		Title:       req.Title,
		Description: req.Description,
		Venue:       req.Venue,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Capacity:    req.Capacity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// ListUpcomingEvents returns events that have not started yet, soonest first.
func (s *EventService) ListUpcomingEvents(ctx context.Context) ([]model.Event, error) {
	return s.events.ListUpcoming(ctx, s.clock())
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("event id is required")
	}
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// UpdateEvent replaces the mutable fields of an event. Capacity changes
// take effect on subsequent registrations and promotions; already
// confirmed registrations are left alone.
func (s *EventService) UpdateEvent(ctx context.Context, id string, req model.UpdateEventRequest) (*model.Event, error) {
	if err := validateEventRequest(&req); err != nil {
		return nil, err
	}

	event, err := s.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Venue = req.Venue
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Capacity = req.Capacity
	event.UpdatedAt = s.clock()

	if err := s.events.Update(ctx, event); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

// DeleteEvent removes an event together with all its registrations.
func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	if err := s.events.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func validateEventRequest(req *model.CreateEventRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Title == "" {
		return fmt.Errorf("event title is required")
	}
	if req.Capacity < 0 {
		return fmt.Errorf("capacity cannot be negative")
	}
	if req.Capacity > maxCapacity {
		return fmt.Errorf("capacity cannot exceed %d", maxCapacity)
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return fmt.Errorf("start and end times are required")
	}
	if !req.EndTime.After(req.StartTime) {
		return fmt.Errorf("end time must be after start time")
	}
	return nil
}
