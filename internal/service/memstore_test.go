package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/raghuenggcollege/campus-events/internal/model"
	"github.com/raghuenggcollege/campus-events/internal/repository"
)

// memEvents is an in-memory EventStore used across the service tests.
type memEvents struct {
	mu     sync.Mutex
	events map[string]model.Event
}

func newMemEvents(events ...model.Event) *memEvents {
	m := &memEvents{events: map[string]model.Event{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memEvents) Create(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.ID] = *event
	return nil
}

func (m *memEvents) GetByID(ctx context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (m *memEvents) ListUpcoming(ctx context.Context, after time.Time) ([]model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var events []model.Event
	for _, e := range m.events {
		if e.StartTime.After(after) {
			events = append(events, e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].StartTime.Before(events[j].StartTime) })
	return events, nil
}

func (m *memEvents) Update(ctx context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[event.ID]; !ok {
		return repository.ErrNotFound
	}
	m.events[event.ID] = *event
	return nil
}

func (m *memEvents) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.events, id)
	return nil
}

// setCapacity mutates an event's capacity out-of-band, the way the
// external event collaborator would.
func (m *memEvents) setCapacity(id string, capacity int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.events[id]
	e.Capacity = capacity
	m.events[id] = e
}

// memRegs is an in-memory RegistrationStore used across the service tests.
type memRegs struct {
	txMu sync.Mutex
	mu   sync.Mutex
	regs map[string]*model.Registration
}

func newMemRegs() *memRegs {
	return &memRegs{regs: map[string]*model.Registration{}}
}

func (m *memRegs) InTx(ctx context.Context, fn func(repository.RegistrationStore) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *memRegs) Create(ctx context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regs {
		if r.EventID == reg.EventID && r.UserID == reg.UserID {
			return fmt.Errorf("duplicate registration for (%s, %s)", reg.UserID, reg.EventID)
		}
	}
	cp := *reg
	m.regs[reg.ID] = &cp
	return nil
}

func (m *memRegs) GetByID(ctx context.Context, id string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memRegs) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.regs {
		if r.UserID == userID && r.EventID == eventID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegs) Update(ctx context.Context, reg *model.Registration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.regs[reg.ID]
	if !ok {
		return repository.ErrNotFound
	}
	r.Status = reg.Status
	r.UpdatedAt = reg.UpdatedAt
	return nil
}

func (m *memRegs) CountByEventAndStatus(ctx context.Context, eventID string, status model.Status) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.regs {
		if r.EventID == eventID && r.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *memRegs) OldestWaitlisted(ctx context.Context, eventID string) (*model.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.Registration
	for _, r := range m.regs {
		if r.EventID != eventID || r.Status != model.StatusWaitlist {
			continue
		}
		if oldest == nil ||
			r.RegisteredAt.Before(oldest.RegisteredAt) ||
			(r.RegisteredAt.Equal(oldest.RegisteredAt) && r.ID < oldest.ID) {
			oldest = r
		}
	}
	if oldest == nil {
		return nil, repository.ErrNotFound
	}
	cp := *oldest
	return &cp, nil
}

func (m *memRegs) ListByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	return m.list(func(r *model.Registration) bool { return r.UserID == userID }), nil
}

func (m *memRegs) ListByEvent(ctx context.Context, eventID string) ([]model.Registration, error) {
	return m.list(func(r *model.Registration) bool { return r.EventID == eventID }), nil
}

func (m *memRegs) list(match func(*model.Registration) bool) []model.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	var regs []model.Registration
	for _, r := range m.regs {
		if match(r) {
			regs = append(regs, *r)
		}
	}
	sort.Slice(regs, func(i, j int) bool {
		if !regs[i].RegisteredAt.Equal(regs[j].RegisteredAt) {
			return regs[i].RegisteredAt.Before(regs[j].RegisteredAt)
		}
		return regs[i].ID < regs[j].ID
	})
	return regs
}

// fakeNotifier records notifications for assertion.
type fakeNotifier struct {
	mu    sync.Mutex
	calls []notification
}

type notification struct {
	userID  string
	subject string
	body    string
}

func (f *fakeNotifier) Notify(userID, subject, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, notification{userID: userID, subject: subject, body: body})
}

func (f *fakeNotifier) sent() []notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notification(nil), f.calls...)
}

// newTestService wires a RegistrationService over the in-memory stores
// with a strictly increasing clock and sequential IDs so timestamps and
// tie-breaks are deterministic.
func newTestService(events *memEvents, regs *memRegs, notifier *fakeNotifier) *RegistrationService {
	svc := NewRegistrationService(events, regs, notifier, time.Second)

	var mu sync.Mutex
	base := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.clock = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	seq := 0
	svc.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("reg-%03d", seq)
	}
	return svc
}
