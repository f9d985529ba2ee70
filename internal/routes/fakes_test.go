package routes

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

type memEvents struct {
	mu     sync.Mutex
	events map[string]models.Event
}

func newMemEvents(ids ...string) *memEvents {
	m := &memEvents{events: make(map[string]models.Event)}
	for _, id := range ids {
		m.events[id] = models.Event{ID: id, Name: "Event " + id}
	}
	return m
}

func (m *memEvents) CreateEvent(_ context.Context, e models.Event) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = "evt-new"
	}
	e.CreatedAt = time.Now().UTC()
	e.UpdatedAt = e.CreatedAt
	m.events[e.ID] = e
	return e, nil
}

func (m *memEvents) GetEvent(_ context.Context, id string) (models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return models.Event{}, sql.ErrNoRows
	}
	return e, nil
}

func (m *memEvents) ListEvents(_ context.Context) ([]models.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e)
	}
	return out, nil
}

type memGuests struct {
	mu     sync.Mutex
	guests map[string]models.Guest // key: event/guest
	writes int
}

func newMemGuests(guests ...models.Guest) *memGuests {
	m := &memGuests{guests: make(map[string]models.Guest)}
	for _, g := range guests {
		m.guests[g.EventID+"/"+g.ID] = g
	}
	return m
}

func (m *memGuests) GetGuest(_ context.Context, eventID, guestID string) (*models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.guests[eventID+"/"+guestID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

func (m *memGuests) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	return m.SearchGuests(ctx, eventID, models.GuestFilter{})
}

func (m *memGuests) SetCheckedIn(_ context.Context, eventID, guestID string, checked bool, at time.Time) (models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventID + "/" + guestID
	g, ok := m.guests[key]
	if !ok {
		return models.Guest{}, sql.ErrNoRows
	}
	m.writes++
	g.CheckedIn = checked
	switch {
	case !checked:
		g.CheckInTime = nil
	case g.CheckInTime == nil:
		t := at
		g.CheckInTime = &t
	}
	m.guests[key] = g
	return g, nil
}

func (m *memGuests) CreateGuest(_ context.Context, g models.Guest) (models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = "g-new"
	}
	m.guests[g.EventID+"/"+g.ID] = g
	return g, nil
}

func (m *memGuests) SearchGuests(_ context.Context, eventID string, filter models.GuestFilter) ([]models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Guest{}
	for _, g := range m.guests {
		if g.EventID == eventID && filter.Matches(g) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memGuests) UpdateRSVP(_ context.Context, eventID, guestID string, status models.RSVPStatus) (models.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := eventID + "/" + guestID
	g, ok := m.guests[key]
	if !ok {
		return models.Guest{}, sql.ErrNoRows
	}
	g.RSVPStatus = status
	m.guests[key] = g
	return g, nil
}

func (m *memGuests) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type memOperators struct {
	operators map[string]models.Operator
	passwords map[string]string
}

func (m *memOperators) CreateOperator(_ context.Context, email, password, name string, roles []models.Role) (models.Operator, error) {
	op := models.Operator{ID: "op-" + email, Email: email, Name: name, IsActive: true, Roles: roles}
	m.operators[email] = op
	m.passwords[email] = password
	return op, nil
}

func (m *memOperators) AuthenticateOperator(_ context.Context, email, password string) (models.Operator, error) {
	op, ok := m.operators[email]
	if !ok || m.passwords[email] != password {
		return models.Operator{}, repository.ErrInvalidCredentials
	}
	return op, nil
}

func (m *memOperators) GetOperatorByEmail(_ context.Context, email string) (models.Operator, error) {
	op, ok := m.operators[email]
	if !ok {
		return models.Operator{}, sql.ErrNoRows
	}
	return op, nil
}

type memActivities struct {
	mu   sync.Mutex
	acts []models.Activity
}

func (m *memActivities) Create(_ context.Context, p repository.CreateActivityParams) (models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.EventID == "" {
		return models.Activity{}, errors.New("event id required")
	}
	act := models.Activity{
		ID:         time.Now().Format(time.RFC3339Nano),
		EventID:    p.EventID,
		GuestID:    p.GuestID,
		OperatorID: p.OperatorID,
		Kind:       p.Kind,
		Severity:   p.Severity,
		Message:    p.Message,
		CreatedAt:  time.Now().UTC(),
	}
	m.acts = append(m.acts, act)
	return act, nil
}

func (m *memActivities) ListRecent(_ context.Context, eventID string, limit int) ([]models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Activity
	for i := len(m.acts) - 1; i >= 0 && len(out) < limit; i-- {
		if m.acts[i].EventID == eventID {
			out = append(out, m.acts[i])
		}
	}
	return out, nil
}

func (m *memActivities) kinds() []models.ActivityKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.ActivityKind, 0, len(m.acts))
	for _, a := range m.acts {
		out = append(out, a.Kind)
	}
	return out
}
