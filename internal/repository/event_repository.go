package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type EventRepository interface {
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
	GetEvent(ctx context.Context, eventID string) (models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type eventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	const query = `
		INSERT INTO events (id, name, location, starts_at, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	event.Name = strings.TrimSpace(event.Name)
	if event.Name == "" {
		return models.Event{}, errors.New("event name is required")
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	event.CreatedAt, event.UpdatedAt = now, now

	var startsAt interface{}
	if event.StartsAt != nil {
		startsAt = event.StartsAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Name,
		strings.TrimSpace(event.Location),
		startsAt,
		nullableString(event.CreatedBy),
		event.CreatedAt,
		event.UpdatedAt,
	)
	if err != nil {
		return models.Event{}, err
	}
	return event, nil
}

// GetEvent returns sql.ErrNoRows when the event does not exist.
func (r *eventRepository) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	const query = `
		SELECT id, name, location, starts_at, created_by, created_at, updated_at
		FROM events
		WHERE id = ?
	`
	return scanEvent(r.db.QueryRowContext(ctx, query, eventID))
}

func (r *eventRepository) ListEvents(ctx context.Context) ([]models.Event, error) {
	const query = `
		SELECT id, name, location, starts_at, created_by, created_at, updated_at
		FROM events
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func scanEvent(row rowScanner) (models.Event, error) {
	var (
		e         models.Event
		startsAt  sql.NullTime
		createdBy sql.NullString
	)
	if err := row.Scan(&e.ID, &e.Name, &e.Location, &startsAt, &createdBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.Event{}, err
	}
	if startsAt.Valid {
		t := startsAt.Time.UTC()
		e.StartsAt = &t
	}
	e.CreatedBy = stringPtr(createdBy)
	return e, nil
}
