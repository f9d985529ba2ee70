package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type ActivityRepository interface {
	Create(ctx context.Context, params CreateActivityParams) (models.Activity, error)
	ListRecent(ctx context.Context, eventID string, limit int) ([]models.Activity, error)
}

type CreateActivityParams struct {
	EventID    string
	GuestID    *string
	OperatorID *string
	Kind       models.ActivityKind
	Severity   models.ActivitySeverity
	Message    string
	Metadata   map[string]interface{}
}

type activityRepository struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, params CreateActivityParams) (models.Activity, error) {
	const query = `
		INSERT INTO activities (id, event_id, guest_id, operator_id, kind, severity, message, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	act := models.Activity{
		ID:        uuid.NewString(),
		EventID:   params.EventID,
		Kind:      params.Kind,
		Severity:  params.Severity,
		Message:   params.Message,
		CreatedAt: time.Now().UTC(),
	}
	if act.Severity == "" {
		act.Severity = models.ActivitySeverityInfo
	}
	if v := nullableString(params.GuestID); v != nil {
		s := v.(string)
		act.GuestID = &s
	}
	if v := nullableString(params.OperatorID); v != nil {
		s := v.(string)
		act.OperatorID = &s
	}

	var metadata interface{}
	if len(params.Metadata) > 0 {
		raw, err := json.Marshal(params.Metadata)
		if err != nil {
			return models.Activity{}, fmt.Errorf("marshal metadata: %w", err)
		}
		act.Metadata = raw
		metadata = string(raw)
	}

	_, err := r.db.ExecContext(ctx, query,
		act.ID,
		act.EventID,
		nullableString(act.GuestID),
		nullableString(act.OperatorID),
		act.Kind,
		act.Severity,
		act.Message,
		metadata,
		act.CreatedAt,
	)
	if err != nil {
		return models.Activity{}, err
	}
	return act, nil
}

func (r *activityRepository) ListRecent(ctx context.Context, eventID string, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const query = `
		SELECT id, event_id, guest_id, operator_id, kind, severity, message, metadata, created_at
		FROM activities
		WHERE event_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, eventID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, act)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return activities, nil
}

func scanActivity(row rowScanner) (models.Activity, error) {
	var (
		act         models.Activity
		guestID     sql.NullString
		operatorID  sql.NullString
		metadataRaw sql.NullString
	)
	if err := row.Scan(
		&act.ID,
		&act.EventID,
		&guestID,
		&operatorID,
		&act.Kind,
		&act.Severity,
		&act.Message,
		&metadataRaw,
		&act.CreatedAt,
	); err != nil {
		return models.Activity{}, err
	}
	act.GuestID = stringPtr(guestID)
	act.OperatorID = stringPtr(operatorID)
	if metadataRaw.Valid && metadataRaw.String != "" {
		act.Metadata = json.RawMessage(metadataRaw.String)
	}
	return act, nil
}
