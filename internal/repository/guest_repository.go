package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/database"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// GuestRepository is the SQL guest directory.
type GuestRepository interface {
	checkin.Directory
	CreateGuest(ctx context.Context, guest models.Guest) (models.Guest, error)
	SearchGuests(ctx context.Context, eventID string, filter models.GuestFilter) ([]models.Guest, error)
	UpdateRSVP(ctx context.Context, eventID, guestID string, status models.RSVPStatus) (models.Guest, error)
}

type guestRepository struct {
	db *database.DB
}

func NewGuestRepository(db *database.DB) GuestRepository {
	return &guestRepository{db: db}
}

const guestColumns = `id, event_id, name, email, rsvp_status, checked_in, check_in_time, created_at, updated_at`

func (r *guestRepository) CreateGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	const query = `
		INSERT INTO guests (id, event_id, name, email, rsvp_status, checked_in, check_in_time, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}
	if guest.RSVPStatus == "" {
		guest.RSVPStatus = models.RSVPPending
	}
	if !guest.RSVPStatus.IsValid() {
		return models.Guest{}, errors.New("invalid rsvp status")
	}
	guest.Name = strings.TrimSpace(guest.Name)
	guest.Email = strings.TrimSpace(guest.Email)
	guest.CheckedIn, guest.CheckInTime = false, nil
	now := time.Now().UTC()
	guest.CreatedAt, guest.UpdatedAt = now, now

	_, err := r.db.ExecContext(ctx, query,
		guest.ID,
		guest.EventID,
		guest.Name,
		guest.Email,
		guest.RSVPStatus,
		guest.CheckedIn,
		nil,
		guest.CreatedAt,
		guest.UpdatedAt,
	)
	if err != nil {
		return models.Guest{}, err
	}
	return guest, nil
}

// GetGuest returns nil, nil when the guest is not on the event's list.
func (r *guestRepository) GetGuest(ctx context.Context, eventID, guestID string) (*models.Guest, error) {
	const query = `SELECT ` + guestColumns + ` FROM guests WHERE id = ? AND event_id = ?`

	guest, err := scanGuest(r.db.QueryRowContext(ctx, query, guestID, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &guest, nil
}

func (r *guestRepository) ListGuests(ctx context.Context, eventID string) ([]models.Guest, error) {
	return r.SearchGuests(ctx, eventID, models.GuestFilter{})
}

func (r *guestRepository) SearchGuests(ctx context.Context, eventID string, filter models.GuestFilter) ([]models.Guest, error) {
	var (
		sb   strings.Builder
		args = []interface{}{eventID}
	)
	sb.WriteString(`SELECT ` + guestColumns + ` FROM guests WHERE event_id = ?`)
	if filter.Status != "" {
		sb.WriteString(` AND rsvp_status = ?`)
		args = append(args, filter.Status)
	}
	if filter.CheckedIn != nil {
		sb.WriteString(` AND checked_in = ?`)
		args = append(args, *filter.CheckedIn)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		sb.WriteString(` AND (LOWER(name) LIKE ? OR LOWER(email) LIKE ?)`)
		pattern := "%" + q + "%"
		args = append(args, pattern, pattern)
	}
	sb.WriteString(` ORDER BY name, id`)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	guests := []models.Guest{}
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return guests, nil
}

// SetCheckedIn updates one row and reads it back. Checking in an already
// checked-in guest keeps the first check-in time; checking out clears it.
func (r *guestRepository) SetCheckedIn(ctx context.Context, eventID, guestID string, checked bool, at time.Time) (models.Guest, error) {
	const checkInQuery = `
		UPDATE guests
		SET checked_in = ?, check_in_time = COALESCE(check_in_time, ?), updated_at = ?
		WHERE id = ? AND event_id = ?
	`
	const checkOutQuery = `
		UPDATE guests
		SET checked_in = ?, check_in_time = NULL, updated_at = ?
		WHERE id = ? AND event_id = ?
	`

	at = at.UTC()
	var (
		res sql.Result
		err error
	)
	if checked {
		res, err = r.db.ExecContext(ctx, checkInQuery, true, at, at, guestID, eventID)
	} else {
		res, err = r.db.ExecContext(ctx, checkOutQuery, false, at, guestID, eventID)
	}
	if err != nil {
		return models.Guest{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Guest{}, sql.ErrNoRows
	}

	guest, err := r.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return models.Guest{}, err
	}
	if guest == nil {
		return models.Guest{}, sql.ErrNoRows
	}
	return *guest, nil
}

func (r *guestRepository) UpdateRSVP(ctx context.Context, eventID, guestID string, status models.RSVPStatus) (models.Guest, error) {
	const query = `
		UPDATE guests
		SET rsvp_status = ?, updated_at = ?
		WHERE id = ? AND event_id = ?
	`
	if !status.IsValid() {
		return models.Guest{}, errors.New("invalid rsvp status")
	}

	res, err := r.db.ExecContext(ctx, query, status, time.Now().UTC(), guestID, eventID)
	if err != nil {
		return models.Guest{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.Guest{}, sql.ErrNoRows
	}
	guest, err := r.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return models.Guest{}, err
	}
	if guest == nil {
		return models.Guest{}, sql.ErrNoRows
	}
	return *guest, nil
}

func scanGuest(row rowScanner) (models.Guest, error) {
	var (
		g           models.Guest
		status      string
		checkInTime sql.NullTime
	)
	if err := row.Scan(
		&g.ID,
		&g.EventID,
		&g.Name,
		&g.Email,
		&status,
		&g.CheckedIn,
		&checkInTime,
		&g.CreatedAt,
		&g.UpdatedAt,
	); err != nil {
		return models.Guest{}, err
	}
	g.RSVPStatus = models.RSVPStatus(status)
	if checkInTime.Valid {
		t := checkInTime.Time.UTC()
		g.CheckInTime = &t
	}
	g.CreatedAt = g.CreatedAt.UTC()
	g.UpdatedAt = g.UpdatedAt.UTC()
	return g, nil
}
