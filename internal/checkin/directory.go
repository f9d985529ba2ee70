package checkin

import (
	"context"
	"time"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// Directory is the guest list the state machine reads and writes.
type Directory interface {
	// GetGuest returns nil, nil when the guest does not exist in the event.
	GetGuest(ctx context.Context, eventID, guestID string) (*models.Guest, error)
	ListGuests(ctx context.Context, eventID string) ([]models.Guest, error)
	// SetCheckedIn persists the check-in flag. Setting true keeps an existing
	// check-in time, setting false clears it.
	SetCheckedIn(ctx context.Context, eventID, guestID string, checked bool, at time.Time) (models.Guest, error)
}

// Decision describes one state machine verdict for the audit trail.
type Decision struct {
	EventID    string
	GuestID    string
	OperatorID string
	Manual     bool
	Checked    bool // requested state for manual toggles
	Outcome    Outcome
	Err        error
	Guest      *models.Guest
}

// Recorder receives every decision. Implementations must not block for long.
type Recorder interface {
	Record(ctx context.Context, d Decision)
}
