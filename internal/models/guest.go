package models

import "time"

// RSVPStatus is the guest's answer to the invitation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
)

// IsValid reports whether s is one of the known RSVP statuses.
func (s RSVPStatus) IsValid() bool {
	switch s {
	case RSVPPending, RSVPConfirmed, RSVPDeclined:
		return true
	}
	return false
}

// Guest is one invitee of one event.
type Guest struct {
	ID          string     `json:"id" db:"id"`
	EventID     string     `json:"event_id" db:"event_id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	RSVPStatus  RSVPStatus `json:"rsvp_status" db:"rsvp_status"`
	CheckedIn   bool       `json:"checked_in" db:"checked_in"`
	CheckInTime *time.Time `json:"check_in_time" db:"check_in_time"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// Consistent reports whether CheckInTime is set exactly when the guest is checked in.
func (g Guest) Consistent() bool {
	return g.CheckedIn == (g.CheckInTime != nil)
}

// HasDeclined reports whether the guest declined the invitation.
func (g Guest) HasDeclined() bool {
	return g.RSVPStatus == RSVPDeclined
}

// GuestFilter narrows a guest listing.
type GuestFilter struct {
	Query     string
	Status    RSVPStatus
	CheckedIn *bool
}

// Matches applies the filter to a single guest. Query matching is case-insensitive on name and email.
func (f GuestFilter) Matches(g Guest) bool {
	if f.Status != "" && g.RSVPStatus != f.Status {
		return false
	}
	if f.CheckedIn != nil && g.CheckedIn != *f.CheckedIn {
		return false
	}
	if f.Query == "" {
		return true
	}
	return containsFold(g.Name, f.Query) || containsFold(g.Email, f.Query)
}
