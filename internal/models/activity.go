package models

import (
	"encoding/json"
	"time"
)

type ActivitySeverity string

const (
	ActivitySeverityInfo    ActivitySeverity = "info"
	ActivitySeverityWarning ActivitySeverity = "warning"
	ActivitySeverityError   ActivitySeverity = "error"
)

type ActivityKind string

const (
	ActivityScanCheckedIn     ActivityKind = "scan_checked_in"
	ActivityScanDuplicate     ActivityKind = "scan_duplicate"
	ActivityScanRejected      ActivityKind = "scan_rejected"
	ActivityScanFailed        ActivityKind = "scan_failed"
	ActivityManualCheckIn     ActivityKind = "manual_check_in"
	ActivityManualCheckInUndo ActivityKind = "manual_check_in_undo"
	ActivityCodeSent          ActivityKind = "code_sent"
	ActivityRSVPOverride      ActivityKind = "rsvp_override"
)

// Activity is an append-only audit record of a check-in desk decision.
type Activity struct {
	ID         string           `json:"id" db:"id"`
	EventID    string           `json:"event_id" db:"event_id"`
	GuestID    *string          `json:"guest_id,omitempty" db:"guest_id"`
	OperatorID *string          `json:"operator_id,omitempty" db:"operator_id"`
	Kind       ActivityKind     `json:"kind" db:"kind"`
	Severity   ActivitySeverity `json:"severity" db:"severity"`
	Message    string           `json:"message" db:"message"`
	Metadata   json.RawMessage  `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
}
