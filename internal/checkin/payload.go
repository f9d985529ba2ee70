package checkin

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	eventTag  = "EVENT:"
	guestTag  = "GUEST:"
	separator = "|"
)

// Payload is the content of a guest's check-in code. It is never persisted.
type Payload struct {
	EventID  string
	GuestID  string
	IssuedAt time.Time // zero when the code carries no timestamp
}

// Encode renders the code text for a guest, stamped with the current time.
func Encode(eventID, guestID string) string {
	return EncodeAt(eventID, guestID, time.Now())
}

// EncodeAt renders EVENT:<eventID>|GUEST:<guestID>|<unix seconds>.
func EncodeAt(eventID, guestID string, issuedAt time.Time) string {
	return eventTag + eventID + separator + guestTag + guestID + separator + strconv.FormatInt(issuedAt.Unix(), 10)
}

// String renders the payload back to code text. A zero IssuedAt is omitted.
func (p Payload) String() string {
	if p.IssuedAt.IsZero() {
		return eventTag + p.EventID + separator + guestTag + p.GuestID
	}
	return EncodeAt(p.EventID, p.GuestID, p.IssuedAt)
}

// Decode parses code text. Anything that does not carry both tagged ids is
// rejected with a *DecodeError. An unparsable timestamp is ignored.
func Decode(text string) (Payload, error) {
	parts := strings.Split(strings.TrimSpace(text), separator)
	if len(parts) < 2 {
		return Payload{}, &DecodeError{Reason: "expected at least two segments"}
	}

	eventID, ok := stripTag(parts[0], eventTag)
	if !ok {
		return Payload{}, &DecodeError{Reason: "missing " + eventTag + " segment"}
	}
	guestID, ok := stripTag(parts[1], guestTag)
	if !ok {
		return Payload{}, &DecodeError{Reason: "missing " + guestTag + " segment"}
	}

	p := Payload{EventID: eventID, GuestID: guestID}
	if len(parts) > 2 {
		if secs, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64); err == nil {
			p.IssuedAt = time.Unix(secs, 0).UTC()
		}
	}
	return p, nil
}

func stripTag(segment, tag string) (string, bool) {
	segment = strings.TrimSpace(segment)
	if !strings.HasPrefix(segment, tag) {
		return "", false
	}
	id := strings.TrimSpace(strings.TrimPrefix(segment, tag))
	if id == "" {
		return "", false
	}
	return id, true
}

// DecodeError reports code text that is not a check-in payload.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed code: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return ErrMalformed
}
