package notification

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

type Event struct {
	EventID    string
	GuestID    string
	OperatorID string
	Kind       models.ActivityKind
	Severity   models.ActivitySeverity
	Message    string
	Metadata   map[string]interface{}
}

// Service persists the check-in desk audit trail and fans it out to notifiers.
type Service interface {
	checkin.Recorder
	Publish(ctx context.Context, evt Event) (models.Activity, error)
	NotifyCodeSent(ctx context.Context, eventID, guestID, operatorID, recipient string) error
	NotifyRSVPOverride(ctx context.Context, eventID, guestID, operatorID string, from, to models.RSVPStatus) error
	ListRecent(ctx context.Context, eventID string, limit int) ([]models.Activity, error)
	// Close stops accepting notifications and waits for queued ones to be delivered.
	Close(ctx context.Context) error
}

const (
	notifyQueueSize = 256
	notifyTimeout   = 30 * time.Second
)

type service struct {
	repo      repository.ActivityRepository
	logger    zerolog.Logger
	notifiers []Notifier

	mu      sync.RWMutex
	closed  bool
	queue   chan models.Activity
	drained chan struct{}
}

func NewService(repo repository.ActivityRepository, logger zerolog.Logger, notifiers ...Notifier) Service {
	active := make([]Notifier, 0, len(notifiers))
	for _, notifier := range notifiers {
		if notifier != nil {
			active = append(active, notifier)
		}
	}
	s := &service{
		repo:      repo,
		logger:    logger.With().Str("component", "notification_service").Logger(),
		notifiers: active,
		queue:     make(chan models.Activity, notifyQueueSize),
		drained:   make(chan struct{}),
	}
	go s.deliver()
	return s
}

// deliver runs the notifiers off the caller's goroutine. Activities are
// persisted before they are queued, so a slow channel only delays alerts.
func (s *service) deliver() {
	defer close(s.drained)
	for act := range s.queue {
		for _, notifier := range s.notifiers {
			ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
			if err := notifier.Notify(ctx, act); err != nil {
				logNotifyError(s.logger, err, notifierChannelName(notifier), act)
			}
			cancel()
		}
	}
}

func (s *service) enqueue(act models.Activity) {
	if len(s.notifiers) == 0 {
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.logger.Warn().Str("activity_id", act.ID).Msg("notification service closed, activity not delivered")
		return
	}
	select {
	case s.queue <- act:
	default:
		s.logger.Warn().
			Str("activity_id", act.ID).
			Str("kind", string(act.Kind)).
			Msg("notification queue full, activity not delivered")
	}
}

func (s *service) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	select {
	case <-s.drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *service) Publish(ctx context.Context, evt Event) (models.Activity, error) {
	if evt.Kind == "" {
		return models.Activity{}, fmt.Errorf("activity kind is required")
	}
	eventID := strings.TrimSpace(evt.EventID)
	if eventID == "" {
		return models.Activity{}, fmt.Errorf("event id is required")
	}
	if evt.Severity == "" {
		evt.Severity = models.ActivitySeverityInfo
	}
	message := strings.TrimSpace(evt.Message)
	if message == "" {
		message = string(evt.Kind)
	}
	params := repository.CreateActivityParams{
		EventID:  eventID,
		Kind:     evt.Kind,
		Severity: evt.Severity,
		Message:  message,
		Metadata: evt.Metadata,
	}
	if gid := strings.TrimSpace(evt.GuestID); gid != "" {
		params.GuestID = &gid
	}
	if oid := strings.TrimSpace(evt.OperatorID); oid != "" {
		params.OperatorID = &oid
	}

	act, err := s.repo.Create(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(evt.Kind)).Msg("failed to persist activity")
		return models.Activity{}, err
	}
	s.enqueue(act)
	return act, nil
}

// Record turns a state machine decision into an activity. Failures are logged
// and never reach the caller, the decision has already been made.
func (s *service) Record(ctx context.Context, d checkin.Decision) {
	evt := decisionEvent(d)
	if _, err := s.Publish(ctx, evt); err != nil {
		s.logger.Warn().
			Err(err).
			Str("event_id", d.EventID).
			Str("guest_id", d.GuestID).
			Msg("failed to record check-in decision")
	}
}

func decisionEvent(d checkin.Decision) Event {
	evt := Event{
		EventID:    d.EventID,
		GuestID:    d.GuestID,
		OperatorID: d.OperatorID,
		Message:    checkin.OperatorMessage(d.Outcome, d.Err),
		Metadata: map[string]interface{}{
			"result": checkin.Label(d.Outcome, d.Err),
		},
	}
	if d.Guest != nil {
		evt.Metadata["guest_name"] = d.Guest.Name
	}
	if d.Err != nil {
		evt.Metadata["error"] = d.Err.Error()
	}

	if d.Manual {
		evt.Metadata["checked_in"] = d.Checked
		switch {
		case d.Checked:
			evt.Kind = models.ActivityManualCheckIn
		default:
			evt.Kind = models.ActivityManualCheckInUndo
		}
		evt.Severity = severityFor(d.Err)
		return evt
	}

	switch {
	case d.Err == nil && d.Outcome == checkin.OutcomeAlreadyCheckedIn:
		evt.Kind = models.ActivityScanDuplicate
		evt.Severity = models.ActivitySeverityInfo
	case d.Err == nil:
		evt.Kind = models.ActivityScanCheckedIn
		evt.Severity = models.ActivitySeverityInfo
	case isInfrastructure(d.Err):
		evt.Kind = models.ActivityScanFailed
		evt.Severity = models.ActivitySeverityError
	case errors.Is(d.Err, checkin.ErrMalformed):
		// any stray barcode in view lands here
		evt.Kind = models.ActivityScanRejected
		evt.Severity = models.ActivitySeverityInfo
	default:
		evt.Kind = models.ActivityScanRejected
		evt.Severity = models.ActivitySeverityWarning
	}
	// a mismatched code names a guest of some other event
	if errors.Is(d.Err, checkin.ErrEventMismatch) || errors.Is(d.Err, checkin.ErrMalformed) {
		evt.GuestID = ""
	}
	return evt
}

func severityFor(err error) models.ActivitySeverity {
	switch {
	case err == nil:
		return models.ActivitySeverityInfo
	case isInfrastructure(err):
		return models.ActivitySeverityError
	default:
		return models.ActivitySeverityWarning
	}
}

func isInfrastructure(err error) bool {
	return errors.Is(err, checkin.ErrDirectoryRead) || errors.Is(err, checkin.ErrDirectoryWrite)
}

func (s *service) NotifyCodeSent(ctx context.Context, eventID, guestID, operatorID, recipient string) error {
	_, err := s.Publish(ctx, Event{
		EventID:    eventID,
		GuestID:    guestID,
		OperatorID: operatorID,
		Kind:       models.ActivityCodeSent,
		Severity:   models.ActivitySeverityInfo,
		Message:    fmt.Sprintf("Check-in code sent to %s", recipient),
		Metadata: map[string]interface{}{
			"recipient": recipient,
		},
	})
	return err
}

func (s *service) NotifyRSVPOverride(ctx context.Context, eventID, guestID, operatorID string, from, to models.RSVPStatus) error {
	_, err := s.Publish(ctx, Event{
		EventID:    eventID,
		GuestID:    guestID,
		OperatorID: operatorID,
		Kind:       models.ActivityRSVPOverride,
		Severity:   models.ActivitySeverityInfo,
		Message:    fmt.Sprintf("RSVP changed from %s to %s", from, to),
		Metadata: map[string]interface{}{
			"from": string(from),
			"to":   string(to),
		},
	})
	return err
}

func (s *service) ListRecent(ctx context.Context, eventID string, limit int) ([]models.Activity, error) {
	return s.repo.ListRecent(ctx, eventID, limit)
}

func notifierChannelName(n Notifier) string {
	type named interface {
		String() string
	}
	if v, ok := n.(named); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
