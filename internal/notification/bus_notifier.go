package notification

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// Publisher is the part of the message bus the notifier needs.
type Publisher interface {
	Subject(tokens ...string) string
	Publish(ctx context.Context, subj string, v any) error
}

// BusNotifier fans every activity out on <prefix>.events.<event id>.activity.
type BusNotifier struct {
	bus    Publisher
	logger zerolog.Logger
}

func NewBusNotifier(bus Publisher, logger zerolog.Logger) *BusNotifier {
	return &BusNotifier{
		bus:    bus,
		logger: logger.With().Str("notifier", "bus").Logger(),
	}
}

// ActivitySubject is the subject activities of one event are published on.
func ActivitySubject(bus Publisher, eventID string) string {
	return bus.Subject("events", eventID, "activity")
}

func (n *BusNotifier) Notify(ctx context.Context, act models.Activity) error {
	subj := ActivitySubject(n.bus, act.EventID)
	if err := n.bus.Publish(ctx, subj, act); err != nil {
		return fmt.Errorf("publish %s: %w", subj, err)
	}
	n.logger.Debug().Str("subject", subj).Str("activity_id", act.ID).Msg("activity published")
	return nil
}

func (n *BusNotifier) String() string {
	return "BusNotifier"
}
