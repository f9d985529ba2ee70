package notification

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// Notifier delivers an activity record to an outside channel.
type Notifier interface {
	Notify(ctx context.Context, activity models.Activity) error
}

func sanitizeRecipients(recipients []string) []string {
	var cleaned []string
	for _, recipient := range recipients {
		if recipient = strings.TrimSpace(recipient); recipient != "" {
			cleaned = append(cleaned, recipient)
		}
	}
	return cleaned
}

var severityRank = map[models.ActivitySeverity]int{
	models.ActivitySeverityInfo:    0,
	models.ActivitySeverityWarning: 1,
	models.ActivitySeverityError:   2,
}

func atLeast(s, min models.ActivitySeverity) bool {
	return severityRank[s] >= severityRank[min]
}

func logNotifyError(logger zerolog.Logger, err error, channel string, act models.Activity) {
	if err == nil {
		return
	}
	logger.Warn().
		Err(err).
		Str("activity_id", act.ID).
		Str("kind", string(act.Kind)).
		Str("channel", channel).
		Msg("failed to deliver activity")
}
