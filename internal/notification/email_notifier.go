package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/config"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// EmailNotifier alerts organizers about warnings and failures at the desk.
type EmailNotifier struct {
	host        string
	port        int
	username    string
	password    string
	from        string
	recipients  []string
	minSeverity models.ActivitySeverity
	logger      zerolog.Logger
	send        sendFunc
}

func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*EmailNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	from := strings.TrimSpace(cfg.From)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for email notifier")
	}
	if from == "" {
		return nil, fmt.Errorf("from is required for email notifier")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	return &EmailNotifier{
		host:        host,
		port:        port,
		username:    strings.TrimSpace(cfg.Username),
		password:    cfg.Password,
		from:        from,
		recipients:  sanitizeRecipients(cfg.AlertRecipients),
		minSeverity: models.ActivitySeverityWarning,
		logger:      logger.With().Str("notifier", "email").Logger(),
		send:        sendMailTimeout(smtpTimeout),
	}, nil
}

func (n *EmailNotifier) Notify(ctx context.Context, act models.Activity) error {
	if len(n.recipients) == 0 || !atLeast(act.Severity, n.minSeverity) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("[Invitopia] %s", strings.TrimSpace(act.Message))
	if subject == "[Invitopia] " {
		subject = "[Invitopia] Check-in alert"
	}

	body := strings.Builder{}
	body.WriteString(strings.TrimSpace(act.Message))
	body.WriteString("\n\n")
	body.WriteString(fmt.Sprintf("Event: %s\n", act.EventID))
	if act.GuestID != nil {
		body.WriteString(fmt.Sprintf("Guest: %s\n", *act.GuestID))
	}
	body.WriteString(fmt.Sprintf("Kind: %s\n", act.Kind))
	body.WriteString(fmt.Sprintf("Severity: %s\n", act.Severity))
	body.WriteString(fmt.Sprintf("Time: %s\n", act.CreatedAt.Format("2006-01-02 15:04:05 MST")))
	if len(act.Metadata) > 0 {
		body.WriteString(fmt.Sprintf("Details: %s\n", string(act.Metadata)))
	}

	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n",
		headerValue(n.from), headerValue(strings.Join(n.recipients, ",")), headerValue(subject))

	message := []byte(headers + body.String())
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	var auth smtp.Auth
	if n.username != "" {
		auth = smtp.PlainAuth("", n.username, n.password, n.host)
	}

	if err := n.send(addr, auth, n.from, n.recipients, message); err != nil {
		return err
	}

	n.logger.Info().
		Str("activity_id", act.ID).
		Str("kind", string(act.Kind)).
		Strs("recipients", n.recipients).
		Msg("alert email sent")
	return nil
}

func (n *EmailNotifier) String() string {
	return "EmailNotifier"
}
