package notification

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/config"
)

// CodeMailer delivers a guest's check-in code by email.
type CodeMailer interface {
	SendCode(recipientEmail, guestName, eventName, codeText string, png []byte) error
}

// SMTPCodeMailer sends check-in codes using an SMTP server.
type SMTPCodeMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	send     sendFunc
}

// NewSMTPCodeMailer constructs a new SMTPCodeMailer from config.
func NewSMTPCodeMailer(cfg config.EmailConfig) (*SMTPCodeMailer, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, fmt.Errorf("smtp_host is required")
	}
	if cfg.SMTPPort == 0 {
		cfg.SMTPPort = 587
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("email from address is required")
	}

	return &SMTPCodeMailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		username: cfg.Username,
		password: cfg.Password,
		from:     cfg.From,
		send:     sendMailTimeout(smtpTimeout),
	}, nil
}

// SendCode mails the code text and its QR image as an attachment.
func (m *SMTPCodeMailer) SendCode(recipientEmail, guestName, eventName, codeText string, png []byte) error {
	message, err := buildCodeMessage(m.from, recipientEmail, guestName, eventName, codeText, png)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	var auth smtp.Auth
	if strings.TrimSpace(m.username) != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return m.send(addr, auth, m.from, []string{recipientEmail}, message)
}

func buildCodeMessage(from, to, guestName, eventName, codeText string, png []byte) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		headerValue(from), headerValue(to), headerValue(fmt.Sprintf("Your check-in code for %s", eventName)), mw.Boundary())

	body := strings.Builder{}
	name := strings.TrimSpace(guestName)
	if name == "" {
		name = "there"
	}
	body.WriteString(fmt.Sprintf("Hello %s,\n\n", name))
	body.WriteString(fmt.Sprintf("Show the attached QR code at the entrance of %s.\n", eventName))
	body.WriteString("If the image does not load, the desk can type in this code:\n\n")
	body.WriteString(codeText + "\n\n")
	body.WriteString("See you there,\nThe Invitopia Team\n")

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {`text/plain; charset="UTF-8"`},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body.String())); err != nil {
		return nil, err
	}

	if len(png) > 0 {
		img, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"image/png"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {`attachment; filename="checkin-code.png"`},
		})
		if err != nil {
			return nil, err
		}
		encoded := base64.StdEncoding.EncodeToString(png)
		for len(encoded) > 76 {
			if _, err := img.Write([]byte(encoded[:76] + "\r\n")); err != nil {
				return nil, err
			}
			encoded = encoded[76:]
		}
		if _, err := img.Write([]byte(encoded + "\r\n")); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
