package notification

import (
	"context"
	"errors"
	"io"
	"net"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/config"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func captureSend(out *[]sentMail) func(string, smtp.Auth, string, []string, []byte) error {
	return func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		*out = append(*out, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
}

func TestNewEmailNotifierRequiresHostAndFrom(t *testing.T) {
	logger := zerolog.New(io.Discard)
	if _, err := NewEmailNotifier(config.EmailConfig{From: "desk@example.com"}, logger); err == nil {
		t.Fatal("expected error for missing host")
	}
	if _, err := NewEmailNotifier(config.EmailConfig{SMTPHost: "smtp.example.com"}, logger); err == nil {
		t.Fatal("expected error for missing from")
	}
}

func TestEmailNotifierSendsOnlyAlerts(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost:        "smtp.example.com",
		From:            "desk@example.com",
		AlertRecipients: []string{" host@example.com ", ""},
	}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEmailNotifier: %v", err)
	}
	var sent []sentMail
	n.send = captureSend(&sent)

	guest := "g42"
	info := models.Activity{ID: "a1", EventID: "evt1", Kind: models.ActivityScanCheckedIn, Severity: models.ActivitySeverityInfo}
	alert := models.Activity{
		ID:        "a2",
		EventID:   "evt1",
		GuestID:   &guest,
		Kind:      models.ActivityScanFailed,
		Severity:  models.ActivitySeverityError,
		Message:   "check-in failed, please retry",
		CreatedAt: time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC),
	}

	if err := n.Notify(context.Background(), info); err != nil {
		t.Fatalf("Notify info: %v", err)
	}
	if len(sent) != 0 {
		t.Fatalf("info activity sent %d mails", len(sent))
	}
	if err := n.Notify(context.Background(), alert); err != nil {
		t.Fatalf("Notify alert: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("sent %d mails, want 1", len(sent))
	}
	mail := sent[0]
	if mail.addr != "smtp.example.com:587" {
		t.Errorf("addr = %q", mail.addr)
	}
	if len(mail.to) != 1 || mail.to[0] != "host@example.com" {
		t.Errorf("to = %v", mail.to)
	}
	for _, want := range []string{"Subject: [Invitopia] check-in failed, please retry", "Guest: g42", "Kind: scan_failed"} {
		if !strings.Contains(mail.msg, want) {
			t.Errorf("message missing %q:\n%s", want, mail.msg)
		}
	}
}

func TestEmailNotifierWithoutRecipientsIsNoop(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{SMTPHost: "smtp.example.com", From: "desk@example.com"}, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewEmailNotifier: %v", err)
	}
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("should not send")
	}
	act := models.Activity{EventID: "evt1", Severity: models.ActivitySeverityError}
	if err := n.Notify(context.Background(), act); err != nil {
		t.Fatalf("Notify: %v", err)
	}
}

type fakePublisher struct {
	subjects []string
	values   []any
	err      error
}

func (f *fakePublisher) Subject(tokens ...string) string {
	return "invitopia." + strings.Join(tokens, ".")
}

func (f *fakePublisher) Publish(_ context.Context, subj string, v any) error {
	f.subjects = append(f.subjects, subj)
	f.values = append(f.values, v)
	return f.err
}

func TestBusNotifierPublishesPerEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := NewBusNotifier(pub, zerolog.New(io.Discard))

	act := models.Activity{ID: "a1", EventID: "evt1", Kind: models.ActivityScanCheckedIn}
	if err := n.Notify(context.Background(), act); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if len(pub.subjects) != 1 || pub.subjects[0] != "invitopia.events.evt1.activity" {
		t.Fatalf("subjects = %v", pub.subjects)
	}
	if got, ok := pub.values[0].(models.Activity); !ok || got.ID != "a1" {
		t.Fatalf("published %#v", pub.values[0])
	}

	pub.err = errors.New("no responders")
	if err := n.Notify(context.Background(), act); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestBuildCodeMessage(t *testing.T) {
	png := []byte(strings.Repeat("x", 200))
	msg, err := buildCodeMessage("desk@example.com", "ada@example.com", "Ada", "Gala", "EVENT:evt1|GUEST:g42|1699999999", png)
	if err != nil {
		t.Fatalf("buildCodeMessage: %v", err)
	}
	text := string(msg)
	for _, want := range []string{
		"To: ada@example.com",
		"Subject: Your check-in code for Gala",
		"multipart/mixed",
		"Hello Ada,",
		"EVENT:evt1|GUEST:g42|1699999999",
		`filename="checkin-code.png"`,
	} {
		if !strings.Contains(text, want) {
			t.Errorf("message missing %q", want)
		}
	}
}

func TestSMTPCodeMailerSendsToGuest(t *testing.T) {
	m, err := NewSMTPCodeMailer(config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 2525, From: "desk@example.com"})
	if err != nil {
		t.Fatalf("NewSMTPCodeMailer: %v", err)
	}
	var sent []sentMail
	m.send = captureSend(&sent)

	if err := m.SendCode("ada@example.com", "Ada", "Gala", "EVENT:evt1|GUEST:g42|1", nil); err != nil {
		t.Fatalf("SendCode: %v", err)
	}
	if len(sent) != 1 || sent[0].addr != "smtp.example.com:2525" || sent[0].to[0] != "ada@example.com" {
		t.Fatalf("sent = %+v", sent)
	}
}

func TestBuildCodeMessageSanitizesSubject(t *testing.T) {
	cases := []struct {
		name      string
		eventName string
		want      string
		reject    string
	}{
		{name: "header injection", eventName: "Gala\r\nBcc: everyone@example.com", want: "Subject: Your check-in code for Gala Bcc: everyone@example.com\r\n", reject: "\r\nBcc:"},
		{name: "non-ascii", eventName: "Fête", want: "Subject: =?utf-8?q?", reject: "Fête"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg, err := buildCodeMessage("desk@example.com", "ada@example.com", "Ada", tc.eventName, "EVENT:evt1|GUEST:g42|1", nil)
			if err != nil {
				t.Fatalf("buildCodeMessage: %v", err)
			}
			headers, _, _ := strings.Cut(string(msg), "\r\n\r\n")
			if !strings.Contains(headers, tc.want) {
				t.Errorf("headers missing %q:\n%s", tc.want, headers)
			}
			if strings.Contains(headers, tc.reject) {
				t.Errorf("headers contain %q:\n%s", tc.reject, headers)
			}
		})
	}
}

func TestSendMailTimeoutSilentServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			// accept and never greet
			defer conn.Close()
		}
	}()

	send := sendMailTimeout(50 * time.Millisecond)
	done := make(chan error, 1)
	go func() {
		done <- send(ln.Addr().String(), nil, "desk@example.com", []string{"host@example.com"}, []byte("Subject: x\r\n\r\nbody"))
	}()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected timeout error from silent server")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("send did not give up on a silent server")
	}
}
