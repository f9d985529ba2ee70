package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/nats-io/nats.go"
)

// Bus publishes check-in events over NATS for badge printers, dashboards and other desks.
type Bus struct {
	conn   *nats.Conn
	prefix string
}

// New connects to url. Subjects are namespaced under prefix.
func New(url, prefix string, opts ...nats.Option) (*Bus, error) {
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, err
	}
	return &Bus{conn: nc, prefix: strings.Trim(prefix, ".")}, nil
}

// Close drains the connection.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	if err := b.conn.Drain(); err != nil {
		b.conn.Close()
	}
}

// Subject joins tokens under the bus prefix.
func (b *Bus) Subject(tokens ...string) string {
	return JoinSubject(b.prefix, tokens...)
}

// JoinSubject builds a NATS subject, dropping empty tokens.
func JoinSubject(prefix string, tokens ...string) string {
	parts := make([]string, 0, len(tokens)+1)
	if p := strings.Trim(prefix, "."); p != "" {
		parts = append(parts, p)
	}
	for _, t := range tokens {
		if t = strings.Trim(t, "."); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ".")
}

// Publish encodes v as JSON and publishes it to subj.
func (b *Bus) Publish(ctx context.Context, subj string, v any) error {
	if b == nil {
		return errors.New("nil bus")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.conn.Publish(subj, data)
}

type subscription struct {
	sub    *nats.Subscription
	mu     sync.Mutex
	closed bool
}

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.sub.Drain()
}

// Subscribe invokes fn for every message on subj until ctx is done or the returned closer is closed.
func (b *Bus) Subscribe(ctx context.Context, subj string, fn func(ctx context.Context, subject string, data []byte) error) (io.Closer, error) {
	if b == nil {
		return nil, errors.New("nil bus")
	}
	if fn == nil {
		return nil, errors.New("nil handler")
	}

	sub, err := b.conn.Subscribe(subj, func(msg *nats.Msg) {
		_ = fn(ctx, msg.Subject, msg.Data)
	})
	if err != nil {
		return nil, err
	}

	s := &subscription{sub: sub}
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()
	return s, nil
}
