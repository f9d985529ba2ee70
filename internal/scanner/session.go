package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/metrics"
)

// Session is one scanning run bound to an event. It owns the camera stream
// from Start until Stop; the stream is closed on every exit path.
type Session struct {
	id        string
	eventID   string
	startedAt time.Time
	source    Source
	sampler   *Sampler
	handle    ResultFunc
	results   *outcomeRing
	logger    zerolog.Logger
	onStop    func(*Session)

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu      sync.Mutex // guards the fields below and serializes lifecycle changes
	facing  Facing
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool

	stopOnce sync.Once
}

func (s *Session) ID() string           { return s.id }
func (s *Session) EventID() string      { return s.eventID }
func (s *Session) StartedAt() time.Time { return s.startedAt }

func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facing
}

func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// Results returns outcomes newer than since, oldest first.
func (s *Session) Results(since time.Time) []Outcome {
	return s.results.since(since)
}

// ResultsAfter returns outcomes with a sequence number above seq, oldest first.
func (s *Session) ResultsAfter(seq uint64) []Outcome {
	return s.results.after(seq)
}

// Done is closed once the session has been stopped and its camera released.
func (s *Session) Done() <-chan struct{} {
	return s.baseCtx.Done()
}

// startLoop opens the camera and launches the sampling goroutine. s.mu must be held.
func (s *Session) startLoop(ctx context.Context, facing Facing) error {
	stream, err := s.source.Open(ctx, facing)
	if err != nil {
		return fmt.Errorf("%w: open %s camera: %w", ErrCameraUnavailable, facing, err)
	}

	loopCtx, cancel := context.WithCancel(s.baseCtx)
	done := make(chan struct{})
	s.facing, s.cancel, s.done = facing, cancel, done

	go func() {
		defer close(done)
		defer func() {
			if err := stream.Close(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to release camera")
			}
		}()

		s.logger.Info().Str("facing", string(facing)).Msg("camera opened")
		err := s.sampler.Run(loopCtx, stream, s.onCode)
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Warn().Err(err).Msg("sampling stopped")
		}
	}()
	return nil
}

// haltLoop stops sampling and waits for the camera to be released. s.mu must be held.
func (s *Session) haltLoop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}

func (s *Session) onCode(ctx context.Context, code string) {
	out := s.handle(ctx, code)
	if out.Code == "" {
		out.Code = code
	}
	if out.At.IsZero() {
		out.At = time.Now().UTC()
	}
	out = s.results.add(out)
	s.logger.Debug().Uint64("seq", out.Seq).Str("result", out.Result).Msg("code handled")
}

// SwitchCamera restarts sampling on the other camera of the device.
// If the new camera cannot be opened the session is stopped.
func (s *Session) SwitchCamera(ctx context.Context, facing Facing) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if facing == s.facing && s.cancel != nil {
		s.mu.Unlock()
		return nil
	}
	s.haltLoop()
	err := s.startLoop(ctx, facing)
	s.mu.Unlock()

	if err != nil {
		s.Stop()
		return err
	}
	s.logger.Info().Str("facing", string(facing)).Msg("camera switched")
	return nil
}

// Stop ends sampling and releases the camera. It is safe to call more than once.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.haltLoop()
		s.mu.Unlock()
		s.baseCancel()

		metrics.ActiveSessions.Dec()
		s.logger.Info().Msg("scanner session stopped")
		if s.onStop != nil {
			s.onStop(s)
		}
	})
}

func newSession(eventID string, source Source, sampler *Sampler, handle ResultFunc, resultLimit int, logger zerolog.Logger) *Session {
	id := uuid.NewString()
	baseCtx, baseCancel := context.WithCancel(context.Background())
	return &Session{
		id:         id,
		eventID:    eventID,
		startedAt:  time.Now().UTC(),
		source:     source,
		sampler:    sampler,
		handle:     handle,
		results:    newOutcomeRing(resultLimit),
		logger:     logger.With().Str("session_id", id).Str("event_id", eventID).Logger(),
		baseCtx:    baseCtx,
		baseCancel: baseCancel,
	}
}
