package scanner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/metrics"
)

const (
	DefaultInterval     = 500 * time.Millisecond
	DefaultDedupeWindow = 3 * time.Second
)

// CodeFunc handles one decoded code. It runs on the sampling goroutine, so
// no further frame is taken until it returns.
type CodeFunc func(ctx context.Context, code string)

// Sampler polls a stream for frames and hands decoded codes to a CodeFunc.
type Sampler struct {
	Interval     time.Duration
	DedupeWindow time.Duration
	Decoder      Decoder
	Logger       zerolog.Logger

	now func() time.Time
}

func NewSampler(decoder Decoder, interval, dedupe time.Duration, logger zerolog.Logger) *Sampler {
	return &Sampler{
		Interval:     interval,
		DedupeWindow: dedupe,
		Decoder:      decoder,
		Logger:       logger,
	}
}

// Run samples until ctx is done or the stream is closed. Per-frame errors
// never stop the loop.
func (s *Sampler) Run(ctx context.Context, stream Stream, handle CodeFunc) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	now := s.now
	if now == nil {
		now = time.Now
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var (
		lastCode string
		lastSeen time.Time
	)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		code, err := s.sample(ctx, stream)
		if err != nil {
			return err
		}
		if code == "" {
			continue
		}

		seenAt := now()
		if code == lastCode && seenAt.Sub(lastSeen) < s.DedupeWindow {
			// still in view; keep suppressing until it leaves for a full window
			lastSeen = seenAt
			metrics.CodesDecoded.WithLabelValues("debounced").Inc()
			continue
		}
		lastCode, lastSeen = code, seenAt
		metrics.CodesDecoded.WithLabelValues("handled").Inc()
		handle(ctx, code)
	}
}

// sample pulls and decodes one frame. It only returns an error when sampling must stop.
func (s *Sampler) sample(ctx context.Context, stream Stream) (string, error) {
	img, err := stream.Frame(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrNoFrame):
		return "", nil
	case errors.Is(err, ErrStreamClosed):
		return "", err
	default:
		s.Logger.Warn().Err(err).Msg("failed to read frame")
		return "", nil
	}
	metrics.FramesSampled.Inc()

	code, err := s.Decoder.Decode(img)
	if err != nil {
		s.Logger.Debug().Err(err).Msg("failed to decode frame")
		return "", nil
	}
	return code, nil
}
