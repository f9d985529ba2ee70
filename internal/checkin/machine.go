package checkin

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/metrics"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

type State string

const (
	StateNotArrived State = "not_arrived"
	StateCheckedIn  State = "checked_in"
)

// StateOf reports where a guest stands.
func StateOf(g models.Guest) State {
	if g.CheckedIn {
		return StateCheckedIn
	}
	return StateNotArrived
}

type Outcome string

const (
	OutcomeSuccess          Outcome = "success"
	OutcomeAlreadyCheckedIn Outcome = "already_checked_in"
)

// Result is the verdict for a scan that did not fail.
type Result struct {
	Outcome Outcome
	Guest   models.Guest
}

// Policy decides whether a declined guest may be checked in.
type Policy struct {
	BlockDeclinedOnScan   bool
	BlockDeclinedOnManual bool
}

// DefaultPolicy blocks declined guests at the scanner and lets organizers override by hand.
func DefaultPolicy() Policy {
	return Policy{BlockDeclinedOnScan: true, BlockDeclinedOnManual: false}
}

type StateMachine struct {
	dir      Directory
	policy   Policy
	recorder Recorder
	logger   zerolog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

type Option func(*StateMachine)

func WithPolicy(p Policy) Option {
	return func(m *StateMachine) { m.policy = p }
}

func WithRecorder(r Recorder) Option {
	return func(m *StateMachine) { m.recorder = r }
}

func WithClock(now func() time.Time) Option {
	return func(m *StateMachine) { m.now = now }
}

func NewStateMachine(dir Directory, logger zerolog.Logger, opts ...Option) *StateMachine {
	m := &StateMachine{
		dir:    dir,
		policy: DefaultPolicy(),
		logger: logger.With().Str("component", "checkin").Logger(),
		tracer: otel.Tracer("github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *StateMachine) Policy() Policy {
	return m.policy
}

// ProcessScan validates a decoded code against the event being checked in and
// records the arrival. Scanning the same code twice yields AlreadyCheckedIn
// without a second write. A code for another event never touches the directory.
func (m *StateMachine) ProcessScan(ctx context.Context, p Payload, expectedEventID string) (Result, error) {
	ctx, span := m.tracer.Start(ctx, "checkin.ProcessScan", trace.WithAttributes(
		attribute.String("event.id", expectedEventID),
		attribute.String("guest.id", p.GuestID),
	))
	defer span.End()
	start := time.Now()

	res, err := m.processScan(ctx, p, expectedEventID)

	label := Label(res.Outcome, err)
	metrics.ScanOutcomes.WithLabelValues(label).Inc()
	metrics.ScanDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("checkin.outcome", label))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	}

	d := Decision{
		EventID: expectedEventID,
		GuestID: p.GuestID,
		Outcome: res.Outcome,
		Err:     err,
	}
	if err == nil {
		g := res.Guest
		d.Guest = &g
	}
	m.record(ctx, d)

	logEvent := m.logger.Info()
	if err != nil {
		logEvent = m.logger.Warn().Err(err)
	}
	logEvent.
		Str("event_id", expectedEventID).
		Str("guest_id", p.GuestID).
		Str("outcome", label).
		Msg("scan processed")

	return res, err
}

func (m *StateMachine) processScan(ctx context.Context, p Payload, expectedEventID string) (Result, error) {
	if p.EventID != expectedEventID {
		return Result{}, ErrEventMismatch
	}

	guest, err := m.dir.GetGuest(ctx, expectedEventID, p.GuestID)
	if err != nil {
		return Result{}, fmt.Errorf("%w: lookup guest %s: %w", ErrDirectoryRead, p.GuestID, err)
	}
	if guest == nil {
		return Result{}, ErrGuestNotFound
	}
	if guest.CheckedIn {
		return Result{Outcome: OutcomeAlreadyCheckedIn, Guest: *guest}, nil
	}
	if guest.HasDeclined() && m.policy.BlockDeclinedOnScan {
		return Result{Guest: *guest}, ErrGuestDeclined
	}

	updated, err := m.dir.SetCheckedIn(ctx, expectedEventID, p.GuestID, true, m.now().UTC())
	if err != nil {
		return Result{}, &DirectoryWriteError{EventID: expectedEventID, GuestID: p.GuestID, Err: err}
	}
	return Result{Outcome: OutcomeSuccess, Guest: updated}, nil
}

// SetCheckedIn is the organizer's manual toggle. It works in both directions;
// setting the current value again keeps the original check-in time.
func (m *StateMachine) SetCheckedIn(ctx context.Context, eventID, guestID string, checked bool, operatorID string) (models.Guest, error) {
	ctx, span := m.tracer.Start(ctx, "checkin.SetCheckedIn", trace.WithAttributes(
		attribute.String("event.id", eventID),
		attribute.String("guest.id", guestID),
		attribute.Bool("checkin.checked", checked),
	))
	defer span.End()

	guest, err := m.setCheckedIn(ctx, eventID, guestID, checked)

	result := "ok"
	if err != nil {
		result = Label("", err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.ManualToggles.WithLabelValues(strconv.FormatBool(checked), result).Inc()

	d := Decision{
		EventID:    eventID,
		GuestID:    guestID,
		OperatorID: operatorID,
		Manual:     true,
		Checked:    checked,
		Err:        err,
	}
	if err == nil {
		d.Guest = &guest
	}
	m.record(ctx, d)

	m.logger.Info().
		Str("event_id", eventID).
		Str("guest_id", guestID).
		Str("operator_id", operatorID).
		Bool("checked_in", checked).
		Str("result", result).
		Msg("manual check-in toggle")

	return guest, err
}

func (m *StateMachine) setCheckedIn(ctx context.Context, eventID, guestID string, checked bool) (models.Guest, error) {
	guest, err := m.dir.GetGuest(ctx, eventID, guestID)
	if err != nil {
		return models.Guest{}, fmt.Errorf("%w: lookup guest %s: %w", ErrDirectoryRead, guestID, err)
	}
	if guest == nil {
		return models.Guest{}, ErrGuestNotFound
	}
	if checked && guest.HasDeclined() && m.policy.BlockDeclinedOnManual {
		return *guest, ErrGuestDeclined
	}

	updated, err := m.dir.SetCheckedIn(ctx, eventID, guestID, checked, m.now().UTC())
	if err != nil {
		return models.Guest{}, &DirectoryWriteError{EventID: eventID, GuestID: guestID, Err: err}
	}
	return updated, nil
}

func (m *StateMachine) record(ctx context.Context, d Decision) {
	if m.recorder == nil {
		return
	}
	m.recorder.Record(ctx, d)
}
