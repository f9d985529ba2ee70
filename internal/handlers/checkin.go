package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/metrics"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/scanner"
)

type CheckInHandler struct {
	machine  *checkin.StateMachine
	recorder checkin.Recorder
	logger   zerolog.Logger
}

// NewCheckInHandler wires the scan endpoint. recorder receives codes that
// never reach the state machine because they cannot be decoded; it may be nil.
func NewCheckInHandler(machine *checkin.StateMachine, recorder checkin.Recorder, logger zerolog.Logger) *CheckInHandler {
	return &CheckInHandler{
		machine:  machine,
		recorder: recorder,
		logger:   logger.With().Str("handler", "checkin").Logger(),
	}
}

type scanResponse struct {
	Result  string        `json:"result"`
	Message string        `json:"message"`
	Guest   *models.Guest `json:"guest,omitempty"`
}

// Scan handles a code decoded on the client, e.g. by a browser QR library.
func (h *CheckInHandler) Scan(w http.ResponseWriter, r *http.Request) {
	eventID := pathVar(r, "eventID")
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	resp, err := h.resolve(r.Context(), eventID, req.Code)
	writeJSON(w, checkinStatus(err), resp)
}

// ResultFunc binds scanner sessions of one event to the state machine.
func (h *CheckInHandler) ResultFunc(eventID string) scanner.ResultFunc {
	return func(ctx context.Context, code string) scanner.Outcome {
		resp, _ := h.resolve(ctx, eventID, code)
		return scanner.Outcome{
			Code:    code,
			Result:  resp.Result,
			Message: resp.Message,
			Guest:   resp.Guest,
			At:      time.Now().UTC(),
		}
	}
}

func (h *CheckInHandler) resolve(ctx context.Context, eventID, code string) (scanResponse, error) {
	payload, err := checkin.Decode(strings.TrimSpace(code))
	if err != nil {
		metrics.ScanOutcomes.WithLabelValues(checkin.Label("", err)).Inc()
		h.logger.Warn().Err(err).Str("event_id", eventID).Msg("rejected malformed code")
		if h.recorder != nil && eventID != "" {
			h.recorder.Record(ctx, checkin.Decision{EventID: eventID, Err: err})
		}
		return scanResponse{
			Result:  checkin.Label("", err),
			Message: checkin.OperatorMessage("", err),
		}, err
	}

	res, err := h.machine.ProcessScan(ctx, payload, eventID)
	resp := scanResponse{
		Result:  checkin.Label(res.Outcome, err),
		Message: checkin.OperatorMessage(res.Outcome, err),
	}
	if err == nil {
		g := res.Guest
		resp.Guest = &g
	}
	return resp, err
}
