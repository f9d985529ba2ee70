package handlers

import (
	"encoding/json"
	"errors"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/authz"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/scanner"
)

const maxFrameBytes = 8 << 20

type ScannerHandler struct {
	registry *scanner.Registry
	events   repository.EventRepository
	checkins *CheckInHandler
	logger   zerolog.Logger
}

func NewScannerHandler(registry *scanner.Registry, events repository.EventRepository, checkins *CheckInHandler, logger zerolog.Logger) *ScannerHandler {
	return &ScannerHandler{
		registry: registry,
		events:   events,
		checkins: checkins,
		logger:   logger.With().Str("handler", "scanner").Logger(),
	}
}

type sessionResponse struct {
	ID        string         `json:"id"`
	EventID   string         `json:"event_id"`
	Facing    scanner.Facing `json:"facing"`
	StartedAt time.Time      `json:"started_at"`
	Active    bool           `json:"active"`
}

func toSessionResponse(s *scanner.Session) sessionResponse {
	return sessionResponse{
		ID:        s.ID(),
		EventID:   s.EventID(),
		Facing:    s.Facing(),
		StartedAt: s.StartedAt(),
		Active:    s.Active(),
	}
}

// StartSession opens the camera of a device and starts sampling for the event.
// A device that is already scanning has its previous session stopped first.
func (h *ScannerHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	event, ok := lookupEvent(w, r, h.events, h.logger, pathVar(r, "eventID"))
	if !ok {
		return
	}

	var req struct {
		DeviceID string `json:"device_id"`
		Facing   string `json:"facing"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
	}
	facing, err := scanner.ParseFacing(req.Facing)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deviceID := strings.TrimSpace(req.DeviceID)
	if deviceID == "" {
		deviceID, _ = authz.OperatorIDFromRequest(r)
	}
	if deviceID == "" {
		http.Error(w, "device_id is required", http.StatusBadRequest)
		return
	}

	session, err := h.registry.Start(r.Context(), deviceID, event.ID, facing, h.checkins.ResultFunc(event.ID))
	if err != nil {
		h.logger.Warn().Err(err).Str("device_id", deviceID).Str("event_id", event.ID).Msg("failed to start scanner session")
		http.Error(w, "camera unavailable: "+err.Error(), scannerStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *ScannerHandler) StopSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Stop(pathVar(r, "sessionID")); err != nil {
		http.Error(w, err.Error(), scannerStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SwitchCamera flips the session to another camera of the same device.
func (h *ScannerHandler) SwitchCamera(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Session(pathVar(r, "sessionID"))
	if err != nil {
		http.Error(w, err.Error(), scannerStatus(err))
		return
	}

	var req struct {
		Facing string `json:"facing"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	facing := session.Facing().Other()
	if strings.TrimSpace(req.Facing) != "" {
		if facing, err = scanner.ParseFacing(req.Facing); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	if err := session.SwitchCamera(r.Context(), facing); err != nil {
		h.logger.Warn().Err(err).Str("session_id", session.ID()).Msg("failed to switch camera")
		http.Error(w, "camera unavailable: "+err.Error(), scannerStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

// PushFrame accepts a JPEG or PNG snapshot from a browser-owned camera.
func (h *ScannerHandler) PushFrame(w http.ResponseWriter, r *http.Request) {
	img, _, err := image.Decode(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		http.Error(w, "Invalid image", http.StatusBadRequest)
		return
	}
	if err := h.registry.Push(pathVar(r, "sessionID"), img); err != nil {
		http.Error(w, err.Error(), scannerStatus(err))
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// Results returns outcomes after the ?after= sequence number. The older
// ?since= (RFC 3339, exclusive) filter is still accepted.
func (h *ScannerHandler) Results(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Session(pathVar(r, "sessionID"))
	if err != nil {
		http.Error(w, err.Error(), scannerStatus(err))
		return
	}

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("after")); raw != "" {
		seq, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			http.Error(w, "Invalid after sequence", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session": toSessionResponse(session),
			"results": session.ResultsAfter(seq),
		})
		return
	}

	var since time.Time
	if raw := strings.TrimSpace(query.Get("since")); raw != "" {
		if since, err = time.Parse(time.RFC3339Nano, raw); err != nil {
			http.Error(w, "Invalid since timestamp", http.StatusBadRequest)
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session": toSessionResponse(session),
		"results": session.Results(since),
	})
}
