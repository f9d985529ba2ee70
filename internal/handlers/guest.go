package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/authz"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/notification"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

type GuestHandler struct {
	events        repository.EventRepository
	guests        repository.GuestRepository
	machine       *checkin.StateMachine
	notifications notification.Service
	mailer        notification.CodeMailer
	logger        zerolog.Logger
}

func NewGuestHandler(
	events repository.EventRepository,
	guests repository.GuestRepository,
	machine *checkin.StateMachine,
	notifications notification.Service,
	mailer notification.CodeMailer,
	logger zerolog.Logger,
) *GuestHandler {
	return &GuestHandler{
		events:        events,
		guests:        guests,
		machine:       machine,
		notifications: notifications,
		mailer:        mailer,
		logger:        logger.With().Str("handler", "guest").Logger(),
	}
}

// List returns the guest list, optionally filtered by ?q=, ?status= and ?checked_in=.
func (h *GuestHandler) List(w http.ResponseWriter, r *http.Request) {
	event, ok := lookupEvent(w, r, h.events, h.logger, pathVar(r, "eventID"))
	if !ok {
		return
	}

	query := r.URL.Query()
	filter := models.GuestFilter{
		Query:  strings.TrimSpace(query.Get("q")),
		Status: models.RSVPStatus(strings.ToLower(strings.TrimSpace(query.Get("status")))),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		http.Error(w, "Invalid RSVP status", http.StatusBadRequest)
		return
	}
	if raw := strings.TrimSpace(query.Get("checked_in")); raw != "" {
		checked, err := strconv.ParseBool(raw)
		if err != nil {
			http.Error(w, "Invalid checked_in filter", http.StatusBadRequest)
			return
		}
		filter.CheckedIn = &checked
	}

	guests, err := h.guests.SearchGuests(r.Context(), event.ID, filter)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to search guests")
		http.Error(w, "Failed to list guests", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"guests": guests})
}

type createGuestRequest struct {
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	RSVPStatus models.RSVPStatus `json:"rsvp_status"`
}

func (h *GuestHandler) Create(w http.ResponseWriter, r *http.Request) {
	event, ok := lookupEvent(w, r, h.events, h.logger, pathVar(r, "eventID"))
	if !ok {
		return
	}

	var req createGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Guest name is required", http.StatusBadRequest)
		return
	}
	if req.RSVPStatus == "" {
		req.RSVPStatus = models.RSVPPending
	}
	if !req.RSVPStatus.IsValid() {
		http.Error(w, "Invalid RSVP status", http.StatusBadRequest)
		return
	}

	guest, err := h.guests.CreateGuest(r.Context(), models.Guest{
		EventID:    event.ID,
		Name:       req.Name,
		Email:      req.Email,
		RSVPStatus: req.RSVPStatus,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to create guest")
		http.Error(w, "Failed to create guest", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, guest)
}

// UpdateRSVP lets an organizer override the guest's answer.
func (h *GuestHandler) UpdateRSVP(w http.ResponseWriter, r *http.Request) {
	eventID, guestID := pathVar(r, "eventID"), pathVar(r, "guestID")

	var req struct {
		Status models.RSVPStatus `json:"rsvp_status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !req.Status.IsValid() {
		http.Error(w, "Invalid RSVP status", http.StatusBadRequest)
		return
	}

	current, err := h.guests.GetGuest(r.Context(), eventID, guestID)
	if err != nil {
		h.logger.Error().Err(err).Str("guest_id", guestID).Msg("failed to load guest")
		http.Error(w, "Failed to load guest", http.StatusServiceUnavailable)
		return
	}
	if current == nil {
		http.Error(w, "Guest not found", http.StatusNotFound)
		return
	}

	updated, err := h.guests.UpdateRSVP(r.Context(), eventID, guestID, req.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Guest not found", http.StatusNotFound)
			return
		}
		h.logger.Error().Err(err).Str("guest_id", guestID).Msg("failed to update rsvp")
		http.Error(w, "Failed to update RSVP", http.StatusServiceUnavailable)
		return
	}

	if current.RSVPStatus != updated.RSVPStatus {
		operatorID, _ := authz.OperatorIDFromRequest(r)
		if err := h.notifications.NotifyRSVPOverride(r.Context(), eventID, guestID, operatorID, current.RSVPStatus, updated.RSVPStatus); err != nil {
			h.logger.Warn().Err(err).Str("guest_id", guestID).Msg("failed to record rsvp override")
		}
	}
	writeJSON(w, http.StatusOK, updated)
}

// SetCheckedIn is the manual toggle on the guest list.
func (h *GuestHandler) SetCheckedIn(w http.ResponseWriter, r *http.Request) {
	eventID, guestID := pathVar(r, "eventID"), pathVar(r, "guestID")

	var req struct {
		CheckedIn *bool `json:"checked_in"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CheckedIn == nil {
		http.Error(w, "checked_in is required", http.StatusBadRequest)
		return
	}

	operatorID, _ := authz.OperatorIDFromRequest(r)
	guest, err := h.machine.SetCheckedIn(r.Context(), eventID, guestID, *req.CheckedIn, operatorID)
	if err != nil {
		writeJSON(w, checkinStatus(err), map[string]string{
			"result":  checkin.Label("", err),
			"message": checkin.OperatorMessage("", err),
		})
		return
	}
	writeJSON(w, http.StatusOK, guest)
}

// Code returns the payload text a guest presents at the entrance.
func (h *GuestHandler) Code(w http.ResponseWriter, r *http.Request) {
	guest, ok := h.loadGuest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"code": checkin.Encode(guest.EventID, guest.ID),
	})
}

// CodePNG renders the guest's code as a QR image.
func (h *GuestHandler) CodePNG(w http.ResponseWriter, r *http.Request) {
	guest, ok := h.loadGuest(w, r)
	if !ok {
		return
	}

	size := checkin.DefaultQRSize
	if raw := strings.TrimSpace(r.URL.Query().Get("size")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 64 && parsed <= 2048 {
			size = parsed
		}
	}

	png, err := checkin.RenderPNG(checkin.Encode(guest.EventID, guest.ID), size)
	if err != nil {
		h.logger.Error().Err(err).Str("guest_id", guest.ID).Msg("failed to render code")
		http.Error(w, "Failed to render code", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// SendCode emails the guest their code with the QR image attached.
func (h *GuestHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	if h.mailer == nil {
		http.Error(w, "Email delivery is not configured", http.StatusServiceUnavailable)
		return
	}
	event, ok := lookupEvent(w, r, h.events, h.logger, pathVar(r, "eventID"))
	if !ok {
		return
	}
	guest, ok := h.loadGuest(w, r)
	if !ok {
		return
	}
	recipient := strings.TrimSpace(guest.Email)
	if recipient == "" {
		http.Error(w, "Guest has no email address", http.StatusUnprocessableEntity)
		return
	}

	code := checkin.Encode(guest.EventID, guest.ID)
	png, err := checkin.RenderPNG(code, checkin.DefaultQRSize)
	if err != nil {
		h.logger.Error().Err(err).Str("guest_id", guest.ID).Msg("failed to render code")
		http.Error(w, "Failed to render code", http.StatusInternalServerError)
		return
	}
	if err := h.mailer.SendCode(recipient, guest.Name, event.Name, code, png); err != nil {
		h.logger.Error().Err(err).Str("guest_id", guest.ID).Msg("failed to send code email")
		http.Error(w, "Failed to send code", http.StatusBadGateway)
		return
	}

	operatorID, _ := authz.OperatorIDFromRequest(r)
	if err := h.notifications.NotifyCodeSent(r.Context(), guest.EventID, guest.ID, operatorID, recipient); err != nil {
		h.logger.Warn().Err(err).Str("guest_id", guest.ID).Msg("failed to record code delivery")
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent", "recipient": recipient})
}

func (h *GuestHandler) loadGuest(w http.ResponseWriter, r *http.Request) (models.Guest, bool) {
	eventID, guestID := pathVar(r, "eventID"), pathVar(r, "guestID")
	guest, err := h.guests.GetGuest(r.Context(), eventID, guestID)
	if err != nil {
		h.logger.Error().Err(err).Str("guest_id", guestID).Msg("failed to load guest")
		http.Error(w, "Failed to load guest", http.StatusServiceUnavailable)
		return models.Guest{}, false
	}
	if guest == nil {
		http.Error(w, "Guest not found", http.StatusNotFound)
		return models.Guest{}, false
	}
	return *guest, true
}
