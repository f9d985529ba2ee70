package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/authz"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/notification"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/repository"
)

type EventHandler struct {
	events        repository.EventRepository
	guests        repository.GuestRepository
	notifications notification.Service
	logger        zerolog.Logger
}

func NewEventHandler(events repository.EventRepository, guests repository.GuestRepository, notifications notification.Service, logger zerolog.Logger) *EventHandler {
	return &EventHandler{
		events:        events,
		guests:        guests,
		notifications: notifications,
		logger:        logger.With().Str("handler", "event").Logger(),
	}
}

type createEventRequest struct {
	Name     string     `json:"name"`
	Location string     `json:"location"`
	StartsAt *time.Time `json:"starts_at"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		http.Error(w, "Event name is required", http.StatusBadRequest)
		return
	}

	event := models.Event{
		Name:     req.Name,
		Location: req.Location,
		StartsAt: req.StartsAt,
	}
	if operatorID, ok := authz.OperatorIDFromRequest(r); ok {
		event.CreatedBy = &operatorID
	}

	created, err := h.events.CreateEvent(r.Context(), event)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to create event")
		http.Error(w, "Failed to create event", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list events")
		http.Error(w, "Failed to list events", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *EventHandler) Stats(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	guests, err := h.guests.ListGuests(r.Context(), event.ID)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to list guests for stats")
		http.Error(w, "Failed to compute statistics", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, models.ComputeStats(event.ID, guests))
}

func (h *EventHandler) Activity(w http.ResponseWriter, r *http.Request) {
	event, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	limit := 25
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	activities, err := h.notifications.ListRecent(r.Context(), event.ID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("event_id", event.ID).Msg("failed to list activity")
		http.Error(w, "Failed to list activity", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
	})
}

func (h *EventHandler) loadEvent(w http.ResponseWriter, r *http.Request) (models.Event, bool) {
	eventID := pathVar(r, "eventID")
	if eventID == "" {
		http.Error(w, "Event ID is required", http.StatusBadRequest)
		return models.Event{}, false
	}
	return lookupEvent(w, r, h.events, h.logger, eventID)
}

func lookupEvent(w http.ResponseWriter, r *http.Request, events repository.EventRepository, logger zerolog.Logger, eventID string) (models.Event, bool) {
	event, err := events.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Event not found", http.StatusNotFound)
			return models.Event{}, false
		}
		logger.Error().Err(err).Str("event_id", eventID).Msg("failed to load event")
		http.Error(w, "Failed to load event", http.StatusServiceUnavailable)
		return models.Event{}, false
	}
	return event, true
}
