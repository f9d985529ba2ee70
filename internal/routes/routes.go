package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/authz"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/handlers"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// Handlers groups everything the router dispatches to.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Events   *handlers.EventHandler
	Guests   *handlers.GuestHandler
	CheckIns *handlers.CheckInHandler
	Scanner  *handlers.ScannerHandler
	Health   http.HandlerFunc
}

// NewRouter sets up the API routes. scanRate caps scan and frame requests per
// client IP per minute; zero disables the limit.
func NewRouter(hs Handlers, scanRate int) *mux.Router {
	router := mux.NewRouter()

	health := hs.Health
	if health == nil {
		health = handlers.HealthCheck(nil)
	}
	router.HandleFunc("/health", health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Public auth endpoints
	router.HandleFunc("/api/login", hs.Auth.Login).Methods(http.MethodPost)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(hs.Auth.JWTMiddleware)

	limit := func(h http.Handler) http.Handler { return h }
	if scanRate > 0 {
		limit = httprate.LimitByIP(scanRate, time.Minute)
	}
	staff := authz.RequireRole(models.RoleStaff)
	admin := authz.RequireRole(models.RoleAdmin)

	api.HandleFunc("/events", hs.Events.List).Methods(http.MethodGet)
	api.Handle("/events", admin(http.HandlerFunc(hs.Events.Create))).Methods(http.MethodPost)
	api.HandleFunc("/events/{eventID}", hs.Events.Get).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}/stats", hs.Events.Stats).Methods(http.MethodGet)
	api.HandleFunc("/events/{eventID}/activity", hs.Events.Activity).Methods(http.MethodGet)

	api.HandleFunc("/events/{eventID}/guests", hs.Guests.List).Methods(http.MethodGet)
	api.Handle("/events/{eventID}/guests", admin(http.HandlerFunc(hs.Guests.Create))).Methods(http.MethodPost)
	api.Handle("/events/{eventID}/guests/{guestID}/rsvp", admin(http.HandlerFunc(hs.Guests.UpdateRSVP))).Methods(http.MethodPut)
	api.Handle("/events/{eventID}/guests/{guestID}/checkin", staff(http.HandlerFunc(hs.Guests.SetCheckedIn))).Methods(http.MethodPut)
	api.Handle("/events/{eventID}/guests/{guestID}/code", staff(http.HandlerFunc(hs.Guests.Code))).Methods(http.MethodGet)
	api.Handle("/events/{eventID}/guests/{guestID}/code.png", staff(http.HandlerFunc(hs.Guests.CodePNG))).Methods(http.MethodGet)
	api.Handle("/events/{eventID}/guests/{guestID}/code/send", staff(http.HandlerFunc(hs.Guests.SendCode))).Methods(http.MethodPost)

	api.Handle("/events/{eventID}/checkin/scan", staff(limit(http.HandlerFunc(hs.CheckIns.Scan)))).Methods(http.MethodPost)

	api.Handle("/events/{eventID}/scanner/sessions", staff(http.HandlerFunc(hs.Scanner.StartSession))).Methods(http.MethodPost)
	api.Handle("/scanner/sessions/{sessionID}", staff(http.HandlerFunc(hs.Scanner.StopSession))).Methods(http.MethodDelete)
	api.Handle("/scanner/sessions/{sessionID}/camera", staff(http.HandlerFunc(hs.Scanner.SwitchCamera))).Methods(http.MethodPut)
	api.Handle("/scanner/sessions/{sessionID}/frames", staff(limit(http.HandlerFunc(hs.Scanner.PushFrame)))).Methods(http.MethodPost)
	api.Handle("/scanner/sessions/{sessionID}/results", staff(http.HandlerFunc(hs.Scanner.Results))).Methods(http.MethodGet)

	return router
}
