package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/scanner"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// checkinStatus maps a check-in result to the HTTP status the desk receives.
func checkinStatus(err error) int {
	var writeErr *checkin.DirectoryWriteError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, checkin.ErrMalformed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkin.ErrEventMismatch):
		return http.StatusConflict
	case errors.Is(err, checkin.ErrGuestNotFound):
		return http.StatusNotFound
	case errors.Is(err, checkin.ErrGuestDeclined):
		return http.StatusForbidden
	case errors.As(err, &writeErr), errors.Is(err, checkin.ErrDirectoryRead):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func scannerStatus(err error) int {
	switch {
	case errors.Is(err, scanner.ErrCameraBusy), errors.Is(err, scanner.ErrPushUnsupported), errors.Is(err, scanner.ErrStreamClosed):
		return http.StatusConflict
	case errors.Is(err, scanner.ErrCameraUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, scanner.ErrSessionNotFound), errors.Is(err, scanner.ErrSessionClosed):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func pathVar(r *http.Request, name string) string {
	return strings.TrimSpace(mux.Vars(r)[name])
}
