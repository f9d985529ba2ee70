package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/checkin"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
	"github.com/Mister-Mana/Invitopia-App-sub002/internal/scanner"
)

func TestCheckinStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{&checkin.DecodeError{Reason: "missing EVENT segment"}, http.StatusUnprocessableEntity},
		{checkin.ErrEventMismatch, http.StatusConflict},
		{checkin.ErrGuestNotFound, http.StatusNotFound},
		{checkin.ErrGuestDeclined, http.StatusForbidden},
		{&checkin.DirectoryWriteError{EventID: "evt1", GuestID: "g42", Err: errors.New("disk full")}, http.StatusServiceUnavailable},
		{fmt.Errorf("%w: lookup guest g42: %w", checkin.ErrDirectoryRead, errors.New("timeout")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := checkinStatus(tc.err); got != tc.want {
			t.Errorf("checkinStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestScannerStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("open camera: %w", scanner.ErrCameraUnavailable), http.StatusServiceUnavailable},
		{scanner.ErrCameraBusy, http.StatusConflict},
		{fmt.Errorf("%w: open user camera: %w", scanner.ErrCameraUnavailable, scanner.ErrCameraBusy), http.StatusConflict},
		{scanner.ErrPushUnsupported, http.StatusConflict},
		{scanner.ErrSessionNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := scannerStatus(tc.err); got != tc.want {
			t.Errorf("scannerStatus(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestExtractRolesFromClaims(t *testing.T) {
	cases := []struct {
		name   string
		claims jwt.MapClaims
		want   []models.Role
		ok     bool
	}{
		{name: "roles list", claims: jwt.MapClaims{"roles": []interface{}{"staff"}}, want: []models.Role{models.RoleViewer, models.RoleStaff}, ok: true},
		{name: "single role", claims: jwt.MapClaims{"role": "admin"}, want: []models.Role{models.RoleViewer, models.RoleAdmin}, ok: true},
		{name: "unknown role", claims: jwt.MapClaims{"roles": []interface{}{"owner"}}, ok: false},
		{name: "no roles", claims: jwt.MapClaims{}, ok: false},
		{name: "wrong type", claims: jwt.MapClaims{"roles": 3}, ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractRolesFromClaims(tc.claims)
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("roles = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("roles = %v, want %v", got, tc.want)
				}
			}
		})
	}
}
