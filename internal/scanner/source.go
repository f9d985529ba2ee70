package scanner

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"
)

// Facing selects which camera of a device is used.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// ParseFacing accepts the facing names used by browsers. Empty means environment.
func ParseFacing(s string) (Facing, error) {
	switch Facing(strings.ToLower(strings.TrimSpace(s))) {
	case "", FacingEnvironment:
		return FacingEnvironment, nil
	case FacingUser:
		return FacingUser, nil
	default:
		return "", fmt.Errorf("unknown camera facing %q", s)
	}
}

// Other returns the opposite camera.
func (f Facing) Other() Facing {
	if f == FacingUser {
		return FacingEnvironment
	}
	return FacingUser
}

var (
	// ErrCameraUnavailable is returned when a camera cannot be opened.
	ErrCameraUnavailable = errors.New("camera unavailable")
	// ErrCameraBusy is returned by sources that already have an open stream.
	ErrCameraBusy = errors.New("camera already in use")
	// ErrNoFrame means the stream has nothing new to offer yet.
	ErrNoFrame = errors.New("no frame available")
	// ErrStreamClosed is returned by a stream after Close.
	ErrStreamClosed = errors.New("stream closed")
	// ErrSessionClosed is returned when operating on a stopped session.
	ErrSessionClosed = errors.New("scanner session closed")
	// ErrSessionNotFound is returned by the registry for unknown session ids.
	ErrSessionNotFound = errors.New("scanner session not found")
)

// Source is a camera. At most one stream may be open at a time.
type Source interface {
	Open(ctx context.Context, facing Facing) (Stream, error)
}

// Stream yields frames from an open camera. Close releases the camera.
type Stream interface {
	Frame(ctx context.Context) (image.Image, error)
	Close() error
}
