package scanner

import (
	"context"
	"errors"
	"image"
	"sync"

	"github.com/rs/zerolog"
)

// Registry keeps one Manager per device and indexes running sessions by id.
type Registry struct {
	newSource   func(deviceID string) Source
	sampler     *Sampler
	resultLimit int
	logger      zerolog.Logger

	mu       sync.Mutex
	managers map[string]*Manager
	sessions map[string]*Session
	devices  map[string]string // session id -> device id
}

// ErrPushUnsupported is returned when frames are uploaded to a device that has its own camera.
var ErrPushUnsupported = errors.New("device does not accept uploaded frames")

// NewRegistry builds a registry. newSource is called once per device id.
func NewRegistry(newSource func(deviceID string) Source, sampler *Sampler, resultLimit int, logger zerolog.Logger) *Registry {
	return &Registry{
		newSource:   newSource,
		sampler:     sampler,
		resultLimit: resultLimit,
		logger:      logger,
		managers:    make(map[string]*Manager),
		sessions:    make(map[string]*Session),
		devices:     make(map[string]string),
	}
}

func (r *Registry) manager(deviceID string) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.managers[deviceID]
	if !ok {
		m = NewManager(r.newSource(deviceID), r.sampler, r.resultLimit, r.logger.With().Str("device_id", deviceID).Logger())
		r.managers[deviceID] = m
	}
	return m
}

// Start opens a session on the device, replacing the device's previous session.
func (r *Registry) Start(ctx context.Context, deviceID, eventID string, facing Facing, handle ResultFunc) (*Session, error) {
	s, err := r.manager(deviceID).Start(ctx, eventID, facing, handle)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.sessions[s.ID()] = s
	r.devices[s.ID()] = deviceID
	r.mu.Unlock()

	go func() {
		<-s.Done()
		r.mu.Lock()
		delete(r.sessions, s.ID())
		delete(r.devices, s.ID())
		r.mu.Unlock()
	}()
	return s, nil
}

// Session looks up a running session.
func (r *Registry) Session(id string) (*Session, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok || !s.Active() {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Stop ends a session by id.
func (r *Registry) Stop(id string) error {
	s, err := r.Session(id)
	if err != nil {
		return err
	}
	s.Stop()
	return nil
}

// Push uploads a frame to the camera behind a session.
func (r *Registry) Push(sessionID string, img image.Image) error {
	if _, err := r.Session(sessionID); err != nil {
		return err
	}
	r.mu.Lock()
	deviceID := r.devices[sessionID]
	m := r.managers[deviceID]
	r.mu.Unlock()
	if m == nil {
		return ErrSessionNotFound
	}
	ps, ok := m.Source().(*PushSource)
	if !ok {
		return ErrPushUnsupported
	}
	return ps.Push(img)
}

// Shutdown stops every session and releases every camera.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	managers := make([]*Manager, 0, len(r.managers))
	for _, m := range r.managers {
		managers = append(managers, m)
	}
	r.mu.Unlock()
	for _, m := range managers {
		m.Shutdown()
	}
}
