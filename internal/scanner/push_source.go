package scanner

import (
	"context"
	"image"
	"sync"
)

// PushSource is a camera owned by a remote client that uploads frames.
// The browser keeps the physical device; the server only sees the frames.
type PushSource struct {
	mu     sync.Mutex
	active *pushStream
}

func NewPushSource() *PushSource {
	return &PushSource{}
}

func (s *PushSource) Open(_ context.Context, facing Facing) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil {
		return nil, ErrCameraBusy
	}
	st := &pushStream{source: s, facing: facing}
	s.active = st
	return st, nil
}

// Push hands a frame to the open stream, replacing any frame not yet sampled.
func (s *PushSource) Push(img image.Image) error {
	s.mu.Lock()
	st := s.active
	s.mu.Unlock()
	if st == nil {
		return ErrStreamClosed
	}
	return st.put(img)
}

// Facing reports the facing of the open stream, if any.
func (s *PushSource) Facing() (Facing, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return "", false
	}
	return s.active.facing, true
}

func (s *PushSource) release(st *pushStream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == st {
		s.active = nil
	}
}

type pushStream struct {
	source *PushSource
	facing Facing

	mu     sync.Mutex
	frame  image.Image
	closed bool
}

func (st *pushStream) put(img image.Image) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return ErrStreamClosed
	}
	st.frame = img
	return nil
}

func (st *pushStream) Frame(_ context.Context) (image.Image, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, ErrStreamClosed
	}
	if st.frame == nil {
		return nil, ErrNoFrame
	}
	img := st.frame
	st.frame = nil
	return img, nil
}

func (st *pushStream) Close() error {
	st.mu.Lock()
	if st.closed {
		st.mu.Unlock()
		return nil
	}
	st.closed = true
	st.frame = nil
	st.mu.Unlock()
	st.source.release(st)
	return nil
}
