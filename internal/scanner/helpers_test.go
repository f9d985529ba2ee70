package scanner

import (
	"context"
	"image"
	"sync"
	"testing"
	"time"
)

// textFrame is a frame whose code is known without running a real decoder.
type textFrame struct {
	*image.Gray
	text string
}

func frame(text string) image.Image {
	return textFrame{Gray: image.NewGray(image.Rect(0, 0, 1, 1)), text: text}
}

type textDecoder struct{}

func (textDecoder) Decode(img image.Image) (string, error) {
	if f, ok := img.(textFrame); ok {
		return f.text, nil
	}
	return "", nil
}

type fakeSource struct {
	mu      sync.Mutex
	opens   int
	closes  int
	open    int
	maxOpen int
	facings []Facing
	openErr error
}

func (s *fakeSource) Open(_ context.Context, facing Facing) (Stream, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return nil, s.openErr
	}
	s.opens++
	s.open++
	if s.open > s.maxOpen {
		s.maxOpen = s.open
	}
	s.facings = append(s.facings, facing)
	return &fakeStream{src: s}, nil
}

func (s *fakeSource) counts() (opens, closes, maxOpen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens, s.closes, s.maxOpen
}

type fakeStream struct {
	src  *fakeSource
	once sync.Once
}

func (st *fakeStream) Frame(context.Context) (image.Image, error) {
	return nil, ErrNoFrame
}

func (st *fakeStream) Close() error {
	st.once.Do(func() {
		st.src.mu.Lock()
		st.src.closes++
		st.src.open--
		st.src.mu.Unlock()
	})
	return nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func echoResult(_ context.Context, code string) Outcome {
	return Outcome{Result: "seen", Message: code}
}
