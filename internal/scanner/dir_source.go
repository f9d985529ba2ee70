package scanner

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// DirSource reads snapshots a webcam daemon writes into <root>/<facing>/.
// Each call to Frame returns the newest image if it changed since the last call.
type DirSource struct {
	root string

	mu   sync.Mutex
	open bool
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) Open(_ context.Context, facing Facing) (Stream, error) {
	dir := filepath.Join(s.root, string(facing))
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil, ErrCameraBusy
	}
	s.open = true
	return &dirStream{source: s, dir: dir}, nil
}

func (s *DirSource) release() {
	s.mu.Lock()
	s.open = false
	s.mu.Unlock()
}

type dirStream struct {
	source *DirSource
	dir    string

	mu       sync.Mutex
	lastName string
	lastMod  time.Time
	closed   bool
}

var snapshotExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

func (st *dirStream) Frame(_ context.Context) (image.Image, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil, ErrStreamClosed
	}

	entries, err := os.ReadDir(st.dir)
	if err != nil {
		return nil, err
	}
	var (
		newest    string
		newestMod time.Time
	)
	for _, e := range entries {
		if e.IsDir() || !snapshotExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(newestMod) {
			newest, newestMod = e.Name(), info.ModTime()
		}
	}
	if newest == "" || (newest == st.lastName && !newestMod.After(st.lastMod)) {
		return nil, ErrNoFrame
	}

	f, err := os.Open(filepath.Join(st.dir, newest))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		// the daemon may still be writing it
		return nil, ErrNoFrame
	}
	st.lastName, st.lastMod = newest, newestMod
	return img, nil
}

func (st *dirStream) Close() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.closed {
		return nil
	}
	st.closed = true
	st.source.release()
	return nil
}
