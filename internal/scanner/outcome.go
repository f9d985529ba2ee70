package scanner

import (
	"context"
	"sync"
	"time"

	"github.com/Mister-Mana/Invitopia-App-sub002/internal/models"
)

// Outcome is what the desk shows after a code was read. Seq increases by one
// per outcome within a session and is the cursor clients should poll with.
type Outcome struct {
	Seq     uint64        `json:"seq"`
	Code    string        `json:"code"`
	Result  string        `json:"result"`
	Message string        `json:"message"`
	Guest   *models.Guest `json:"guest,omitempty"`
	At      time.Time     `json:"at"`
}

// ResultFunc turns a decoded code into an outcome.
type ResultFunc func(ctx context.Context, code string) Outcome

// outcomeRing keeps the most recent outcomes, oldest first.
type outcomeRing struct {
	mu    sync.Mutex
	items []Outcome
	limit int
	seq   uint64
}

func newOutcomeRing(limit int) *outcomeRing {
	if limit <= 0 {
		limit = 50
	}
	return &outcomeRing{limit: limit}
}

func (r *outcomeRing) add(o Outcome) Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	o.Seq = r.seq
	if len(r.items) == r.limit {
		copy(r.items, r.items[1:])
		r.items = r.items[:len(r.items)-1]
	}
	r.items = append(r.items, o)
	return o
}

// since is exclusive, so outcomes sharing a timestamp can be missed. Use after.
func (r *outcomeRing) since(t time.Time) []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, 0, len(r.items))
	for _, o := range r.items {
		if o.At.After(t) {
			out = append(out, o)
		}
	}
	return out
}

func (r *outcomeRing) after(seq uint64) []Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Outcome, 0, len(r.items))
	for _, o := range r.items {
		if o.Seq > seq {
			out = append(out, o)
		}
	}
	return out
}
