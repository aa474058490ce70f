package transcode

import (
	"context"
	"sync"

	"hlsforge/hls"
)

// Outcome is the terminal report of a single encode task. Exactly one
// of SubManifest or Err is set.
type Outcome struct {
	Rendition   hls.Rendition
	SubManifest string
	Err         *EncodeError
}

// tracker is a barrier over a fixed number of encode outcomes. Outcomes
// arrive from independent goroutines in any order; the transition to
// the expected count releases waiters exactly once, with the complete
// outcome list. It never fires early on the first failure.
type tracker struct {
	expected int

	mu       sync.Mutex
	outcomes []Outcome
	fired    bool
	done     chan struct{}
}

func newTracker(expected int) *tracker {
	return &tracker{
		expected: expected,
		outcomes: make([]Outcome, 0, expected),
		done:     make(chan struct{}),
	}
}

// record accepts one outcome. Records beyond the expected count are
// dropped, so a misbehaving submitter cannot re-fire the barrier.
func (t *tracker) record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired {
		return
	}
	t.outcomes = append(t.outcomes, o)
	if len(t.outcomes) == t.expected {
		t.fired = true
		close(t.done)
	}
}

// wait blocks until every expected outcome has been recorded, or until
// ctx fails. The returned slice is in arrival order; callers that need
// determinism must key it by rendition.
func (t *tracker) wait(ctx context.Context) ([]Outcome, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcomes, nil
}
