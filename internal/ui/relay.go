package ui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/muurk/lanscan/internal/discovery"
)

// progressRelay decouples the scanner's fold loop from the Bubble Tea
// event loop. Progress never blocks: only the most recent report is kept,
// and a newly found peer survives being overtaken by a countdown.
type progressRelay struct {
	mu      sync.Mutex
	pending *discovery.Progress
	wake    chan struct{}
}

func newProgressRelay() *progressRelay {
	return &progressRelay{wake: make(chan struct{}, 1)}
}

// Progress implements discovery.Reporter
func (r *progressRelay) Progress(p discovery.Progress) {
	r.mu.Lock()
	if prev := r.pending; prev != nil && prev.New && !p.New {
		p.Found, p.New = prev.Found, true
	}
	r.pending = &p
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// take returns the pending report, if any, and clears it
func (r *progressRelay) take() (discovery.Progress, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return discovery.Progress{}, false
	}
	p := *r.pending
	r.pending = nil
	return p, true
}

// forward delivers reports to send until ctx is done
func (r *progressRelay) forward(ctx context.Context, send func(tea.Msg)) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
			if p, ok := r.take(); ok {
				send(progressMsg(p))
			}
		}
	}
}
