package syncer

import (
	"sync"
	"time"

	"hubview/internal/view"
)

type Phase int

const (
	PhaseConnecting Phase = iota
	PhaseLoading
	PhaseLive
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseConnecting:
		return "connecting"
	case PhaseLoading:
		return "loading"
	case PhaseLive:
		return "live"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Update is one published view of the engine. Status is the most recent
// transient message (for example a failed service call) and stays set until
// replaced.
type Update struct {
	Phase      Phase
	Model      view.Model
	HubVersion string
	Status     string
	StatusErr  bool
	StatusAt   time.Time
	Err        error
}

// publisher holds the latest Update and offers it on a one-slot channel. A
// slow reader only ever sees the newest value.
type publisher struct {
	mu     sync.Mutex
	last   Update
	ch     chan Update
	closed bool
}

func newPublisher() *publisher {
	return &publisher{ch: make(chan Update, 1)}
}

func (p *publisher) C() <-chan Update {
	return p.ch
}

func (p *publisher) Latest() Update {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func (p *publisher) publish(mutate func(*Update)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	mutate(&p.last)
	select {
	case <-p.ch:
	default:
	}
	p.ch <- p.last
}

// close publishes the terminal update and closes the channel. Later
// publishes are dropped.
func (p *publisher) close(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.last.Phase = PhaseStopped
	p.last.Err = err
	select {
	case <-p.ch:
	default:
	}
	p.ch <- p.last
	close(p.ch)
}
