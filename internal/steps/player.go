package steps

import (
	"sync"
	"time"
)

// DefaultInterval is the autoplay advance interval.
const DefaultInterval = 2000 * time.Millisecond

// Player drives a Navigator forward on a repeating timer. Reaching
// the last step stops playback; changing speed while running restarts
// the timer with the new interval; Stop tears the timer down so no
// further callbacks fire.
type Player struct {
	mu       sync.Mutex
	nav      *Navigator
	interval time.Duration
	onStep   func(Step)
	stop     chan struct{}
}

// NewPlayer wraps a navigator. onStep, if non-nil, is invoked after
// every automatic advance.
func NewPlayer(nav *Navigator, onStep func(Step)) *Player {
	return &Player{
		nav:      nav,
		interval: DefaultInterval,
		onStep:   onStep,
	}
}

// Playing reports whether the timer is running.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop != nil
}

// Toggle starts playback if stopped and stops it if running,
// returning the resulting state.
func (p *Player) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		p.stopLocked()
		return false
	}
	p.startLocked()
	return true
}

// Play starts the autoplay timer. Starting an already running player
// is a no-op.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop == nil {
		p.startLocked()
	}
}

// Stop halts playback and clears the timer handle.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// SetSpeed changes the advance interval. A running player restarts
// its timer so the new interval takes effect immediately.
// Non-positive intervals are ignored.
func (p *Player) SetSpeed(interval time.Duration) {
	if interval <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.interval = interval
	if p.stop != nil {
		p.stopLocked()
		p.startLocked()
	}
}

// Do runs fn against the navigator under the player's lock, so user
// navigation and timer ticks never interleave mid-update.
func (p *Player) Do(fn func(*Navigator)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(p.nav)
}

// Interval returns the configured advance interval.
func (p *Player) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}

func (p *Player) startLocked() {
	stop := make(chan struct{})
	p.stop = stop
	ticker := time.NewTicker(p.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if !p.advance(stop) {
					return
				}
			}
		}
	}()
}

func (p *Player) stopLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// advance moves the navigator one step forward, stopping playback at
// the last step. It reports whether the timer should keep running.
func (p *Player) advance(stop chan struct{}) bool {
	p.mu.Lock()
	if p.stop != stop {
		// A restart or Stop raced this tick; the old timer yields.
		p.mu.Unlock()
		return false
	}
	if p.nav.AtEnd() {
		p.stopLocked()
		p.mu.Unlock()
		return false
	}
	p.nav.Next()
	step, ok := p.nav.Current()
	atEnd := p.nav.AtEnd()
	if atEnd {
		p.stopLocked()
	}
	p.mu.Unlock()

	if ok && p.onStep != nil {
		p.onStep(step)
	}
	return !atEnd
}
