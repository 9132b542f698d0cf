package session

import (
	"sync"
	"time"
)

// Ticker is an active clock subscription.
type Ticker interface {
	Stop()
}

// Clock delivers periodic callbacks. The engine subscribes when a session
// starts running and stops the subscription on every exit from running.
type Clock interface {
	Every(d time.Duration, fn func()) Ticker
}

// RealClock fires callbacks from a time.Ticker goroutine.
type RealClock struct{}

// Every implements Clock.
func (RealClock) Every(d time.Duration, fn func()) Ticker {
	t := &realTicker{
		ticker: time.NewTicker(d),
		done:   make(chan struct{}),
	}
	go t.loop(fn)
	return t
}

type realTicker struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *realTicker) loop(fn func()) {
	for {
		select {
		case <-t.done:
			return
		case <-t.ticker.C:
			select {
			case <-t.done:
				return
			default:
			}
			fn()
		}
	}
}

func (t *realTicker) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}

// ManualClock is a deterministic Clock advanced by hand, for tests of code
// that drives an Engine.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	clock   *ManualClock
	fn      func()
	stopped bool
}

// NewManualClock returns an empty ManualClock.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Every implements Clock. The interval is ignored; each Advance step fires
// every live subscription once.
func (c *ManualClock) Every(_ time.Duration, fn func()) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{clock: c, fn: fn}
	c.tickers = append(c.tickers, t)
	return t
}

// Advance fires n ticks.
func (c *ManualClock) Advance(n int) {
	for i := 0; i < n; i++ {
		for _, t := range c.live() {
			if t.isStopped() {
				continue
			}
			t.fn()
		}
	}
}

// Active reports the number of subscriptions that were not stopped.
func (c *ManualClock) Active() int {
	return len(c.live())
}

func (c *ManualClock) live() []*manualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*manualTicker, 0, len(c.tickers))
	for _, t := range c.tickers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

func (t *manualTicker) isStopped() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	return t.stopped
}

func (t *manualTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
