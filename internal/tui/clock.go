package tui

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/tempotype/internal/session"
)

// tickMsg is one countdown tick. gen identifies the subscription it
// belongs to; ticks from a stopped subscription are dropped.
type tickMsg struct {
	gen int
}

// teaClock turns engine subscriptions into Bubble Tea tick commands so the
// countdown runs on the program's event loop.
type teaClock struct {
	mu       sync.Mutex
	gen      int
	fn       func()
	interval time.Duration
	active   bool
	armed    bool
}

type teaTicker struct {
	clock *teaClock
	gen   int
}

// Every implements session.Clock. The first tick is scheduled by the next
// call to pending.
func (c *teaClock) Every(d time.Duration, fn func()) session.Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.fn = fn
	c.interval = d
	c.active = true
	c.armed = true
	return &teaTicker{clock: c, gen: c.gen}
}

func (t *teaTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != t.gen {
		return
	}
	c.active = false
	c.armed = false
	c.fn = nil
}

// pending returns the first tick of a fresh subscription, if any.
func (c *teaClock) pending() tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.armed || !c.active {
		return nil
	}
	c.armed = false
	return tickAfter(c.interval, c.gen)
}

// fire returns the callback for a tick, or nil when the tick is stale.
func (c *teaClock) fire(gen int) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || gen != c.gen {
		return nil
	}
	return c.fn
}

// next schedules the following tick while the subscription is live.
func (c *teaClock) next(gen int) tea.Cmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.active || gen != c.gen {
		return nil
	}
	return tickAfter(c.interval, gen)
}

func tickAfter(d time.Duration, gen int) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}
