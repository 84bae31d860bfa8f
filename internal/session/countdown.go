package session

import (
	"sync"
	"time"
)

// Countdown counts whole seconds down to zero. Its only outputs are the
// remaining values on Ticks and a single close of Expired; it never calls
// back into the session.
type Countdown struct {
	ticks    chan int
	expired  chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

// StartCountdown begins counting seconds down, one step per period.
func StartCountdown(seconds int, period time.Duration) *Countdown {
	c := &Countdown{
		ticks:   make(chan int, 1),
		expired: make(chan struct{}),
		stop:    make(chan struct{}),
	}
	go c.run(seconds, period)
	return c
}

// Ticks delivers the remaining seconds after each step. A slow reader only
// sees the latest value. The channel closes when the countdown ends.
func (c *Countdown) Ticks() <-chan int { return c.ticks }

// Expired is closed once when the count reaches zero. It stays open if the
// countdown was stopped first.
func (c *Countdown) Expired() <-chan struct{} { return c.expired }

// Stop cancels the countdown. Safe to call more than once.
func (c *Countdown) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Countdown) run(remaining int, period time.Duration) {
	defer close(c.ticks)
	if remaining <= 0 {
		close(c.expired)
		return
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			remaining--
			c.emit(remaining)
			if remaining <= 0 {
				close(c.expired)
				return
			}
		}
	}
}

func (c *Countdown) emit(remaining int) {
	select {
	case c.ticks <- remaining:
		return
	default:
	}
	select {
	case <-c.ticks:
	default:
	}
	c.ticks <- remaining
}
