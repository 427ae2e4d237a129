package app

import (
	"sync"
	"time"
)

// countdown is a cancellable per-room ticker. The tick callback reacquires the
// session lock and re-checks phase, so a tick that races with cancellation is
// a no-op rather than a zombie mutation. Stop never blocks and is safe to
// call from inside a tick.
type countdown struct {
	stop chan struct{}
	once sync.Once
}

// startCountdown ticks at the given interval until tick returns false or
// Stop is called.
func startCountdown(interval time.Duration, tick func() bool) *countdown {
	c := &countdown{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-c.stop:
				return
			case <-ticker.C:
				if !tick() {
					return
				}
			}
		}
	}()
	return c
}

func (c *countdown) Stop() {
	c.once.Do(func() { close(c.stop) })
}

// stopped reports whether Stop has been called. Ticks already dispatched may
// still be in flight; callers guard against those by phase checks.
func (c *countdown) stopped() bool {
	select {
	case <-c.stop:
		return true
	default:
		return false
	}
}
