package tram

import (
	"sync"
	"time"
)

const DefaultPollInterval = 60 * time.Second

// Poller calls a function on a fixed period. At most one subscription
// is live at a time: starting a new one stops the previous.
//
// Stop never blocks, so it is safe to call while holding a lock that
// the polled function also takes. Use Wait to block until the polling
// goroutine has exited.
type Poller struct {
	// Creates the ticker driving the calls. Returns the tick
	// channel and a function releasing the ticker. Defaults to
	// time.NewTicker.
	NewTicker func(d time.Duration) (<-chan time.Time, func())

	mutex sync.Mutex
	stop  chan struct{}
	wg    sync.WaitGroup
}

// Start calls fn every period until stopped.
func (p *Poller) Start(fn func(), period time.Duration) {
	p.start(fn, period, false)
}

// StartNow is like Start, but also calls fn right away from the
// polling goroutine.
func (p *Poller) StartNow(fn func(), period time.Duration) {
	p.start(fn, period, true)
}

func (p *Poller) start(fn func(), period time.Duration, now bool) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.stopLocked()

	if period <= 0 {
		period = DefaultPollInterval
	}

	newTicker := p.NewTicker
	if newTicker == nil {
		newTicker = systemTicker
	}
	ticks, release := newTicker(period)

	stop := make(chan struct{})
	p.stop = stop

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer release()

		if now {
			select {
			case <-stop:
				return
			default:
				fn()
			}
		}

		for {
			select {
			case <-stop:
				return
			case <-ticks:
				// Stop may have raced with the tick.
				select {
				case <-stop:
					return
				default:
				}
				fn()
			}
		}
	}()
}

// Stop ends the current subscription, if any.
func (p *Poller) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

// Running reports whether a subscription is live.
func (p *Poller) Running() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.stop != nil
}

// Wait blocks until all polling goroutines have exited.
func (p *Poller) Wait() {
	p.wg.Wait()
}

func systemTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}
