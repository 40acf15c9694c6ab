package tram

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Hands out tick channels the test drives by hand.
type fakeTicker struct {
	mutex    sync.Mutex
	tickers  []chan time.Time
	periods  []time.Duration
	released int
}

func (f *fakeTicker) NewTicker(d time.Duration) (<-chan time.Time, func()) {
	f.mutex.Lock()
	defer f.mutex.Unlock()

	ch := make(chan time.Time)
	f.tickers = append(f.tickers, ch)
	f.periods = append(f.periods, d)
	return ch, func() {
		f.mutex.Lock()
		defer f.mutex.Unlock()
		f.released++
	}
}

// Delivers a tick on the most recently created ticker.
func (f *fakeTicker) Tick(t *testing.T) {
	f.mutex.Lock()
	require.NotEmpty(t, f.tickers)
	ch := f.tickers[len(f.tickers)-1]
	f.mutex.Unlock()

	select {
	case ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("tick not consumed")
	}
}

func (f *fakeTicker) Count() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return len(f.tickers)
}

func (f *fakeTicker) Released() int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.released
}

func TestPollerStart(t *testing.T) {
	ticker := &fakeTicker{}
	p := &Poller{NewTicker: ticker.NewTicker}

	var calls int32
	p.Start(func() { atomic.AddInt32(&calls, 1) }, 5*time.Second)
	assert.True(t, p.Running())
	assert.Equal(t, []time.Duration{5 * time.Second}, ticker.periods)

	// Nothing before the first tick.
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	ticker.Tick(t)
	ticker.Tick(t)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, time.Millisecond)

	p.Stop()
	p.Wait()
	assert.False(t, p.Running())
	assert.Equal(t, 1, ticker.Released())
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestPollerStartNow(t *testing.T) {
	ticker := &fakeTicker{}
	p := &Poller{NewTicker: ticker.NewTicker}

	var calls int32
	p.StartNow(func() { atomic.AddInt32(&calls, 1) }, time.Minute)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)

	ticker.Tick(t)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, time.Millisecond)

	p.Stop()
	p.Wait()
}

func TestPollerRestartReplacesSubscription(t *testing.T) {
	ticker := &fakeTicker{}
	p := &Poller{NewTicker: ticker.NewTicker}

	var first, second int32
	p.Start(func() { atomic.AddInt32(&first, 1) }, time.Minute)
	p.Start(func() { atomic.AddInt32(&second, 1) }, time.Minute)

	assert.Eventually(t, func() bool { return ticker.Released() == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, 2, ticker.Count())

	ticker.Tick(t)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&second) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&first))

	p.Stop()
	p.Wait()
	assert.Equal(t, 2, ticker.Released())
}

func TestPollerDefaultPeriod(t *testing.T) {
	ticker := &fakeTicker{}
	p := &Poller{NewTicker: ticker.NewTicker}

	p.Start(func() {}, 0)
	p.Stop()
	p.Wait()

	assert.Equal(t, []time.Duration{DefaultPollInterval}, ticker.periods)
}

func TestPollerStopIdempotent(t *testing.T) {
	p := &Poller{}
	p.Stop()
	p.Start(func() {}, time.Hour)
	p.Stop()
	p.Stop()
	p.Wait()
	assert.False(t, p.Running())
}

func TestPollerSystemTicker(t *testing.T) {
	p := &Poller{}

	var calls int32
	p.Start(func() { atomic.AddInt32(&calls, 1) }, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) >= 2 }, time.Second, time.Millisecond)

	p.Stop()
	p.Wait()
}
