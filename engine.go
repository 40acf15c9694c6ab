package tram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"setram.dev/tram/model"
	"setram.dev/tram/stations"
)

var (
	ErrUnknownStation   = errors.New("unknown station")
	ErrNoStation        = errors.New("no station chosen")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrNoSelection      = errors.New("station and direction must both be chosen")
	ErrClosed           = errors.New("engine closed")
)

// Source of schedules. Implemented by *api.Client.
type ScheduleFetcher interface {
	ScheduleFor(ctx context.Context, station model.Station, direction model.Direction) (*model.Snapshot, error)
}

type SelectionState int

const (
	NoSelection SelectionState = iota
	StationChosen
	DirectionChosen
)

func (s SelectionState) String() string {
	switch s {
	case NoSelection:
		return "no selection"
	case StationChosen:
		return "station chosen"
	case DirectionChosen:
		return "direction chosen"
	}
	return fmt.Sprintf("SelectionState(%d)", int(s))
}

// What the rider sees: the current selection, the state of its fetch,
// and countdowns computed on the most recent tick.
type View struct {
	Selection model.Selection
	State     SelectionState
	Fetch     FetchState
	Error     string
	Route     string
	Remaining []model.Remaining
}

// Engine keeps upcoming arrivals for the chosen station and direction
// up to date.
//
// Choosing a direction fetches the station's schedule. Once fetched,
// countdowns are recomputed against the clock every PollInterval,
// without going back to the network. Changing the selection drops the
// schedule, stops the countdown and discards any late result of
// fetches made for the previous selection.
type Engine struct {
	PollInterval time.Duration

	// Fetches taking longer than this end in the error state. Zero
	// means no timeout.
	FetchTimeout time.Duration

	TimeNow func() time.Time

	// Called with the new view on every change. Calls are
	// serialized and made while the engine is locked: OnUpdate
	// must not call back into the engine.
	OnUpdate func(View)

	// Drives countdown ticks. Exposed so the ticker can be
	// replaced in tests.
	Poller *Poller

	fetcher ScheduleFetcher
	network *stations.Network
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mutex     sync.Mutex
	closed    bool
	state     SelectionState
	selection model.Selection
	fetch     fetchController
	remaining []model.Remaining
}

// Creates an Engine fetching schedules from fetcher. Only stations in
// network can be selected.
func NewEngine(fetcher ScheduleFetcher, network *stations.Network) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		PollInterval: DefaultPollInterval,
		TimeNow:      time.Now,
		Poller:       &Poller{},

		fetcher: fetcher,
		network: network,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Chooses a station. The current schedule is dropped. If a direction
// was already chosen it is kept, and the schedule for the new pair is
// fetched right away. Choosing the current station again does
// nothing.
func (e *Engine) SelectStation(station model.Station) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !e.network.Contains(station) {
		return fmt.Errorf("%w: '%s'", ErrUnknownStation, station)
	}
	if e.state != NoSelection && e.selection.Station == station {
		return nil
	}

	e.reset()
	e.selection.Station = station
	e.state = StationChosen

	if e.selection.Direction != "" {
		e.state = DirectionChosen
		e.startFetch()
	}

	e.publish()
	return nil
}

// Chooses a direction and fetches the schedule for the resulting
// selection. Choosing the current direction again does nothing.
func (e *Engine) SelectDirection(direction model.Direction) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return ErrClosed
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: '%s'", ErrInvalidDirection, direction)
	}
	if e.state == NoSelection {
		return ErrNoStation
	}
	if e.state == DirectionChosen && e.selection.Direction == direction {
		return nil
	}

	e.reset()
	e.selection.Direction = direction
	e.state = DirectionChosen
	e.startFetch()

	e.publish()
	return nil
}

// Fetches the schedule for the current selection again.
func (e *Engine) Retry() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return ErrClosed
	}
	if e.state != DirectionChosen {
		return ErrNoSelection
	}

	e.reset()
	e.startFetch()

	e.publish()
	return nil
}

// View returns what should currently be displayed.
func (e *Engine) View() View {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.view()
}

// Snapshot returns the schedule countdowns are computed from, or nil
// if there is none.
func (e *Engine) Snapshot() *model.Snapshot {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.fetch.snapshot == nil {
		return nil
	}
	snap := *e.fetch.snapshot
	snap.Arrivals = append([]model.Arrival{}, snap.Arrivals...)
	return &snap
}

// Stops polling, abandons fetches in flight and waits for background
// work to finish. The engine can't be used afterwards.
func (e *Engine) Close() {
	e.mutex.Lock()
	if e.closed {
		e.mutex.Unlock()
		return
	}
	e.closed = true
	e.Poller.Stop()
	e.fetch.invalidate()
	e.remaining = nil
	e.cancel()
	e.mutex.Unlock()

	e.Poller.Wait()
	e.wg.Wait()
}

// Drops everything tied to the current selection.
func (e *Engine) reset() {
	e.Poller.Stop()
	e.fetch.invalidate()
	e.remaining = nil
}

func (e *Engine) startFetch() {
	sel := e.selection
	token, ctx := e.fetch.begin(e.ctx, sel, e.FetchTimeout)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		snapshot, err := e.fetcher.ScheduleFor(ctx, sel.Station, sel.Direction)

		e.mutex.Lock()
		defer e.mutex.Unlock()

		if !e.fetch.resolve(token, snapshot, err) {
			return
		}

		if e.fetch.state != FetchSuccess {
			e.publish()
			return
		}

		// First countdown is computed together with the snapshot
		// swap, so there's never a blank display waiting for the
		// first tick.
		if !e.tick(token) {
			return
		}
		e.Poller.Start(func() {
			e.mutex.Lock()
			defer e.mutex.Unlock()
			e.tick(token)
		}, e.PollInterval)
	}()
}

// Recomputes countdowns from the snapshot identified by token. Returns
// false if the token is stale or the snapshot turned out to be
// unusable, in which case polling is stopped.
func (e *Engine) tick(token uint64) bool {
	if !e.fetch.current(token) {
		return false
	}

	remaining, err := RemainingTimes(e.fetch.snapshot.Arrivals, Clock(e.TimeNow).Minutes())
	if err != nil {
		e.Poller.Stop()
		e.fetch.fail(err)
		e.remaining = nil
		e.publish()
		return false
	}

	e.remaining = remaining
	e.publish()
	return true
}

func (e *Engine) view() View {
	v := View{
		Selection: e.selection,
		State:     e.state,
		Fetch:     e.fetch.state,
		Error:     e.fetch.message,
	}
	if e.fetch.snapshot != nil {
		v.Route = e.fetch.snapshot.Route
	}
	if e.remaining != nil {
		v.Remaining = append([]model.Remaining{}, e.remaining...)
	}
	return v
}

func (e *Engine) publish() {
	if e.OnUpdate != nil {
		e.OnUpdate(e.view())
	}
}
