package tram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"setram.dev/tram/api"
	"setram.dev/tram/model"
)

type FetchState int

const (
	FetchIdle FetchState = iota
	FetchLoading
	FetchSuccess
	FetchError
)

func (s FetchState) String() string {
	switch s {
	case FetchIdle:
		return "idle"
	case FetchLoading:
		return "loading"
	case FetchSuccess:
		return "success"
	case FetchError:
		return "error"
	}
	return fmt.Sprintf("FetchState(%d)", int(s))
}

const (
	scheduleErrorFormat  = "Impossible de récupérer les horaires. Détail : %s"
	emptyResponseMessage = "L'API a renvoyé une réponse vide."
)

// Owns the snapshot slot for the engine. Every fetch is tagged with a
// token; only the outcome of the most recent one is ever applied.
//
// Not safe for concurrent use. The engine guards it with its mutex.
type fetchController struct {
	token     uint64
	cancel    context.CancelFunc
	selection model.Selection
	state     FetchState
	snapshot  *model.Snapshot
	message   string
}

// Starts a new fetch generation for sel. The previous snapshot and
// error are cleared, and any fetch in flight is cancelled. The
// returned context is done when the fetch is superseded, or after
// timeout if positive.
func (f *fetchController) begin(parent context.Context, sel model.Selection, timeout time.Duration) (uint64, context.Context) {
	f.invalidate()

	var ctx context.Context
	if timeout > 0 {
		ctx, f.cancel = context.WithTimeout(parent, timeout)
	} else {
		ctx, f.cancel = context.WithCancel(parent)
	}
	f.selection = sel
	f.state = FetchLoading

	return f.token, ctx
}

// Drops the snapshot and whatever is in flight. Late results for
// earlier tokens will be discarded.
func (f *fetchController) invalidate() {
	if f.cancel != nil {
		f.cancel()
		f.cancel = nil
	}
	f.token++
	f.selection = model.Selection{}
	f.state = FetchIdle
	f.snapshot = nil
	f.message = ""
}

// Applies the outcome of the fetch holding token. Returns false,
// leaving state untouched, if the token is stale.
func (f *fetchController) resolve(token uint64, snapshot *model.Snapshot, err error) bool {
	if token != f.token || f.state != FetchLoading {
		return false
	}

	f.cancel()
	f.cancel = nil

	if err == nil && snapshot == nil {
		err = api.ErrEmptyResponse
	}
	if err != nil {
		f.fail(err)
		return true
	}

	// Copy, so that the fetcher can't mutate what we hold.
	snap := &model.Snapshot{
		Selection: f.selection,
		Route:     snapshot.Route,
		Arrivals:  append([]model.Arrival{}, snapshot.Arrivals...),
		FetchedAt: snapshot.FetchedAt,
	}
	f.snapshot = snap
	f.state = FetchSuccess
	f.message = ""

	return true
}

// Moves to the error state, discarding the snapshot.
func (f *fetchController) fail(err error) {
	detail := err.Error()
	if errors.Is(err, api.ErrEmptyResponse) {
		detail = emptyResponseMessage
	}
	f.state = FetchError
	f.snapshot = nil
	f.message = fmt.Sprintf(scheduleErrorFormat, detail)
}

// Reports whether token still identifies the live snapshot.
func (f *fetchController) current(token uint64) bool {
	return token == f.token && f.state == FetchSuccess
}
