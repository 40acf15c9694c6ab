package tram

import (
	"context"
	"log"
	"sync"
	"time"

	"setram.dev/tram/model"
)

const (
	statusLoadingText = "Chargement..."
	statusErrorText   = "Erreur de connexion"
)

type StatusFetcher interface {
	CurrentStatus(ctx context.Context) (*model.Status, error)
}

// StatusWatcher keeps the network status fresh by polling the API.
type StatusWatcher struct {
	Interval time.Duration

	// Called with the new status after every poll.
	OnUpdate func(model.Status)

	Poller *Poller

	fetcher StatusFetcher
	ctx     context.Context
	cancel  context.CancelFunc

	mutex  sync.Mutex
	status model.Status
}

func NewStatusWatcher(fetcher StatusFetcher) *StatusWatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &StatusWatcher{
		Interval: DefaultPollInterval,
		Poller:   &Poller{},
		fetcher:  fetcher,
		ctx:      ctx,
		cancel:   cancel,
		status:   model.Status{Statut: statusLoadingText},
	}
}

// Start fetches the status right away, then every Interval.
func (w *StatusWatcher) Start() {
	w.Poller.StartNow(func() { w.Refresh(w.ctx) }, w.Interval)
}

// Refresh fetches the status once.
func (w *StatusWatcher) Refresh(ctx context.Context) model.Status {
	status, err := w.fetcher.CurrentStatus(ctx)

	w.mutex.Lock()
	if err != nil {
		log.Printf("fetching status: %v", err)
		w.status = model.Status{Statut: statusErrorText}
	} else {
		w.status = *status
	}
	current := w.status
	onUpdate := w.OnUpdate
	w.mutex.Unlock()

	if onUpdate != nil {
		onUpdate(current)
	}
	return current
}

func (w *StatusWatcher) Status() model.Status {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.status
}

// Stop ends polling and waits for a poll in flight to return.
func (w *StatusWatcher) Stop() {
	w.Poller.Stop()
	w.cancel()
	w.Poller.Wait()
}
