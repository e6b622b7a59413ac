package services

import (
	"context"
	"sync"

	domainagg "github.com/yungbote/adbroker-backend/internal/domain/aggregates"
)

// observationGate hands every purchase of a category that overlaps an
// in-flight purchase the same observed state, so at most one of them commits.
type observationGate struct {
	mu      sync.Mutex
	pending map[string]*sharedObservation
}

type sharedObservation struct {
	refs  int
	ready chan struct{}
	obs   *domainagg.PurchaseObservation
	err   error
}

func newObservationGate() *observationGate {
	return &observationGate{pending: map[string]*sharedObservation{}}
}

// acquire returns the observation shared by purchases of disease currently in
// flight, calling load only when none is. release must be called once the
// purchase has committed or failed.
func (g *observationGate) acquire(ctx context.Context, disease string, load func() (*domainagg.PurchaseObservation, error)) (*domainagg.PurchaseObservation, func(), error) {
	g.mu.Lock()
	e, joined := g.pending[disease]
	if !joined {
		e = &sharedObservation{ready: make(chan struct{})}
		g.pending[disease] = e
	}
	e.refs++
	g.mu.Unlock()

	release := func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		e.refs--
		if e.refs == 0 && g.pending[disease] == e {
			delete(g.pending, disease)
		}
	}

	if !joined {
		e.obs, e.err = load()
		close(e.ready)
	} else {
		select {
		case <-e.ready:
		case <-ctx.Done():
			release()
			return nil, nil, ctx.Err()
		}
	}
	if e.err != nil {
		release()
		return nil, nil, e.err
	}
	return e.obs, release, nil
}

func (g *observationGate) inFlight() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
