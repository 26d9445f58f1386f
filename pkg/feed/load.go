package feed

import "context"

// Load tracks a feed fetch running in the background. It moves from
// loading to ready or failed exactly once and never back.
type Load struct {
	done    chan struct{}
	outcome Outcome
}

// Start begins a fetch and returns immediately. Cancelling ctx aborts
// the outbound request, which then settles as failed.
func (f *Fetcher) Start(ctx context.Context, req Request) *Load {
	l := &Load{done: make(chan struct{})}
	go func() {
		defer close(l.done)
		l.outcome = f.Fetch(ctx, req)
	}()
	return l
}

// Done is closed once the outcome is settled.
func (l *Load) Done() <-chan struct{} { return l.done }

// State reports loading until the fetch settles.
func (l *Load) State() State {
	select {
	case <-l.done:
		return l.outcome.State
	default:
		return StateLoading
	}
}

// Outcome returns the settled outcome, or false while still loading.
func (l *Load) Outcome() (Outcome, bool) {
	select {
	case <-l.done:
		return l.outcome, true
	default:
		return Outcome{State: StateLoading}, false
	}
}

// Wait blocks until the outcome settles or ctx ends. The error only
// reports that the wait was abandoned; fetch failures are in the Outcome.
func (l *Load) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-l.done:
		return l.outcome, nil
	case <-ctx.Done():
		return Outcome{State: StateLoading}, ctx.Err()
	}
}
