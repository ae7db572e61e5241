package navigation

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type contextKey string

const trackerKey contextKey = "navigation_tracker"

// Tracker records a forced navigation raised while a request is being served.
// Once set, the request must not render the view it was building.
type Tracker struct {
	mu     sync.Mutex
	target string
}

// WithTracker returns a context carrying a fresh Tracker.
func WithTracker(ctx context.Context) (context.Context, *Tracker) {
	t := &Tracker{}
	return context.WithValue(ctx, trackerKey, t), t
}

// TrackerFrom returns the request's Tracker, or nil outside a request.
func TrackerFrom(ctx context.Context) *Tracker {
	t, _ := ctx.Value(trackerKey).(*Tracker)
	return t
}

// Navigate records route. The first forced navigation wins.
func (t *Tracker) Navigate(route string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.target == "" {
		t.target = route
	}
}

// Target returns the forced navigation, if any.
func (t *Tracker) Target() (string, bool) {
	if t == nil {
		return "", false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.target, t.target != ""
}

// ContextNavigator forwards navigations to the Tracker of the request whose
// context they arrive with.
type ContextNavigator struct{}

func (ContextNavigator) Navigate(ctx context.Context, route string) {
	t := TrackerFrom(ctx)
	if t == nil {
		log.Debug().Str("route", route).Msg("navigation requested outside a console request")
		return
	}
	t.Navigate(route)
}
