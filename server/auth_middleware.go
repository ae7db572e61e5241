package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/catalog-console/navigation"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyDecision stores the route guard's decision for the request
	ContextKeyDecision ContextKey = "route_decision"
)

// GuardMiddleware runs the route guard against the current session on every
// request. Redirects and not-found never reach the view.
func (s *Server) GuardMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d := navigation.Decide(s.store.Snapshot(), r.URL.Path)
		switch d.Outcome {
		case navigation.Redirect:
			http.Redirect(w, r, d.Target, http.StatusSeeOther)
			return
		case navigation.NotFound:
			s.renderNotFound(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyDecision, d)
		next(w, r.WithContext(ctx))
	}
}

func decisionFrom(ctx context.Context) (navigation.Decision, bool) {
	d, ok := ctx.Value(ContextKeyDecision).(navigation.Decision)
	return d, ok
}
