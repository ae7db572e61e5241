package navigation

import "github.com/jrsteele09/catalog-console/session"

// Outcome is what the guard decided for a navigation.
type Outcome int

const (
	Render Outcome = iota
	Redirect
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	}
	return "unknown"
}

// Decision is the guard's verdict for one navigation. Target is set for
// Redirect; Route and Params are set for Render.
type Decision struct {
	Outcome Outcome
	Target  string
	Route   Route
	Params  map[string]string
}

// Decide evaluates a navigation to path for the given session. It holds no
// state and is called on every request.
//
// Unknown paths are not found whatever the session. Admin routes are reported
// as not found to non-admins so their existence is not revealed.
func Decide(sess session.Session, path string) Decision {
	route, params, ok := Match(path)
	if !ok {
		return Decision{Outcome: NotFound}
	}

	authenticated := sess.Complete()
	switch route.Access {
	case AccessEntry:
		if authenticated {
			return redirect(RouteLanding)
		}
		return redirect(RouteLogin)
	case AccessPublic:
		if authenticated {
			return redirect(RouteLanding)
		}
	case AccessAuthenticated:
		if !authenticated {
			return redirect(RouteLogin)
		}
	case AccessAdmin:
		if !authenticated {
			return redirect(RouteLogin)
		}
		if !sess.IsAdmin() {
			return Decision{Outcome: NotFound}
		}
	}
	return Decision{Outcome: Render, Route: route, Params: params}
}

func redirect(target string) Decision {
	return Decision{Outcome: Redirect, Target: target}
}
