package navigation_test

import (
	"context"
	"testing"

	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/stretchr/testify/require"
)

var (
	loggedOut = session.Session{}
	asUser    = session.Session{Token: "t", User: &users.User{ID: "u1", Role: users.RoleUser}}
	asAdmin   = session.Session{Token: "t", User: &users.User{ID: "a1", Role: users.RoleAdmin}}
	tornState = session.Session{Token: "t"}
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name    string
		sess    session.Session
		path    string
		outcome navigation.Outcome
		target  string
	}{
		{"logged out products", loggedOut, "/products", navigation.Redirect, "/login"},
		{"logged out profile", loggedOut, "/profile", navigation.Redirect, "/login"},
		{"logged out users", loggedOut, "/users", navigation.Redirect, "/login"},
		{"logged out edit", loggedOut, "/products/edit/p1", navigation.Redirect, "/login"},
		{"logged out login", loggedOut, "/login", navigation.Render, ""},
		{"logged out register", loggedOut, "/register", navigation.Render, ""},
		{"logged out root", loggedOut, "/", navigation.Redirect, "/login"},
		{"torn session is logged out", tornState, "/products", navigation.Redirect, "/login"},

		{"user login", asUser, "/login", navigation.Redirect, "/products"},
		{"user register", asUser, "/register", navigation.Redirect, "/products"},
		{"user root", asUser, "/", navigation.Redirect, "/products"},
		{"user products", asUser, "/products", navigation.Render, ""},
		{"user users", asUser, "/users", navigation.NotFound, ""},
		{"user add user", asUser, "/users/new", navigation.NotFound, ""},
		{"user assign", asUser, "/products/assign", navigation.NotFound, ""},
		{"user password", asUser, "/password", navigation.Render, ""},

		{"admin users", asAdmin, "/users", navigation.Render, ""},
		{"admin add user", asAdmin, "/users/new", navigation.Render, ""},
		{"admin login", asAdmin, "/login", navigation.Redirect, "/products"},

		{"unknown logged out", loggedOut, "/unknown", navigation.NotFound, ""},
		{"unknown user", asUser, "/unknown", navigation.NotFound, ""},
		{"unknown admin", asAdmin, "/products/edit", navigation.NotFound, ""},
		{"unknown nested", asAdmin, "/users/new/extra", navigation.NotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := navigation.Decide(tt.sess, tt.path)
			require.Equal(t, tt.outcome, d.Outcome, d.Outcome.String())
			require.Equal(t, tt.target, d.Target)
		})
	}
}

func TestDecideIsReEvaluated(t *testing.T) {
	require.Equal(t, navigation.Render, navigation.Decide(asUser, "/products").Outcome)
	require.Equal(t, navigation.Redirect, navigation.Decide(loggedOut, "/products").Outcome)
}

func TestMatchParams(t *testing.T) {
	d := navigation.Decide(asUser, "/products/edit/abc123")
	require.Equal(t, navigation.Render, d.Outcome)
	require.Equal(t, navigation.RouteProductEdit, d.Route.Pattern)
	require.Equal(t, "abc123", d.Params["id"])

	d = navigation.Decide(asUser, "/products/new")
	require.Equal(t, navigation.RouteProductNew, d.Route.Pattern)
	require.Nil(t, d.Params)

	require.Equal(t, "/products/delete/p9", navigation.Path(navigation.RouteProductDelete, map[string]string{"id": "p9"}))
}

func TestTracker(t *testing.T) {
	ctx, tracker := navigation.WithTracker(context.Background())
	_, ok := tracker.Target()
	require.False(t, ok)

	navigation.ContextNavigator{}.Navigate(ctx, "/login")
	navigation.ContextNavigator{}.Navigate(ctx, "/elsewhere")
	target, ok := tracker.Target()
	require.True(t, ok)
	require.Equal(t, "/login", target)
	require.Same(t, tracker, navigation.TrackerFrom(ctx))

	require.Nil(t, navigation.TrackerFrom(context.Background()))
	navigation.ContextNavigator{}.Navigate(context.Background(), "/login")

	var none *navigation.Tracker
	_, ok = none.Target()
	require.False(t, ok)
}
