package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Form *form
}

// LoginPageHandler displays the login page (GET /login)
func (s *Server) LoginPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		f := newForm(url.Values{"email": {r.URL.Query().Get("email")}})
		return s.render(w, r, http.StatusOK, pageLogin, "Login", "login", LoginPageData{Form: f})
	}
}

// LoginSubmissionHandler processes the login form submission. A rejected
// login comes back from the backend as a 401, which the API client turns into
// a forced navigation to the login page carrying the backend's message.
func (s *Server) LoginSubmissionHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := r.ParseForm(); err != nil {
			return s.render(w, r, http.StatusBadRequest, pageLogin, "Login", "login", LoginPageData{Form: newForm(nil)})
		}

		creds := users.Credentials{
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
		}
		f := newForm(url.Values{"email": {creds.Email}})

		res, err := s.users.Login(r.Context(), creds)
		if errors.Is(err, errors.ErrSessionExpired) {
			// Refused credentials: the redirect to login carries the backend's message
			return err
		}
		if err != nil {
			f.fail(err, "Login failed")
			return s.render(w, r, http.StatusUnprocessableEntity, pageLogin, "Login", "login", LoginPageData{Form: f})
		}

		if err := s.store.Login(r.Context(), session.Session{Token: res.Token, User: res.User}); err != nil {
			if !s.store.Snapshot().Complete() {
				return err
			}
			log.Error().Err(err).Msg("logged in but the session was not persisted")
		}
		log.Info().Str("user", res.User.Email).Str("role", string(res.User.Role)).Msg("logged in")
		return redirect(w, r, navigation.RouteLanding, "Welcome back, "+res.User.Name)
	}
}

// LogoutPageHandler asks for confirmation before logging out (GET /logout)
func (s *Server) LogoutPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		return s.render(w, r, http.StatusOK, pageLogout, "Logout", "", nil)
	}
}

// LogoutHandler ends the session (POST /logout)
func (s *Server) LogoutHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		if err := s.store.Logout(r.Context()); err != nil {
			log.Error().Err(err).Msg("logged out in memory only")
		}
		return redirect(w, r, navigation.RouteLogin, "You have been logged out")
	}
}
