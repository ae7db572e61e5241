package server

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

const (
	msgSessionEnded = "Your session has ended. Please log in again."
	msgForbidden    = "You are not allowed to change this product."
)

// errNavigated is returned by render when a forced navigation was raised
// while the view was loading; the view must not be shown.
var errNavigated = errors.New("navigation forced while loading view")

// view is a console page handler. Errors it returns are turned into the
// matching response by handleView.
type view func(w http.ResponseWriter, r *http.Request) error

// UIPageData is the layout model shared by every page
type UIPageData struct {
	AppName        string
	Title          string
	ActivePage     string
	User           *users.User
	Authenticated  bool
	IsAdmin        bool
	SessionExpires string
	Notice         string
	Error          string
	Page           any
}

// form carries submitted values and their validation messages back to a page
type form struct {
	Values  url.Values
	Errors  errors.FieldErrors
	Message string
}

func newForm(values url.Values) *form {
	if values == nil {
		values = url.Values{}
	}
	return &form{Values: values, Errors: errors.FieldErrors{}}
}

func (f *form) Get(key string) string {
	return f.Values.Get(key)
}

func (f *form) Has(key, value string) bool {
	for _, v := range f.Values[key] {
		if v == value {
			return true
		}
	}
	return false
}

func (f *form) Err(key string) string {
	return f.Errors[key]
}

// fail records err on the form. Validation errors go beside their fields;
// anything else becomes the form message, verbatim from the backend when it
// sent one.
func (f *form) fail(err error, fallback string) {
	var fe errors.FieldErrors
	if errors.As(err, &fe) {
		for k, v := range fe {
			f.Errors.Add(k, v)
		}
		return
	}
	f.Message = apiclient.UserMessage(err, fallback)
}

// handleView runs v and deals with what it could not: forced navigations,
// expired sessions, missing resources and unexpected failures.
func (s *Server) handleView(v view) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		err := v(rec, r)

		if target, forced := navigation.TrackerFrom(r.Context()).Target(); forced {
			if rec.written() {
				log.Warn().Str("path", r.URL.Path).Str("target", target).Msg("forced navigation after response was written")
				return
			}
			msg := msgSessionEnded
			if err != nil && !errors.Is(err, errNavigated) {
				msg = apiclient.UserMessage(err, msgSessionEnded)
			}
			http.Redirect(rec, r, withFlash(target, flashError, msg), http.StatusSeeOther)
			return
		}

		if err == nil {
			return
		}
		if rec.written() {
			log.Error().Err(err).Str("path", r.URL.Path).Msg("view failed after writing response")
			return
		}
		s.fail(rec, r, err)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errors.ErrSessionExpired):
		http.Redirect(w, r, withFlash(navigation.RouteLogin, flashError, apiclient.UserMessage(err, msgSessionEnded)), http.StatusSeeOther)
	case errors.Is(err, errors.ErrNotFound):
		s.renderNotFound(w, r)
	case errors.Is(err, errors.ErrForbidden):
		http.Redirect(w, r, withFlash(navigation.RouteProducts, flashError, msgForbidden), http.StatusSeeOther)
	default:
		status := http.StatusInternalServerError
		if errors.Is(err, errors.ErrUnreachable) || errors.Is(err, errors.ErrBadResponse) {
			status = http.StatusBadGateway
		}
		log.Error().Err(err).Str("path", r.URL.Path).Msg("view failed")
		data := map[string]string{"Message": apiclient.UserMessage(err, "")}
		if renderErr := s.render(w, r, status, pageError, "Something went wrong", "", data); renderErr != nil && !errors.Is(renderErr, errNavigated) {
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
		}
	}
}

func (s *Server) renderNotFound(w http.ResponseWriter, r *http.Request) {
	if err := s.render(w, r, http.StatusNotFound, pageNotFound, "Page not found", "", nil); err != nil {
		http.Error(w, "404 - Page Not Found", http.StatusNotFound)
	}
}

// render executes a page inside the layout. It refuses when the request has
// been forced elsewhere, so no view is shown for a session that just ended.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name, title, active string, page any) error {
	if _, forced := navigation.TrackerFrom(r.Context()).Target(); forced {
		return errNavigated
	}
	tmpl, ok := s.pages[name]
	if !ok {
		return fmt.Errorf("[render] unknown page %q", name)
	}

	data := s.layoutData(r, title, active)
	data.Page = page

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		return fmt.Errorf("[render] %s: %w", name, err)
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func (s *Server) layoutData(r *http.Request, title, active string) UIPageData {
	sess := s.store.Snapshot()
	data := UIPageData{
		AppName:    s.config.GetAppName(),
		Title:      title,
		ActivePage: active,
		Notice:     r.URL.Query().Get(flashNotice),
		Error:      r.URL.Query().Get(flashError),
	}
	if sess.Complete() {
		data.User = sess.User
		data.Authenticated = true
		data.IsAdmin = sess.IsAdmin()
		if exp, ok := sess.ExpiresAt(); ok {
			data.SessionExpires = formatTime(exp)
		}
	}
	return data
}

// redirect sends the operator to target with a one-shot notice. Like render,
// it refuses when the request has been forced elsewhere.
func redirect(w http.ResponseWriter, r *http.Request, target, notice string) error {
	return flashRedirect(w, r, target, flashNotice, notice)
}

// redirectError sends the operator back to target with a one-shot error.
func redirectError(w http.ResponseWriter, r *http.Request, target, msg string) error {
	return flashRedirect(w, r, target, flashError, msg)
}

func flashRedirect(w http.ResponseWriter, r *http.Request, target, kind, msg string) error {
	if _, forced := navigation.TrackerFrom(r.Context()).Target(); forced {
		return errNavigated
	}
	http.Redirect(w, r, withFlash(target, kind, msg), http.StatusSeeOther)
	return nil
}

func withFlash(target, key, msg string) string {
	if msg == "" {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	q.Del(flashNotice)
	q.Del(flashError)
	q.Set(key, msg)
	u.RawQuery = q.Encode()
	return u.String()
}

// localPath accepts only console-relative return paths.
func localPath(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return fallback
	}
	return target
}

// currentUser is the session's user, or nil when logged out.
func (s *Server) currentUser() *users.User {
	sess := s.store.Snapshot()
	if !sess.Complete() {
		return nil
	}
	return sess.User
}

// refreshUser replaces the session's user snapshot, keeping the token.
func (s *Server) refreshUser(ctx context.Context, u *users.User) {
	sess := s.store.Snapshot()
	if !sess.Complete() || u == nil {
		return
	}
	if err := s.store.Login(ctx, session.Session{Token: sess.Token, User: u}); err != nil {
		log.Error().Err(err).Msg("failed to refresh session user")
	}
}
