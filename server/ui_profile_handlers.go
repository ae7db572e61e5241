package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

// ProfilePageData is the profile page model
type ProfilePageData struct {
	Form        *form
	PictureForm *form
	Profile     *users.User
	PictureURL  string
	PasswordURL string
}

// ProfilePageHandler shows the operator's own profile (GET /profile). The
// session's user snapshot is refreshed from the backend on the way.
func (s *Server) ProfilePageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		me, err := s.users.Me(r.Context())
		if err != nil {
			return err
		}
		s.refreshUser(r.Context(), me)
		f := newForm(url.Values{"name": {me.Name}, "email": {me.Email}})
		return s.renderProfile(w, r, http.StatusOK, me, f, newForm(nil))
	}
}

// ProfileUpdateHandler saves name and email (POST /profile)
func (s *Server) ProfileUpdateHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		_ = r.ParseForm()
		update := users.ProfileUpdate{
			Name:  strings.TrimSpace(r.PostFormValue("name")),
			Email: strings.TrimSpace(r.PostFormValue("email")),
		}
		f := newForm(url.Values{"name": {update.Name}, "email": {update.Email}})

		if err := s.users.UpdateProfile(r.Context(), update); err != nil {
			f.fail(err, "Failed to update profile")
			return s.renderProfile(w, r, http.StatusUnprocessableEntity, s.currentUser(), f, newForm(nil))
		}
		s.reloadProfile(r)
		log.Info().Str("email", update.Email).Msg("profile updated")
		return redirect(w, r, navigation.RouteProfile, "Profile updated successfully")
	}
}

// ProfilePictureHandler uploads a new profile picture (POST /profile/picture)
func (s *Server) ProfilePictureHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBodyBytes)
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			log.Warn().Err(err).Msg("failed to read profile picture form")
		}

		pf := newForm(nil)
		file, hdr, err := r.FormFile(users.ProfilePictureField)
		if err != nil {
			pf.Errors.Add(users.ProfilePictureField, "Choose an image to upload")
			return s.renderProfileFromSession(w, r, pf)
		}
		defer file.Close()

		if err := s.users.UploadProfilePicture(r.Context(), *uploadedFile(file, hdr)); err != nil {
			pf.fail(err, "Failed to upload profile picture")
			return s.renderProfileFromSession(w, r, pf)
		}
		s.reloadProfile(r)
		return redirect(w, r, navigation.RouteProfile, "Profile picture updated")
	}
}

// PasswordPageHandler renders the change password form (GET /password)
func (s *Server) PasswordPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		return s.render(w, r, http.StatusOK, pagePassword, "Change password", "profile", newForm(nil))
	}
}

// PasswordUpdateHandler changes the password (POST /password). No
// submitted value is echoed back.
func (s *Server) PasswordUpdateHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		_ = r.ParseForm()
		change := users.PasswordChange{
			OldPassword: r.PostFormValue("oldPassword"),
			NewPassword: r.PostFormValue("newPassword"),
			Confirm:     r.PostFormValue("confirmPassword"),
		}

		if err := s.users.UpdatePassword(r.Context(), change); err != nil {
			f := newForm(nil)
			f.fail(err, "Failed to update password")
			return s.render(w, r, http.StatusUnprocessableEntity, pagePassword, "Change password", "profile", f)
		}
		log.Info().Msg("password changed")
		return redirect(w, r, navigation.RouteProfile, "Password updated successfully")
	}
}

func (s *Server) reloadProfile(r *http.Request) {
	me, err := s.users.Me(r.Context())
	if err != nil {
		log.Warn().Err(err).Msg("failed to reload profile")
		return
	}
	s.refreshUser(r.Context(), me)
}

func (s *Server) renderProfileFromSession(w http.ResponseWriter, r *http.Request, pictureForm *form) error {
	me := s.currentUser()
	f := newForm(nil)
	if me != nil {
		f.Values.Set("name", me.Name)
		f.Values.Set("email", me.Email)
	}
	return s.renderProfile(w, r, http.StatusUnprocessableEntity, me, f, pictureForm)
}

func (s *Server) renderProfile(w http.ResponseWriter, r *http.Request, status int, me *users.User, f, pictureForm *form) error {
	return s.render(w, r, status, pageProfile, "Profile", "profile", ProfilePageData{
		Form:        f,
		PictureForm: pictureForm,
		Profile:     me,
		PictureURL:  navigation.RouteProfilePicture,
		PasswordURL: navigation.RoutePassword,
	})
}
