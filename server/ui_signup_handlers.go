package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

// RegisterPageData contains data for the registration forms. RoleChoice is set
// on the admin "Add user" form; self registration always creates a user.
type RegisterPageData struct {
	Form       *form
	Action     string
	RoleChoice bool
	Roles      []users.RoleType
}

// RegisterPageHandler renders the public registration page (GET /register)
func (s *Server) RegisterPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		return s.render(w, r, http.StatusOK, pageRegister, "Register", "register", RegisterPageData{
			Form:   newForm(nil),
			Action: navigation.RouteRegister,
		})
	}
}

// RegisterSubmissionHandler creates a regular account (POST /register)
func (s *Server) RegisterSubmissionHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		reg, f := readRegistration(r)
		reg.Role = users.RoleUser

		if err := s.users.Register(r.Context(), reg); err != nil {
			f.fail(err, "Registration failed")
			return s.render(w, r, http.StatusUnprocessableEntity, pageRegister, "Register", "register", RegisterPageData{
				Form:   f,
				Action: navigation.RouteRegister,
			})
		}
		log.Info().Str("email", reg.Email).Msg("account registered")
		return redirect(w, r, navigation.RouteLogin+"?email="+url.QueryEscape(reg.Email), "Registration successful. Please log in.")
	}
}

// readRegistration reads the registration form. The password is never echoed
// back into the re-rendered form.
func readRegistration(r *http.Request) (users.Registration, *form) {
	_ = r.ParseForm()
	reg := users.Registration{
		Name:     strings.TrimSpace(r.PostFormValue("name")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     users.RoleType(r.PostFormValue("role")),
	}
	f := newForm(url.Values{
		"name":  {reg.Name},
		"email": {reg.Email},
		"role":  {string(reg.Role)},
	})
	return reg, f
}
