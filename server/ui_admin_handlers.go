package server

import (
	"net/http"

	"github.com/jrsteele09/catalog-console/listing"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

// UsersPageData is the admin users listing model
type UsersPageData struct {
	Query    listing.Query
	Users    []users.User
	Pager    listing.Pager
	SortName string
	NewURL   string
}

// UsersListHandler lists every account (GET /users)
func (s *Server) UsersListHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		q := listing.Parse(r.URL.Query(), s.usersQ)
		page, err := s.users.List(r.Context(), q.Backend())
		if err != nil {
			return err
		}

		return s.render(w, r, http.StatusOK, pageUsers, "Users", "users", UsersPageData{
			Query:    q,
			Users:    page.Users,
			Pager:    q.Pager(navigation.RouteUsers, page.Total, s.pageSizes),
			SortName: q.SortURL(navigation.RouteUsers, "name"),
			NewURL:   navigation.RouteUserNew,
		})
	}
}

// UserNewPageHandler renders the admin "Add user" form (GET /users/new)
func (s *Server) UserNewPageHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		f := newForm(nil)
		f.Values.Set("role", string(users.RoleUser))
		return s.renderUserNew(w, r, http.StatusOK, f)
	}
}

// UserCreateHandler registers an account with the chosen role (POST /users/new)
func (s *Server) UserCreateHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		reg, f := readRegistration(r)
		if reg.Role == "" {
			reg.Role = users.RoleUser
		}
		if !reg.Role.Valid() {
			f.Errors.Add("role", "Choose a valid role")
			return s.renderUserNew(w, r, http.StatusUnprocessableEntity, f)
		}

		if err := s.users.Register(r.Context(), reg); err != nil {
			f.fail(err, "Failed to add user")
			return s.renderUserNew(w, r, http.StatusUnprocessableEntity, f)
		}
		s.userMirror.Reset()
		log.Info().Str("email", reg.Email).Str("role", string(reg.Role)).Msg("user added")
		return redirect(w, r, navigation.RouteUsers, "User added successfully")
	}
}

func (s *Server) renderUserNew(w http.ResponseWriter, r *http.Request, status int, f *form) error {
	return s.render(w, r, status, pageUserNew, "Add user", "users", RegisterPageData{
		Form:       f,
		Action:     navigation.RouteUserNew,
		RoleChoice: true,
		Roles:      []users.RoleType{users.RoleUser, users.RoleAdmin},
	})
}
