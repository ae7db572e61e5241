package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/internal/errors"
	"github.com/jrsteele09/catalog-console/navigation"
	"github.com/rs/zerolog/log"
)

const (
	assignAction   = "assign"
	unassignAction = "unassign"
)

// ProductAssignHandler adds or removes an assignee from a product (POST /products/assign).
// The outcome is reported on the listing page the form came from.
func (s *Server) ProductAssignHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		_ = r.ParseForm()
		back := localPath(r.PostFormValue("return"), navigation.RouteProducts)
		productID := strings.TrimSpace(r.PostFormValue("productId"))
		userID := strings.TrimSpace(r.PostFormValue("userId"))
		action := r.PostFormValue("action")

		if userID == "" {
			return redirectError(w, r, back, "Select a user to assign")
		}

		p, err := s.products.Get(r.Context(), productID)
		if err != nil {
			return err
		}

		me := s.currentUser()
		notice := "Product assigned"
		switch action {
		case unassignAction:
			err = s.products.Unassign(r.Context(), me, p, userID)
			notice = "Assignment removed"
		case assignAction, "":
			err = s.products.Assign(r.Context(), me, p, userID)
		default:
			return redirectError(w, r, back, "Unknown assignment action")
		}
		if err != nil {
			if errors.Is(err, errors.ErrForbidden) {
				return err
			}
			return redirectError(w, r, back, apiclient.UserMessage(err, "Failed to update assignment"))
		}

		log.Info().Str("product", p.ID).Str("user", userID).Str("action", action).Msg("assignment changed")
		return redirect(w, r, back, notice)
	}
}
