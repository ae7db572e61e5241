package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// IndexHandler catches every request no other route took. The guard has
// already redirected "/" and refused unknown paths; what arrives here is a
// known console path asked for with a method it does not serve.
func (s *Server) IndexHandler() view {
	return func(w http.ResponseWriter, r *http.Request) error {
		d, _ := decisionFrom(r.Context())
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Str("route", d.Route.Pattern).Msg("no handler for method")
		s.renderNotFound(w, r)
		return nil
	}
}
