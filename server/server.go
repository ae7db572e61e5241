package server

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/catalog-console/apiclient"
	"github.com/jrsteele09/catalog-console/catalog"
	"github.com/jrsteele09/catalog-console/internal/config"
	"github.com/jrsteele09/catalog-console/listing"
	"github.com/jrsteele09/catalog-console/mirror"
	"github.com/jrsteele09/catalog-console/session"
	"github.com/jrsteele09/catalog-console/users"
	"github.com/rs/zerolog/log"
)

// ImageSource streams stored images from the backend.
type ImageSource interface {
	FetchImage(ctx context.Context, ref string) (*apiclient.Image, error)
}

type Server struct {
	env        string // Environment (e.g., "DEV", "PROD")
	mux        *http.ServeMux
	routes     []string
	config     config.Config
	store      *session.Store
	users      users.UserRepo
	products   catalog.ProductRepo
	images     ImageSource
	pages      map[string]*template.Template
	pageSizes  []int
	productsQ  listing.Defaults
	usersQ     listing.Defaults
	userMirror *mirror.List[users.User]
	prodMirror *mirror.List[catalog.Product]
}

func New(config config.Config, store *session.Store, userRepo users.UserRepo, productRepo catalog.ProductRepo, images ImageSource) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:        config.GetEnv(),
		mux:        http.NewServeMux(),
		config:     config,
		store:      store,
		users:      userRepo,
		products:   productRepo,
		images:     images,
		pages:      pages,
		pageSizes:  config.GetPageSizeOptions(),
		userMirror: mirror.NewList[users.User](),
		prodMirror: mirror.NewList[catalog.Product](),
	}
	s.productsQ = listing.Defaults{
		PageSize:   config.GetDefaultPageSize(),
		PageSizes:  s.pageSizes,
		SortField:  "name",
		SortFields: []string{"name", "sku"},
		Direction:  listing.Asc,
	}
	s.usersQ = listing.Defaults{
		PageSize:   config.GetDefaultPageSize(),
		PageSizes:  s.pageSizes,
		SortField:  "name",
		SortFields: []string{"name"},
		Direction:  listing.Asc,
	}

	// Mirrors belong to the session that fetched them
	store.Subscribe(func(sess session.Session) {
		if sess.Empty() {
			s.userMirror.Reset()
			s.prodMirror.Reset()
		}
	})

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1], 0)
		} else {
			logRoute("", parts[0], 0)
		}
	}
}

func logRoute(method, path string, status int) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	if status == 0 {
		log.Info().Msgf("[%-19s] %s", displayMethod, path)
		return
	}
	log.Info().Msgf("[%-19s] %s %s", displayMethod, path, statusColour(status))
}
