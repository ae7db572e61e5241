package server

import (
	"net/http"

	nav "github.com/jrsteele09/catalog-console/navigation"
)

func (s *Server) initRoutes() {
	// Root, unknown paths and methods without a handler
	s.RegisterRouteHandler("/", s.page(s.IndexHandler()))

	// LOGIN / REGISTRATION
	s.RegisterRouteHandler("GET "+nav.RouteLogin, s.page(s.LoginPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteLogin, s.page(s.LoginSubmissionHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteRegister, s.page(s.RegisterPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteRegister, s.page(s.RegisterSubmissionHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteLogout, s.page(s.LogoutPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteLogout, s.page(s.LogoutHandler()))

	// PRODUCTS
	s.RegisterRouteHandler("GET "+nav.RouteProducts, s.page(s.ProductsListHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteProductNew, s.page(s.ProductNewPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProductNew, s.page(s.ProductCreateHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteProductEdit, s.page(s.ProductEditPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProductEdit, s.page(s.ProductUpdateHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteProductDelete, s.page(s.ProductDeletePageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProductDelete, s.page(s.ProductDeleteHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProductAssign, s.page(s.ProductAssignHandler()))

	// USERS (admin)
	s.RegisterRouteHandler("GET "+nav.RouteUsers, s.page(s.UsersListHandler()))
	s.RegisterRouteHandler("GET "+nav.RouteUserNew, s.page(s.UserNewPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteUserNew, s.page(s.UserCreateHandler()))

	// PROFILE
	s.RegisterRouteHandler("GET "+nav.RouteProfile, s.page(s.ProfilePageHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProfile, s.page(s.ProfileUpdateHandler()))
	s.RegisterRouteHandler("POST "+nav.RouteProfilePicture, s.page(s.ProfilePictureHandler()))
	s.RegisterRouteHandler("GET "+nav.RoutePassword, s.page(s.PasswordPageHandler()))
	s.RegisterRouteHandler("POST "+nav.RoutePassword, s.page(s.PasswordUpdateHandler()))

	s.RegisterRouteHandler("GET "+RouteImages, ChainMiddleware(s.ImageHandler(), s.HTMLMiddleWare(s.NavigationMiddleware)...))
	s.RegisterRouteHandler("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

// page wraps a view with the standard middleware, the per-request navigation
// tracker and the route guard.
func (s *Server) page(v view) http.Handler {
	return ChainMiddleware(s.handleView(v), s.HTMLMiddleWare(s.NavigationMiddleware, s.GuardMiddleware)...)
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := r.PathValue("file")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			logError(r.Method, filePath, err.Error())
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

func logError(method, path, error string) {
	logRoute(method, path+" "+Red+error+ResetColor, 0)
}
