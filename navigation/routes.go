package navigation

import "strings"

// Console route paths. Patterns use {name} for a single path segment.
const (
	RouteRoot           = "/"
	RouteLogin          = "/login"
	RouteRegister       = "/register"
	RouteLogout         = "/logout"
	RouteProducts       = "/products"
	RouteProductNew     = "/products/new"
	RouteProductEdit    = "/products/edit/{id}"
	RouteProductDelete  = "/products/delete/{id}"
	RouteProductAssign  = "/products/assign"
	RouteUsers          = "/users"
	RouteUserNew        = "/users/new"
	RouteProfile        = "/profile"
	RouteProfilePicture = "/profile/picture"
	RoutePassword       = "/password"

	// RouteLanding is where an authenticated operator lands.
	RouteLanding = RouteProducts
)

// Access is who may reach a route.
type Access int

const (
	// AccessEntry is the root route: it only ever redirects.
	AccessEntry Access = iota
	// AccessPublic routes are for logged-out operators only.
	AccessPublic
	// AccessAuthenticated routes need a session.
	AccessAuthenticated
	// AccessAdmin routes need an admin session.
	AccessAdmin
)

type Route struct {
	Pattern string
	Access  Access
}

// Routes is the console's route table.
var Routes = []Route{
	{RouteRoot, AccessEntry},
	{RouteLogin, AccessPublic},
	{RouteRegister, AccessPublic},
	{RouteLogout, AccessAuthenticated},
	{RouteProducts, AccessAuthenticated},
	{RouteProductNew, AccessAuthenticated},
	{RouteProductEdit, AccessAuthenticated},
	{RouteProductDelete, AccessAuthenticated},
	{RouteProductAssign, AccessAdmin},
	{RouteUsers, AccessAdmin},
	{RouteUserNew, AccessAdmin},
	{RouteProfile, AccessAuthenticated},
	{RouteProfilePicture, AccessAuthenticated},
	{RoutePassword, AccessAuthenticated},
}

// Match finds the route for path and the values of its {name} segments.
// Literal routes win over patterned ones.
func Match(path string) (Route, map[string]string, bool) {
	segments := split(path)
	var (
		found  Route
		params map[string]string
		ok     bool
	)
	for _, route := range Routes {
		p, matched := matchPattern(split(route.Pattern), segments)
		if !matched {
			continue
		}
		if len(p) == 0 {
			return route, nil, true
		}
		if !ok {
			found, params, ok = route, p, true
		}
	}
	return found, params, ok
}

// Path fills a pattern's {name} segments from params.
func Path(pattern string, params map[string]string) string {
	segments := split(pattern)
	for i, seg := range segments {
		if name, ok := paramName(seg); ok {
			segments[i] = params[name]
		}
	}
	return "/" + strings.Join(segments, "/")
}

func matchPattern(pattern, segments []string) (map[string]string, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	var params map[string]string
	for i, seg := range pattern {
		if name, ok := paramName(seg); ok {
			if segments[i] == "" {
				return nil, false
			}
			if params == nil {
				params = map[string]string{}
			}
			params[name] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func paramName(seg string) (string, bool) {
	if len(seg) > 2 && seg[0] == '{' && seg[len(seg)-1] == '}' {
		return seg[1 : len(seg)-1], true
	}
	return "", false
}

// split returns the path segments; the root path has none.
func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
