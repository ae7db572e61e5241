package server

// Route path constants for routes outside the route guard. View routes come
// from the navigation route table, whose patterns are ServeMux patterns.
const (
	// Static Asset Routes (patterns)
	RouteStatic = "/static/{file...}"

	// Backend images, proxied with the session's token
	RouteImages = "/images/{ref...}"
)

// Query keys carrying one-shot notices across redirects
const (
	flashNotice = "notice"
	flashError  = "error"
)
