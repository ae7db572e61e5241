// Package apiclient is the single path from the console to the catalog REST
// backend. Its transport attaches the session's bearer token to every request
// and reacts to a 401 from any endpoint by ending the session and forcing
// navigation to the login view, so no caller handles expiry itself.
package apiclient
