// Package api implements the HTTP transport for the conversion backend.
//
// Client is the single request path every other component calls through.
// It attaches the bearer token from the configured TokenSource, keeps the
// cookie jar needed by the refresh flow, and on a 401 response performs
// exactly one token refresh followed by one retry before failing the call
// upward. Response bodies carrying a "detail" field surface that text in
// the returned error.
package api
