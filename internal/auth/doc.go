// Package auth owns the authentication token lifecycle: login, silent
// refresh, and logout.
//
// The Manager holds the short-lived access token and the authenticated user
// record, persisting both to a state file so the CLI stays logged in across
// invocations. The long-lived refresh credential never enters client
// memory; it lives in an HTTP-only cookie the backend sets, which the
// persistent cookie jar carries between processes.
//
// Failure policy: authentication state is never left half-set. Every
// recovery path degrades to the fully-logged-out state (token and user
// cleared together).
package auth
