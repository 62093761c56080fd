// Package session owns the locally stored credential: saving it after login,
// reading it for outgoing requests, and the guard that decides whether a
// protected page may be shown.
//
// The guard never renews a credential. An expired or malformed token is
// removed together with the cached user profile and the caller is sent to
// the login page.
package session
