// Package client contains the transport side of the priceopt terminal client.
//
// # Overview
//
// The package provides:
//  1. An API contract (see the Client interface) covering authentication
//     (Register, Login, VerifyEmail, Me), product CRUD, the demand forecast
//     and the optimized pricing list.
//  2. An HTTP/JSON implementation (see HTTPClient). Its round tripper
//     attaches the bearer token from a TokenSource, stamps each request
//     with an X-Request-ID and throttles outbound calls with a token bucket.
//
// # Error Handling
//
// Non-2xx responses become *APIError, which carries the server's "detail"
// text and unwraps to a sentinel: ErrUnauthorized (401), ErrForbidden (403),
// ErrNotFound (404), ErrValidation (422) or ErrUnavailable (5xx). Connection
// failures also wrap ErrUnavailable. Only ErrUnauthorized invalidates the
// session; a 403 is a permission refusal. Message turns any of these into user-facing text.
package client
