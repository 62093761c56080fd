// Package common contains constants and small helpers shared by the
// priceopt client packages.
package common

// HTTP header names set on every outbound API request.
const (
	AuthorizationHeaderName = "Authorization"
	RequestIDHeaderName     = "X-Request-ID"
	BearerScheme            = "Bearer"
)

// Credential store keys.
const (
	StoreKeyToken = "token"
	StoreKeyUser  = "user"
)
