package session

import "errors"

var (
	// ErrExpired reports a token whose exp claim lies in the past.
	ErrExpired = errors.New("session expired")
	// ErrMalformed reports a token whose payload cannot be decoded or has no
	// exp claim.
	ErrMalformed = errors.New("malformed token")
)
