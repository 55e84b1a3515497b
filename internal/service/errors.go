package service

import "errors"

var (
	// ErrInvalidCredentials is a wrong password for an existing account.
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	// ErrUnauthenticated covers any bearer token that does not map to a live session.
	ErrUnauthenticated = errors.New("unauthenticated")
)
