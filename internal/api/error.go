package api

import "errors"

var (
	// -- Transport & Availability --
	ErrUnavailable = errors.New("backend unavailable")

	// -- Application Errors --
	ErrRequestFailed = errors.New("request failed")
	ErrBadEnvelope   = errors.New("malformed response envelope")

	// -- Authentication --
	ErrUnauthorized = errors.New("unauthorized")
)
