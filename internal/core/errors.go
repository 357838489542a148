package core

import "errors"

var (
	// ErrValidation marks a missing or malformed request parameter.
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks an unknown or expired resource.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks a network failure, timeout or non-2xx answer from a third party.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrUpstreamShape marks a third-party response that could not be parsed.
	ErrUpstreamShape = errors.New("unexpected upstream response")
	// ErrResolutionExhausted is logged when every resolution strategy failed. It is never returned to clients.
	ErrResolutionExhausted = errors.New("all resolution strategies failed")
)
