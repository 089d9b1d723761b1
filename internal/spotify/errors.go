package spotify

import "errors"

// Sentinel errors surfaced to the dispatcher and the error screen.
var (
	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("authorization token is invalid or expired")

	// ErrRateLimited indicates the API asked us to back off
	ErrRateLimited = errors.New("rate limited by the spotify api")

	// ErrServerUnreachable indicates the API host could not be reached
	ErrServerUnreachable = errors.New("spotify api is unreachable")
)

// errNoContent marks an empty 204 body. Internal: callers translate it into a
// typed nil result before it escapes the package.
var errNoContent = errors.New("no content")
