package domain

import "errors"

// Sentinel errors shared across layers. Handlers map these onto HTTP
// statuses; services and repositories wrap them with context.
var (
	// ErrNotFound covers both a missing row and a row owned by another
	// user, so ownership probes are indistinguishable from absence.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the session token is missing, unknown or expired.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidCredential means the Anthropic credential was rejected.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrTimeout means the assistant call exceeded its configured bound.
	ErrTimeout = errors.New("assistant request timed out")

	// ErrUpstream covers any other assistant failure (crash, bad output,
	// missing binary). Never retried.
	ErrUpstream = errors.New("assistant request failed")

	// ErrInvalidRole means a message carried a role outside {user, assistant}.
	ErrInvalidRole = errors.New("invalid message role")
)
