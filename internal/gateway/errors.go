package gateway

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation needs a signed-in
	// user and none is present.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrInvalidCredentials marks a sign-in rejected by the backend because
	// email or password were wrong, as opposed to transport failures.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrMalformedRecord marks a wire row the gateway refused to accept,
	// e.g. a missing id or a non-numeric amount.
	ErrMalformedRecord = errors.New("malformed record")
)
