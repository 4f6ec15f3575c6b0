package baseoauth

import "errors"

var (
	// ErrStateMalformed is returned for states that are not base64url JSON.
	ErrStateMalformed = errors.New("oauth state is malformed")
	// ErrStateSignature is returned when the signature does not match.
	ErrStateSignature = errors.New("oauth state signature mismatch")
	// ErrStateExpired is returned for states older than StateTTL or from the future.
	ErrStateExpired = errors.New("oauth state expired")
	// ErrStateMismatch is returned when cookie and query state differ.
	ErrStateMismatch = errors.New("oauth state does not match cookie")
	// ErrSecretTooShort is returned by NewSigner.
	ErrSecretTooShort = errors.New("oauth state secret must be at least 16 bytes")
	// ErrNoClientID is returned when the store has no BASE client id.
	ErrNoClientID = errors.New("BASE client id is empty")
)
