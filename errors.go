package tokensvc

import "errors"

var (
	// ErrBadToken indicates a token string could not be parsed, or its
	// signature did not verify.
	ErrBadToken = errors.New("bad token")
	// ErrExpiredToken indicates a token's absolute expiration has passed.
	ErrExpiredToken = errors.New("expired token")
	// ErrInvalidToken indicates a token parsed and signed correctly but
	// has no corresponding record.
	ErrInvalidToken = errors.New("invalid token")
	// ErrStoreUnavailable wraps an I/O failure against the configured
	// store.
	ErrStoreUnavailable = errors.New("token store unavailable")
)
