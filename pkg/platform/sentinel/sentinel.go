package sentinel

import "errors"

// Infrastructure facts returned by stores and external clients. Services
// translate them into domain errors; they never reach the transport layer as-is.
//
//   - ErrNotFound: no record for the key (session, settings, company)
//   - ErrExpired: session or OAuth state past its deadline
//   - ErrInvalidState: record present but unusable (corrupt ciphertext, bad token shape)
//   - ErrUnavailable: redis or an upstream API could not be reached
var (
	ErrNotFound     = errors.New("not found")
	ErrExpired      = errors.New("expired")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
