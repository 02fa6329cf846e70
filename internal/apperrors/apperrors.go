// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package apperrors defines the error kinds surfaced across the service
// boundary. Callers classify failures with errors.Is against the exported
// sentinels; packages attach context the usual way with fmt.Errorf and %w.
package apperrors

import "errors"

var (
	// ErrTypeMismatch reports an input of the wrong dynamic type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValueInvalid reports a well-typed but malformed or disallowed value.
	ErrValueInvalid = errors.New("invalid value")

	// ErrAuthentication reports a failed credential or token check.
	ErrAuthentication = errors.New("authentication failed")

	// ErrSecurity reports a security violation: a missing account, a
	// deactivated token, or other misuse that must not be retried blindly.
	ErrSecurity = errors.New("security violation")

	// ErrTimeout reports an expired token.
	ErrTimeout = errors.New("timeout")

	// ErrInvariant reports an operation that would break a domain invariant,
	// such as issuing a second active token for the same lane.
	ErrInvariant = errors.New("invariant violation")
)

// Kind returns the taxonomy sentinel wrapped by err, or nil if err carries
// none of them.
func Kind(err error) error {
	for _, kind := range []error{
		ErrTypeMismatch,
		ErrValueInvalid,
		ErrAuthentication,
		ErrSecurity,
		ErrTimeout,
		ErrInvariant,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
