// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package contact validates the shape of email addresses and phone numbers.
// Shape only: no existence or deliverability checks.
package contact

import (
	"fmt"
	"regexp"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
)

var (
	// Local part: leading alphanumeric plus 1-63 word characters or dots;
	// domain 2-256 characters; TLD 2-64. No whitespace anywhere.
	emailRe = regexp.MustCompile(`^(?i)[a-zA-Z0-9][\w.]{1,63}@[\w.-]{2,256}\.\w{2,64}$`)

	// Exactly ten digits with a fixed leading 9.
	phoneRe = regexp.MustCompile(`^9[0-9]{9}$`)
)

// ValidateEmail checks that v is a string shaped like an email address.
// A non-string input is a type mismatch; a malformed address is a value
// error.
func ValidateEmail(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("email must be a string, got %T: %w", v, apperrors.ErrTypeMismatch)
	}
	if !emailRe.MatchString(s) {
		return fmt.Errorf("email %q is not valid: %w", s, apperrors.ErrValueInvalid)
	}
	return nil
}

// ValidatePhone checks that v is a string shaped like a phone number.
func ValidatePhone(v any) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("phone must be a string, got %T: %w", v, apperrors.ErrTypeMismatch)
	}
	if !phoneRe.MatchString(s) {
		return fmt.Errorf("phone %q is not valid: %w", s, apperrors.ErrValueInvalid)
	}
	return nil
}
