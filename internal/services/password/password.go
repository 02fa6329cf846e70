// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package password hashes and verifies credential secrets and enforces the
// configurable complexity policy.
package password

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
)

// Policy is the complexity policy applied to new secrets. A valid secret has
// a bounded length, mixed case and at least one digit or symbol.
type Policy struct {
	MinLength int
	MaxLength int
}

// DefaultPolicy returns the policy the account backend ships with.
func DefaultPolicy() Policy {
	return Policy{MinLength: 6, MaxLength: 31}
}

// Service hashes and verifies secrets with bcrypt. The hash output is
// self-describing ($2a$… prefix), which is what IsHashed keys on.
type Service struct {
	policy Policy
	cost   int
}

// NewService creates a password service with the given policy.
func NewService(policy Policy) *Service {
	if policy.MinLength <= 0 {
		policy = DefaultPolicy()
	}
	return &Service{policy: policy, cost: bcrypt.DefaultCost}
}

// Policy returns the active complexity policy.
func (s *Service) Policy() Policy {
	return s.policy
}

// Hash derives a salted one-way hash of the secret.
func (s *Service) Hash(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// IsHashed reports whether candidate is already in hashed form, judged by the
// self-describing output format alone.
func (s *Service) IsHashed(candidate string) bool {
	_, err := bcrypt.Cost([]byte(candidate))
	return err == nil
}

// ValidateComplexity reports whether the secret satisfies the policy. An
// already-hashed input is caller misuse and fails with a value error; a
// well-formed but weak secret returns false with no error.
func (s *Service) ValidateComplexity(secret string) (bool, error) {
	if s.IsHashed(secret) {
		return false, fmt.Errorf("password is already hashed: %w", apperrors.ErrValueInvalid)
	}
	if len(secret) < s.policy.MinLength || len(secret) > s.policy.MaxLength {
		return false, nil
	}

	var hasUpper, hasLower, hasDigitOrSymbol bool
	for _, r := range secret {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) || r == ' ':
			hasDigitOrSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigitOrSymbol, nil
}

// Verify checks candidate against the stored hash. Presenting an
// already-hashed candidate is caller misuse; both that and a mismatch fail
// with an authentication error. Returns true only on an exact match.
func (s *Service) Verify(storedHash, candidate string) (bool, error) {
	if s.IsHashed(candidate) {
		return false, fmt.Errorf("candidate password is hashed: %w", apperrors.ErrAuthentication)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)); err != nil {
		return false, fmt.Errorf("password mismatch: %w", apperrors.ErrAuthentication)
	}
	return true, nil
}
