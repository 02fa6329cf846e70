// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"time"

	"codeberg.org/mtheiner/accountkit/internal/models"
)

// Clock supplies the current time. Injectable so expiry is deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

// Source produces the two independent token secrets. Knowledge of one must
// not reveal the other, so they are drawn separately.
type Source interface {
	// ShortCode returns the fixed-width human-typeable code.
	ShortCode() (string, error)
	// OpaqueToken returns the high-entropy URL-safe link token.
	OpaqueToken() (string, error)
}

const (
	shortCodeBytes   = 2  // 4 hex characters
	opaqueTokenBytes = 32 // URL-safe base64 encoded
)

type secureSource struct{}

// NewSecureSource returns a Source drawing from crypto/rand.
func NewSecureSource() Source { return secureSource{} }

func (secureSource) ShortCode() (string, error) {
	b := make([]byte, shortCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate short code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (secureSource) OpaqueToken() (string, error) {
	b := make([]byte, opaqueTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate opaque token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Store is the persistence port the manager operates against.
type Store interface {
	// GetAccountByID returns the account or (nil, nil) if it does not exist.
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)

	// Lane runs fn inside a transaction scope so that the manager's
	// read-then-write of token rows is atomic with respect to concurrent
	// callers for the same account.
	Lane(ctx context.Context, fn func(LaneStore) error) error
}

// LaneStore is the token row access available inside a Lane transaction.
type LaneStore interface {
	// LatestToken returns the most recently issued token for the account,
	// restricted to ch unless ch is ChannelUnspecified. (nil, nil) when none
	// exists.
	LatestToken(ctx context.Context, accountID int64, ch models.Channel) (*models.VerificationToken, error)

	// TokenByOpaqueValue returns the token carrying the opaque value, or
	// (nil, nil). The opaque value is a unique key, not scoped by account.
	TokenByOpaqueValue(ctx context.Context, opaque string) (*models.VerificationToken, error)

	InsertToken(ctx context.Context, t *models.VerificationToken) error
	UpdateToken(ctx context.Context, t *models.VerificationToken) error
}
