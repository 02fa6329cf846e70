// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package testutil provides test helpers and fixtures.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/mtheiner/accountkit/internal/database"
	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
)

// NewTestDB creates an in-memory SQLite database for tests.
// Returns both the database connection and the repository for convenience.
func NewTestDB(t *testing.T) (*sqlx.DB, *repository.Repository) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, repository.New(db)
}

// AccountFixture tweaks the default test account.
type AccountFixture struct {
	FirstName     string
	LastName      string
	Email         string
	EmailVerified bool
	Phone         string
	PhoneVerified bool
}

// NewTestAccount creates an account with verified-nothing defaults: both
// contacts registered, neither verified.
func NewTestAccount(t *testing.T, repo *repository.Repository, fx AccountFixture) *models.Account {
	t.Helper()

	if fx.FirstName == "" {
		fx.FirstName = "Ada"
	}
	if fx.LastName == "" {
		fx.LastName = "Lovelace"
	}
	if fx.Email == "" {
		fx.Email = "ada@example.com"
	}
	if fx.Phone == "" {
		fx.Phone = "9123456789"
	}

	account := &models.Account{
		PublicID:      "test-" + fx.Email,
		FirstName:     fx.FirstName,
		LastName:      fx.LastName,
		Email:         &fx.Email,
		EmailVerified: fx.EmailVerified,
		Phone:         &fx.Phone,
		PhoneVerified: fx.PhoneVerified,
		PasswordHash:  "$2a$10$0000000000000000000000000000000000000000000000000000",
		State:         models.StateIncomplete,
	}
	require.NoError(t, repo.CreateAccount(context.Background(), account))
	return account
}

// NewTestToken inserts a token row directly, bypassing the manager.
func NewTestToken(t *testing.T, repo *repository.Repository, accountID int64, ch models.Channel, issuedAt time.Time, ttl time.Duration) *models.VerificationToken {
	t.Helper()

	token := &models.VerificationToken{
		AccountID:   accountID,
		Channel:     ch,
		ShortCode:   "ab12",
		OpaqueToken: "opaque-" + ch.String() + "-" + issuedAt.Format(time.RFC3339Nano),
		IssuedAt:    issuedAt,
		ExpiresAt:   issuedAt.Add(ttl),
	}
	require.NoError(t, repo.InsertToken(context.Background(), token))
	return token
}
