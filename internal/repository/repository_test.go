// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
	"codeberg.org/mtheiner/accountkit/internal/testutil"
)

func TestInTx_CommitsOnSuccess(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	var created *models.Account
	err := repo.InTx(ctx, func(r *repository.Repository) error {
		email := "tx@example.com"
		created = &models.Account{
			PublicID: "tx-ok", FirstName: "Ada", LastName: "Lovelace",
			Email: &email, PasswordHash: "x", State: models.StateIncomplete,
		}
		return r.CreateAccount(ctx, created)
	})
	require.NoError(t, err)

	found, err := repo.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "tx-ok", found.PublicID)
}

func TestInTx_RollsBackOnError(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	boom := errors.New("boom")
	var id int64
	err := repo.InTx(ctx, func(r *repository.Repository) error {
		email := "rollback@example.com"
		a := &models.Account{
			PublicID: "tx-rollback", FirstName: "Ada", LastName: "Lovelace",
			Email: &email, PasswordHash: "x", State: models.StateIncomplete,
		}
		if err := r.CreateAccount(ctx, a); err != nil {
			return err
		}
		id = a.ID
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repo.GetAccountByID(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInTx_Nested(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	err := repo.InTx(ctx, func(r *repository.Repository) error {
		return r.InTx(ctx, func(inner *repository.Repository) error {
			email := "nested@example.com"
			return inner.CreateAccount(ctx, &models.Account{
				PublicID: "tx-nested", FirstName: "Ada", LastName: "Lovelace",
				Email: &email, PasswordHash: "x", State: models.StateIncomplete,
			})
		})
	})
	require.NoError(t, err)

	_, err = repo.GetAccountByEmail(ctx, "nested@example.com")
	assert.NoError(t, err)
}
