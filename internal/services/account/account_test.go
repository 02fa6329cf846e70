// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package account_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
	"codeberg.org/mtheiner/accountkit/internal/services/account"
	"codeberg.org/mtheiner/accountkit/internal/services/password"
	"codeberg.org/mtheiner/accountkit/internal/testutil"
)

func newTestService(t *testing.T) (*account.Service, *repository.Repository, *password.Service) {
	t.Helper()
	_, repo := testutil.NewTestDB(t)
	passwords := password.NewService(password.DefaultPolicy())
	return account.NewService(repo, passwords), repo, passwords
}

func validParams() account.RegisterParams {
	return account.RegisterParams{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "9123456789",
		Password:  "Secret1!",
	}
}

func TestRegister(t *testing.T) {
	svc, repo, passwords := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.NotEmpty(t, created.PublicID)
	assert.Equal(t, models.StateObscure, created.State)
	assert.Empty(t, created.PasswordHash, "snapshot must not carry the hash")

	// The stored hash verifies against the original secret.
	stored, err := repo.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	ok, err := passwords.Verify(stored.PasswordHash, "Secret1!")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRegister_InitialStateWithoutPhone(t *testing.T) {
	svc, _, _ := newTestService(t)

	params := validParams()
	params.Phone = ""
	created, err := svc.Register(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, models.StateIncomplete, created.State)
}

func TestRegister_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for name, mutate := range map[string]func(*account.RegisterParams){
		"first name": func(p *account.RegisterParams) { p.FirstName = "" },
		"last name":  func(p *account.RegisterParams) { p.LastName = "" },
		"password":   func(p *account.RegisterParams) { p.Password = "" },
	} {
		params := validParams()
		mutate(&params)
		_, err := svc.Register(ctx, params)
		assert.ErrorIs(t, err, apperrors.ErrValueInvalid, name)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, _ := newTestService(t)

	params := validParams()
	params.Password = "weak"
	_, err := svc.Register(context.Background(), params)

	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)
}

func TestRegister_InvalidContacts(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	params := validParams()
	params.Email = "not-an-email"
	_, err := svc.Register(ctx, params)
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)

	params = validParams()
	params.Phone = "12345"
	_, err = svc.Register(ctx, params)
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	params := validParams()
	params.Phone = "9999999999"
	_, err = svc.Register(ctx, params)

	assert.ErrorIs(t, err, account.ErrAccountExists)
}

func TestRegister_WithAddresses(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	params := validParams()
	params.Addresses = []models.Address{{
		Province:      "Gilan",
		City:          "Rasht",
		ZipCode:       "1234567890",
		PostalAddress: "12 Example Street",
	}}
	created, err := svc.Register(ctx, params)
	require.NoError(t, err)

	addresses, err := repo.ListAddressesByAccount(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 1)
	assert.Equal(t, created.ID, addresses[0].AccountID)
}

func TestRegister_BadAddressRollsBack(t *testing.T) {
	svc, _, _ := newTestService(t)

	params := validParams()
	params.Addresses = []models.Address{{Province: "", City: "Rasht"}}
	_, err := svc.Register(context.Background(), params)

	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)
}

func TestGetByEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	found, err := svc.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Empty(t, found.PasswordHash)

	_, err = svc.GetByEmail(ctx, "bad email")
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)

	_, err = svc.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestApplyVerification(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)
	require.Equal(t, models.StateObscure, created.State)

	updated, err := svc.ApplyVerification(ctx, created.ID, models.ChannelPhone)
	require.NoError(t, err)
	assert.True(t, updated.PhoneVerified)
	assert.Equal(t, models.StatePartially, updated.State)

	updated, err = svc.ApplyVerification(ctx, created.ID, models.ChannelEmail)
	require.NoError(t, err)
	assert.True(t, updated.EmailVerified)
	assert.Equal(t, models.StateActive, updated.State)
}

func TestApplyVerification_UnknownChannel(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	_, err = svc.ApplyVerification(ctx, created.ID, models.ChannelUnspecified)
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)
}

func TestChangePassword(t *testing.T) {
	svc, repo, passwords := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, created.ID, "Wrong1!x", "NewSecret1!")
	assert.ErrorIs(t, err, apperrors.ErrAuthentication)

	err = svc.ChangePassword(ctx, created.ID, "Secret1!", "weak")
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)

	err = svc.ChangePassword(ctx, created.ID, "Secret1!", "NewSecret1!")
	require.NoError(t, err)

	stored, err := repo.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	ok, err := passwords.Verify(stored.PasswordHash, "NewSecret1!")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetPassword(t *testing.T) {
	svc, repo, passwords := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	require.NoError(t, svc.ResetPassword(ctx, created.ID, "Fresh1!pw"))

	stored, err := repo.GetAccountByID(ctx, created.ID)
	require.NoError(t, err)
	ok, err := passwords.Verify(stored.PasswordHash, "Fresh1!pw")
	require.NoError(t, err)
	assert.True(t, ok)

	err = svc.ResetPassword(ctx, 9999, "Fresh1!pw")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAddAddress(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.Register(ctx, validParams())
	require.NoError(t, err)

	_, err = svc.AddAddress(ctx, created.ID, models.Address{
		Province: "Gilan", City: "Rasht",
		ZipCode: "123", PostalAddress: "12 Example Street",
	})
	assert.ErrorIs(t, err, apperrors.ErrValueInvalid)

	added, err := svc.AddAddress(ctx, created.ID, models.Address{
		Province: "Gilan", City: "Rasht",
		ZipCode: "1234567890", PostalAddress: "12 Example Street",
	})
	require.NoError(t, err)
	assert.NotZero(t, added.ID)

	addresses, err := svc.Addresses(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, addresses, 1)
}
