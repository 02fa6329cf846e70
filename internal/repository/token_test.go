// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/testutil"
)

func TestInsertAndLatestToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0, time.Hour)
	latest := testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0.Add(time.Minute), time.Hour)

	found, err := repo.LatestToken(ctx, acct.ID, models.ChannelPhone)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, latest.ID, found.ID)
	assert.Equal(t, models.ChannelPhone, found.Channel)
}

func TestLatestToken_ChannelFilter(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	emailToken := testutil.NewTestToken(t, repo, acct.ID, models.ChannelEmail, t0, time.Hour)
	phoneToken := testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0.Add(time.Minute), time.Hour)

	// Unscoped lookup returns the most recent across channels.
	found, err := repo.LatestToken(ctx, acct.ID, models.ChannelUnspecified)
	require.NoError(t, err)
	assert.Equal(t, phoneToken.ID, found.ID)

	found, err = repo.LatestToken(ctx, acct.ID, models.ChannelEmail)
	require.NoError(t, err)
	assert.Equal(t, emailToken.ID, found.ID)
}

func TestLatestToken_TieBreaksOnInsertOrder(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	testutil.NewTestToken(t, repo, acct.ID, models.ChannelEmail, t0, time.Hour)
	second := testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0, time.Hour)

	found, err := repo.LatestToken(ctx, acct.ID, models.ChannelUnspecified)
	require.NoError(t, err)
	assert.Equal(t, second.ID, found.ID)
}

func TestLatestToken_None(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	found, err := repo.LatestToken(ctx, acct.ID, models.ChannelUnspecified)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTokenByOpaqueValue(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	token := testutil.NewTestToken(t, repo, acct.ID, models.ChannelEmail, t0, time.Hour)

	found, err := repo.TokenByOpaqueValue(ctx, token.OpaqueToken)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, token.ID, found.ID)

	found, err = repo.TokenByOpaqueValue(ctx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestUpdateToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	token := testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0, time.Hour)

	used := t0.Add(10 * time.Minute)
	token.LastUsedAt = &used
	token.FailedAttempts = 2
	token.Deactivated = true
	require.NoError(t, repo.UpdateToken(ctx, token))

	found, err := repo.LatestToken(ctx, acct.ID, models.ChannelPhone)
	require.NoError(t, err)
	require.NotNil(t, found.LastUsedAt)
	assert.WithinDuration(t, used, *found.LastUsedAt, time.Second)
	assert.Equal(t, 2, found.FailedAttempts)
	assert.True(t, found.Deactivated)
}

func TestListTokensByAccount(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()
	acct := testutil.NewTestAccount(t, repo, testutil.AccountFixture{})

	t0 := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	testutil.NewTestToken(t, repo, acct.ID, models.ChannelEmail, t0, time.Hour)
	newest := testutil.NewTestToken(t, repo, acct.ID, models.ChannelPhone, t0.Add(time.Hour), time.Hour)

	history, err := repo.ListTokensByAccount(ctx, acct.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, newest.ID, history[0].ID)
}
