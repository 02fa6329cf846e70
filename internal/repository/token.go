// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package repository

import (
	"context"

	"codeberg.org/mtheiner/accountkit/internal/models"
)

// InsertToken inserts a freshly issued verification token and fills in its
// generated ID.
func (r *Repository) InsertToken(ctx context.Context, token *models.VerificationToken) error {
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO verification_tokens
		    (account_id, channel, short_code, opaque_token, issued_at, expires_at,
		     last_used_at, failed_attempts, deactivated)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		token.AccountID, token.Channel, token.ShortCode, token.OpaqueToken,
		token.IssuedAt, token.ExpiresAt, token.LastUsedAt,
		token.FailedAttempts, token.Deactivated)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	token.ID = id
	return nil
}

// LatestToken returns the most recently issued token for the account,
// restricted to a channel unless ch is ChannelUnspecified. Returns (nil, nil)
// when the account has no matching token; ties on issued_at break towards the
// later insert.
func (r *Repository) LatestToken(ctx context.Context, accountID int64, ch models.Channel) (*models.VerificationToken, error) {
	query := `SELECT * FROM verification_tokens WHERE account_id = ?
	          ORDER BY issued_at DESC, id DESC LIMIT 1`
	args := []any{accountID}
	if ch != models.ChannelUnspecified {
		query = `SELECT * FROM verification_tokens WHERE account_id = ? AND channel = ?
		         ORDER BY issued_at DESC, id DESC LIMIT 1`
		args = append(args, ch)
	}

	var tokens []models.VerificationToken
	if err := r.q.SelectContext(ctx, &tokens, query, args...); err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return &tokens[0], nil
}

// TokenByOpaqueValue returns the token carrying the given opaque value, or
// (nil, nil) if none exists. The opaque value is a unique lookup key.
func (r *Repository) TokenByOpaqueValue(ctx context.Context, opaque string) (*models.VerificationToken, error) {
	var tokens []models.VerificationToken
	err := r.q.SelectContext(ctx, &tokens,
		`SELECT * FROM verification_tokens WHERE opaque_token = ? LIMIT 1`, opaque)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, nil
	}
	return &tokens[0], nil
}

// UpdateToken persists the mutable token fields touched by validation:
// last_used_at, failed_attempts and deactivated.
func (r *Repository) UpdateToken(ctx context.Context, token *models.VerificationToken) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE verification_tokens
		    SET last_used_at = ?, failed_attempts = ?, deactivated = ?
		  WHERE id = ?`,
		token.LastUsedAt, token.FailedAttempts, token.Deactivated, token.ID)
	return err
}

// ListTokensByAccount returns the full token history for an account, newest
// first. Superseded tokens are retained, never deleted.
func (r *Repository) ListTokensByAccount(ctx context.Context, accountID int64) ([]models.VerificationToken, error) {
	var tokens []models.VerificationToken
	err := r.q.SelectContext(ctx, &tokens,
		`SELECT * FROM verification_tokens WHERE account_id = ?
		 ORDER BY issued_at DESC, id DESC`, accountID)
	if err != nil {
		return nil, err
	}
	return tokens, nil
}
