// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mtheiner/accountkit/internal/models"
)

// CreateAccount inserts a new account and fills in its generated ID.
func (r *Repository) CreateAccount(ctx context.Context, account *models.Account) error {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	res, err := r.q.ExecContext(ctx,
		`INSERT INTO accounts
		    (public_id, first_name, last_name, birth_date, email, email_verified,
		     phone, phone_verified, password_hash, state, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		account.PublicID, account.FirstName, account.LastName, account.BirthDate,
		account.Email, account.EmailVerified, account.Phone, account.PhoneVerified,
		account.PasswordHash, account.State, account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

// GetAccountByID retrieves an account by its primary key.
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	var account models.Account
	if err := r.q.GetContext(ctx, &account, `SELECT * FROM accounts WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByPublicID retrieves an account by its external UUID.
func (r *Repository) GetAccountByPublicID(ctx context.Context, publicID string) (*models.Account, error) {
	var account models.Account
	if err := r.q.GetContext(ctx, &account, `SELECT * FROM accounts WHERE public_id = ?`, publicID); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByEmail retrieves an account by its email address.
func (r *Repository) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.q.GetContext(ctx, &account, `SELECT * FROM accounts WHERE email = ?`, email); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// GetAccountByPhone retrieves an account by its phone number.
func (r *Repository) GetAccountByPhone(ctx context.Context, phone string) (*models.Account, error) {
	var account models.Account
	if err := r.q.GetContext(ctx, &account, `SELECT * FROM accounts WHERE phone = ?`, phone); err != nil {
		return nil, wrapError(err)
	}
	return &account, nil
}

// UpdateAccount persists mutable account fields: names, contacts, their
// verified flags and the derived state.
func (r *Repository) UpdateAccount(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now().UTC()
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts
		    SET first_name = ?, last_name = ?, birth_date = ?,
		        email = ?, email_verified = ?, phone = ?, phone_verified = ?,
		        state = ?, updated_at = ?
		  WHERE id = ?`,
		account.FirstName, account.LastName, account.BirthDate,
		account.Email, account.EmailVerified, account.Phone, account.PhoneVerified,
		account.State, account.UpdatedAt, account.ID)
	return err
}

// UpdateAccountPassword updates an account's credential hash.
func (r *Repository) UpdateAccountPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE accounts SET password_hash = ?, updated_at = ? WHERE id = ?`,
		passwordHash, time.Now().UTC(), id)
	return err
}
