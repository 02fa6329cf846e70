// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"codeberg.org/mtheiner/accountkit/internal/models"
)

// CreateAddress inserts a postal address for an account.
func (r *Repository) CreateAddress(ctx context.Context, address *models.Address) error {
	address.CreatedAt = time.Now().UTC()
	res, err := r.q.ExecContext(ctx,
		`INSERT INTO addresses (account_id, province, city, zip_code, postal_address, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		address.AccountID, address.Province, address.City,
		address.ZipCode, address.PostalAddress, address.CreatedAt)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	address.ID = id
	return nil
}

// ListAddressesByAccount returns all addresses registered for an account.
func (r *Repository) ListAddressesByAccount(ctx context.Context, accountID int64) ([]models.Address, error) {
	var addresses []models.Address
	err := r.q.SelectContext(ctx, &addresses,
		`SELECT * FROM addresses WHERE account_id = ? ORDER BY id`, accountID)
	if err != nil {
		return nil, err
	}
	return addresses, nil
}
