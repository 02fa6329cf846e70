// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package token

import (
	"context"
	"errors"

	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
)

// sqlStore adapts the repository to the manager's Store port.
type sqlStore struct {
	repo *repository.Repository
}

// NewStore wraps the repository as a Store.
func NewStore(repo *repository.Repository) Store {
	return &sqlStore{repo: repo}
}

func (s *sqlStore) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return account, err
}

func (s *sqlStore) Lane(ctx context.Context, fn func(LaneStore) error) error {
	return s.repo.InTx(ctx, func(tx *repository.Repository) error {
		return fn(tx)
	})
}
