// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package account implements registration, lookup and the verification and
// password-change flows around the account entity.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
	"codeberg.org/mtheiner/accountkit/internal/services/contact"
	"codeberg.org/mtheiner/accountkit/internal/services/password"
)

// ErrAccountExists is returned when a contact value is already registered.
var ErrAccountExists = errors.New("account already exists")

// Service implements account registration, lookup and mutation flows.
type Service struct {
	repo      *repository.Repository
	passwords *password.Service
}

// NewService creates an account service.
func NewService(repo *repository.Repository, passwords *password.Service) *Service {
	return &Service{repo: repo, passwords: passwords}
}

// RegisterParams holds the parameters for account registration.
type RegisterParams struct {
	FirstName string
	LastName  string
	BirthDate *time.Time
	Email     string
	Phone     string
	Password  string
	Addresses []models.Address
}

// Register validates the parameters, hashes the secret and persists the new
// account together with its addresses in one transaction. The initial
// lifecycle state is derived, never set directly.
func (s *Service) Register(ctx context.Context, params RegisterParams) (*models.Account, error) {
	if err := s.validateRegistration(ctx, params); err != nil {
		return nil, err
	}

	hash, err := s.passwords.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		PublicID:     uuid.NewString(),
		FirstName:    params.FirstName,
		LastName:     params.LastName,
		BirthDate:    params.BirthDate,
		PasswordHash: hash,
	}
	if params.Email != "" {
		account.Email = &params.Email
	}
	if params.Phone != "" {
		account.Phone = &params.Phone
	}
	account.State = DeriveAccountState(account)

	err = s.repo.InTx(ctx, func(r *repository.Repository) error {
		if err := r.CreateAccount(ctx, account); err != nil {
			return fmt.Errorf("create account: %w", err)
		}
		for i := range params.Addresses {
			addr := params.Addresses[i]
			addr.AccountID = account.ID
			if err := r.CreateAddress(ctx, &addr); err != nil {
				return fmt.Errorf("create address: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("register_success", "account_id", account.ID, "state", account.State.String())
	return redact(account), nil
}

// GetByID retrieves an account by its primary key. The returned snapshot
// never carries the credential hash.
func (s *Service) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.repo.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return redact(account), nil
}

// GetByEmail retrieves an account by email, validating the shape first.
func (s *Service) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if err := contact.ValidateEmail(email); err != nil {
		return nil, err
	}
	account, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return redact(account), nil
}

// ApplyVerification marks the given channel as verified and rederives the
// lifecycle state. Called after the token manager reports a successful
// validation.
func (s *Service) ApplyVerification(ctx context.Context, accountID int64, ch models.Channel) (*models.Account, error) {
	var updated *models.Account
	err := s.repo.InTx(ctx, func(r *repository.Repository) error {
		account, err := r.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}

		switch ch {
		case models.ChannelEmail:
			account.EmailVerified = true
		case models.ChannelPhone:
			account.PhoneVerified = true
		default:
			return fmt.Errorf("cannot verify channel %s: %w", ch, apperrors.ErrValueInvalid)
		}
		account.State = DeriveAccountState(account)

		if err := r.UpdateAccount(ctx, account); err != nil {
			return err
		}
		updated = account
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("verification_applied", "account_id", accountID,
		"channel", ch.String(), "state", updated.State.String())
	return redact(updated), nil
}

// ChangePassword rotates the credential after checking the current secret.
func (s *Service) ChangePassword(ctx context.Context, accountID int64, currentPassword, newPassword string) error {
	account, err := s.repo.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}

	if _, err := s.passwords.Verify(account.PasswordHash, currentPassword); err != nil {
		return err
	}

	return s.setPassword(ctx, accountID, newPassword)
}

// ResetPassword sets a new credential without the current secret. The caller
// must have authorized the reset beforehand, typically through a successful
// opaque-token validation.
func (s *Service) ResetPassword(ctx context.Context, accountID int64, newPassword string) error {
	if _, err := s.repo.GetAccountByID(ctx, accountID); err != nil {
		return err
	}
	return s.setPassword(ctx, accountID, newPassword)
}

func (s *Service) setPassword(ctx context.Context, accountID int64, newPassword string) error {
	ok, err := s.passwords.ValidateComplexity(newPassword)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("password does not meet the complexity policy: %w", apperrors.ErrValueInvalid)
	}

	hash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateAccountPassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	slog.Info("password_updated", "account_id", accountID)
	return nil
}

// AddAddress validates and stores a postal address for an account.
func (s *Service) AddAddress(ctx context.Context, accountID int64, address models.Address) (*models.Address, error) {
	if err := ValidateAddress(&address); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	address.AccountID = accountID
	if err := s.repo.CreateAddress(ctx, &address); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return &address, nil
}

// Addresses returns all addresses registered for an account.
func (s *Service) Addresses(ctx context.Context, accountID int64) ([]models.Address, error) {
	return s.repo.ListAddressesByAccount(ctx, accountID)
}

// redact strips the credential hash from a snapshot crossing the service
// boundary.
func redact(a *models.Account) *models.Account {
	if a == nil {
		return nil
	}
	clone := *a
	clone.PasswordHash = ""
	return &clone
}
