// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package account

import (
	"context"
	"errors"
	"fmt"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
	"codeberg.org/mtheiner/accountkit/internal/services/contact"
)

const maxPostalAddressLength = 512

// ValidateAddress checks the required fields of a postal address.
func ValidateAddress(address *models.Address) error {
	if address.Province == "" {
		return fmt.Errorf("province is required: %w", apperrors.ErrValueInvalid)
	}
	if address.City == "" {
		return fmt.Errorf("city is required: %w", apperrors.ErrValueInvalid)
	}
	if len(address.ZipCode) != 10 {
		return fmt.Errorf("zip code must be 10 characters: %w", apperrors.ErrValueInvalid)
	}
	if address.PostalAddress == "" || len(address.PostalAddress) >= maxPostalAddressLength {
		return fmt.Errorf("postal address is required and bounded: %w", apperrors.ErrValueInvalid)
	}
	return nil
}

// validateRegistration checks required fields, secret complexity, contact
// shapes, addresses and contact uniqueness.
func (s *Service) validateRegistration(ctx context.Context, params RegisterParams) error {
	if params.FirstName == "" {
		return fmt.Errorf("first name is required: %w", apperrors.ErrValueInvalid)
	}
	if params.LastName == "" {
		return fmt.Errorf("last name is required: %w", apperrors.ErrValueInvalid)
	}
	if params.Password == "" {
		return fmt.Errorf("password is required: %w", apperrors.ErrValueInvalid)
	}

	ok, err := s.passwords.ValidateComplexity(params.Password)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("password does not meet the complexity policy: %w", apperrors.ErrValueInvalid)
	}

	if params.Email != "" {
		if err := contact.ValidateEmail(params.Email); err != nil {
			return err
		}
		if _, err := s.repo.GetAccountByEmail(ctx, params.Email); err == nil {
			return fmt.Errorf("email already registered: %w", ErrAccountExists)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check existing email: %w", err)
		}
	}
	if params.Phone != "" {
		if err := contact.ValidatePhone(params.Phone); err != nil {
			return err
		}
		if _, err := s.repo.GetAccountByPhone(ctx, params.Phone); err == nil {
			return fmt.Errorf("phone already registered: %w", ErrAccountExists)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("check existing phone: %w", err)
		}
	}

	for i := range params.Addresses {
		if err := ValidateAddress(&params.Addresses[i]); err != nil {
			return err
		}
	}
	return nil
}
