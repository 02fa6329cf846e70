// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package account

import "codeberg.org/mtheiner/accountkit/internal/models"

// DeriveState maps verification flags to the coarse account lifecycle state.
// Pure and total over all flag combinations:
//
//   - names or phone missing          -> INCOMPLETE
//   - phone present but not verified  -> OBSCURE
//   - phone verified, email pending   -> PARTIALLY
//   - phone verified, email verified
//     or no email at all              -> ACTIVE
func DeriveState(hasFirstName, hasLastName, hasPhone, phoneVerified, hasEmail, emailVerified bool) models.AccountState {
	if !hasFirstName || !hasLastName || !hasPhone {
		return models.StateIncomplete
	}
	if !phoneVerified {
		return models.StateObscure
	}
	if hasEmail && !emailVerified {
		return models.StatePartially
	}
	return models.StateActive
}

// DeriveAccountState derives the lifecycle state from an account record.
func DeriveAccountState(a *models.Account) models.AccountState {
	return DeriveState(
		a.FirstName != "",
		a.LastName != "",
		a.HasPhone(),
		a.PhoneVerified,
		a.HasEmail(),
		a.EmailVerified,
	)
}
