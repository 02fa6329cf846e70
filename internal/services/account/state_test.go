// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package account_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/services/account"
)

func TestDeriveState(t *testing.T) {
	tests := []struct {
		name                                                              string
		hasFirst, hasLast, hasPhone, phoneVerified, hasEmail, emailVerified bool
		want                                                              models.AccountState
	}{
		{"empty account", false, false, false, false, false, false, models.StateIncomplete},
		{"no phone", true, true, false, false, true, true, models.StateIncomplete},
		{"missing last name", true, false, true, true, false, false, models.StateIncomplete},
		{"phone unverified", true, true, true, false, false, false, models.StateObscure},
		{"phone unverified with email", true, true, true, false, true, true, models.StateObscure},
		{"phone verified no email", true, true, true, true, false, false, models.StateActive},
		{"phone verified email pending", true, true, true, true, true, false, models.StatePartially},
		{"fully verified", true, true, true, true, true, true, models.StateActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := account.DeriveState(tt.hasFirst, tt.hasLast, tt.hasPhone,
				tt.phoneVerified, tt.hasEmail, tt.emailVerified)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestDeriveState_Total exercises every flag combination and checks the
// structural invariants instead of pinning each result.
func TestDeriveState_Total(t *testing.T) {
	bools := []bool{false, true}
	for _, first := range bools {
		for _, last := range bools {
			for _, phone := range bools {
				for _, phoneOK := range bools {
					for _, email := range bools {
						for _, emailOK := range bools {
							got := account.DeriveState(first, last, phone, phoneOK, email, emailOK)

							assert.Contains(t, []models.AccountState{
								models.StateIncomplete,
								models.StateObscure,
								models.StatePartially,
								models.StateActive,
							}, got)

							// Active is unreachable without a verified phone.
							if got == models.StateActive {
								assert.True(t, phone && phoneOK)
							}
						}
					}
				}
			}
		}
	}
}

func TestDeriveAccountState(t *testing.T) {
	email := "ada@example.com"
	phone := "9123456789"

	a := &models.Account{FirstName: "Ada", LastName: "Lovelace", Phone: &phone, PhoneVerified: true}
	assert.Equal(t, models.StateActive, account.DeriveAccountState(a))

	a.Email = &email
	assert.Equal(t, models.StatePartially, account.DeriveAccountState(a))

	a.EmailVerified = true
	assert.Equal(t, models.StateActive, account.DeriveAccountState(a))
}
