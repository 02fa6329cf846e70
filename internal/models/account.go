// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// AccountState is the coarse lifecycle state derived from an account's
// verification flags. It is never set directly; the account service
// recomputes it after every flag change.
type AccountState int

const (
	StateIncomplete AccountState = iota + 1
	StateObscure
	StatePartially
	StateActive
	StateDeactivated
	StateRestricted
)

func (s AccountState) String() string {
	switch s {
	case StateIncomplete:
		return "incomplete"
	case StateObscure:
		return "obscure"
	case StatePartially:
		return "partially"
	case StateActive:
		return "active"
	case StateDeactivated:
		return "deactivated"
	case StateRestricted:
		return "restricted"
	default:
		return fmt.Sprintf("AccountState(%d)", int(s))
	}
}

// Value encodes the state as an integer for storage.
func (s AccountState) Value() (driver.Value, error) {
	return int64(s), nil
}

// Scan decodes the stored integer representation.
func (s *AccountState) Scan(src any) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("account state: cannot scan %T", src)
	}
	*s = AccountState(v)
	return nil
}

// Account is the identity record. Email and phone are optional and unique;
// each carries its own verified flag. PasswordHash never leaves the
// repository layer in plaintext form and is stripped from lookups that cross
// the service boundary.
type Account struct { //nolint:govet // fieldalignment not critical for models
	ID            int64        `db:"id" json:"id"`
	PublicID      string       `db:"public_id" json:"public_id"`
	FirstName     string       `db:"first_name" json:"first_name"`
	LastName      string       `db:"last_name" json:"last_name"`
	BirthDate     *time.Time   `db:"birth_date" json:"birth_date,omitempty"`
	Email         *string      `db:"email" json:"email,omitempty"`
	EmailVerified bool         `db:"email_verified" json:"email_verified"`
	Phone         *string      `db:"phone" json:"phone,omitempty"`
	PhoneVerified bool         `db:"phone_verified" json:"phone_verified"`
	PasswordHash  string       `db:"password_hash" json:"-"`
	State         AccountState `db:"state" json:"state"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// HasEmail reports whether a non-empty email is registered.
func (a *Account) HasEmail() bool {
	return a.Email != nil && *a.Email != ""
}

// HasPhone reports whether a non-empty phone number is registered.
func (a *Account) HasPhone() bool {
	return a.Phone != nil && *a.Phone != ""
}

// ContactFor returns the registered contact value for the given channel, or
// an empty string if none is registered.
func (a *Account) ContactFor(ch Channel) string {
	switch ch {
	case ChannelEmail:
		if a.HasEmail() {
			return *a.Email
		}
	case ChannelPhone:
		if a.HasPhone() {
			return *a.Phone
		}
	}
	return ""
}

// Address is a postal address owned by an account.
type Address struct { //nolint:govet // fieldalignment not critical for models
	ID            int64     `db:"id" json:"id"`
	AccountID     int64     `db:"account_id" json:"account_id"`
	Province      string    `db:"province" json:"province"`
	City          string    `db:"city" json:"city"`
	ZipCode       string    `db:"zip_code" json:"zip_code"`
	PostalAddress string    `db:"postal_address" json:"postal_address"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
