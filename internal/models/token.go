// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package models

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// Channel is the contact medium a verification token is scoped to. The zero
// value means "unspecified" and is only meaningful as a lookup wildcard.
type Channel int

const (
	ChannelUnspecified Channel = 0
	ChannelEmail       Channel = 1
	ChannelPhone       Channel = 2
)

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelPhone:
		return "phone"
	case ChannelUnspecified:
		return "unspecified"
	default:
		return fmt.Sprintf("Channel(%d)", int(c))
	}
}

// ParseChannel converts a textual channel name to its enum value.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "email":
		return ChannelEmail, nil
	case "phone":
		return ChannelPhone, nil
	default:
		return ChannelUnspecified, fmt.Errorf("unknown channel %q", s)
	}
}

// Value encodes the channel as an integer for storage. The enum crosses the
// service boundary as a tagged value; only this adapter sees the integer.
func (c Channel) Value() (driver.Value, error) {
	return int64(c), nil
}

// Scan decodes the stored integer representation.
func (c *Channel) Scan(src any) error {
	v, ok := src.(int64)
	if !ok {
		return fmt.Errorf("channel: cannot scan %T", src)
	}
	*c = Channel(v)
	return nil
}

// VerificationToken is a single-use, time-bounded secret pair bound to one
// account and one channel. ShortCode is the human-typeable form; OpaqueToken
// is the high-entropy value embedded in verification links. Tokens are never
// deleted; newer issuances supersede older rows.
type VerificationToken struct { //nolint:govet // fieldalignment not critical for models
	ID             int64      `db:"id" json:"id"`
	AccountID      int64      `db:"account_id" json:"account_id"`
	Channel        Channel    `db:"channel" json:"channel"`
	ShortCode      string     `db:"short_code" json:"-"`
	OpaqueToken    string     `db:"opaque_token" json:"-"`
	IssuedAt       time.Time  `db:"issued_at" json:"issued_at"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expires_at"`
	LastUsedAt     *time.Time `db:"last_used_at" json:"last_used_at,omitempty"`
	FailedAttempts int        `db:"failed_attempts" json:"failed_attempts"`
	Deactivated    bool       `db:"deactivated" json:"deactivated"`
}

// Expired reports whether the token's validity window has passed at now.
func (t *VerificationToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// Active reports whether the token can still be presented at now: not
// deactivated and not expired.
func (t *VerificationToken) Active(now time.Time) bool {
	return !t.Deactivated && !t.Expired(now)
}
