// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package token implements the ephemeral verification-token lifecycle:
// issuing, validating, expiring and locking out the short-lived tokens used
// to confirm ownership of an email address or phone number. The manager
// enforces at most one non-deactivated, non-expired token per
// (account, channel) lane and bounds guess attempts.
package token

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/mtheiner/accountkit/internal/apperrors"
	"codeberg.org/mtheiner/accountkit/internal/models"
)

const (
	// DefaultTTL is the validity window of an issued token.
	DefaultTTL = time.Hour

	// DefaultMaxFailedAttempts is the number of failed short-code attempts
	// after which the next failure deactivates the token.
	DefaultMaxFailedAttempts = 3
)

// Config tunes the manager. Zero values fall back to defaults; Clock and
// Source default to the wall clock and crypto/rand.
type Config struct {
	TTL               time.Duration
	MaxFailedAttempts int
	Clock             Clock
	Source            Source
}

// Manager is the token lifecycle state machine. It is the sole mutator of
// token rows; no other component writes failed_attempts, deactivated or
// last_used_at.
type Manager struct {
	store     Store
	clock     Clock
	source    Source
	ttl       time.Duration
	maxFailed int
}

// NewManager creates a Manager with its dependencies injected.
func NewManager(store Store, cfg Config) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxFailedAttempts <= 0 {
		cfg.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Source == nil {
		cfg.Source = NewSecureSource()
	}
	return &Manager{
		store:     store,
		clock:     cfg.Clock,
		source:    cfg.Source,
		ttl:       cfg.TTL,
		maxFailed: cfg.MaxFailedAttempts,
	}
}

// Issue generates and persists a fresh token for the account and channel.
// It fails if the account does not exist, has no contact registered for the
// channel, or still holds an active token for the same lane.
func (m *Manager) Issue(ctx context.Context, accountID int64, ch models.Channel) (*models.VerificationToken, error) {
	if ch != models.ChannelEmail && ch != models.ChannelPhone {
		return nil, fmt.Errorf("cannot issue token for channel %s: %w", ch, apperrors.ErrValueInvalid)
	}

	account, err := m.store.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("look up account %d: %w", accountID, err)
	}
	if account == nil {
		return nil, fmt.Errorf("account %d does not exist: %w", accountID, apperrors.ErrSecurity)
	}
	if account.ContactFor(ch) == "" {
		return nil, fmt.Errorf("account %d has no %s registered: %w", accountID, ch, apperrors.ErrInvariant)
	}

	var issued *models.VerificationToken
	var opErr error
	err = m.store.Lane(ctx, func(ls LaneStore) error {
		last, err := ls.LatestToken(ctx, accountID, ch)
		if err != nil {
			return err
		}

		now := m.clock.Now()
		if last != nil && !last.Deactivated && now.Before(last.ExpiresAt) {
			opErr = fmt.Errorf("a valid token already exists for account %d channel %s: %w",
				accountID, ch, apperrors.ErrInvariant)
			return nil
		}

		code, err := m.source.ShortCode()
		if err != nil {
			return err
		}
		opaque, err := m.source.OpaqueToken()
		if err != nil {
			return err
		}

		issued = &models.VerificationToken{
			AccountID:   accountID,
			Channel:     ch,
			ShortCode:   code,
			OpaqueToken: opaque,
			IssuedAt:    now,
			ExpiresAt:   now.Add(m.ttl),
		}
		return ls.InsertToken(ctx, issued)
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		return nil, opErr
	}

	slog.Info("token_issued", "account_id", accountID, "channel", ch.String(),
		"expires_at", issued.ExpiresAt)
	return issued, nil
}

// ValidateShortCode checks a human-entered code against the account's most
// recent token, restricted to ch unless ch is ChannelUnspecified ("most
// recent wins" across channels). On success it stamps last_used_at and
// returns the channel the token verifies. On a mismatch it increments the
// failed-attempt counter and, past the limit, deactivates the token; that
// deactivation outranks the generic invalid-code error, so the attempt that
// trips the lockout and every attempt after it reports a security violation
// even when the presented code is correct.
func (m *Manager) ValidateShortCode(ctx context.Context, accountID int64, code string, ch models.Channel) (models.Channel, error) {
	var verified models.Channel
	var opErr error

	err := m.store.Lane(ctx, func(ls LaneStore) error {
		tk, err := ls.LatestToken(ctx, accountID, ch)
		if err != nil {
			return err
		}
		if tk == nil {
			opErr = fmt.Errorf("account %d has no token: %w", accountID, apperrors.ErrSecurity)
			return nil
		}
		if tk.Deactivated {
			opErr = fmt.Errorf("token is deactivated: %w", apperrors.ErrSecurity)
			return nil
		}

		now := m.clock.Now()
		if tk.Expired(now) {
			opErr = fmt.Errorf("token is expired: %w", apperrors.ErrTimeout)
			return nil
		}

		if subtle.ConstantTimeCompare([]byte(tk.ShortCode), []byte(code)) == 1 {
			tk.LastUsedAt = &now
			if err := ls.UpdateToken(ctx, tk); err != nil {
				return err
			}
			verified = tk.Channel
			return nil
		}

		// The increment is a deliberate, persisted side effect of a failed
		// attempt; the lane transaction must commit even though the
		// operation fails.
		tk.FailedAttempts++
		if tk.FailedAttempts > m.maxFailed {
			tk.Deactivated = true
		}
		if err := ls.UpdateToken(ctx, tk); err != nil {
			return err
		}
		if tk.Deactivated {
			opErr = fmt.Errorf("token is deactivated: %w", apperrors.ErrSecurity)
		} else {
			opErr = fmt.Errorf("token is not valid: %w", apperrors.ErrAuthentication)
		}
		return nil
	})
	if err != nil {
		return models.ChannelUnspecified, err
	}
	if opErr != nil {
		slog.Warn("short_code_rejected", "account_id", accountID, "reason", opErr.Error())
		return models.ChannelUnspecified, opErr
	}

	slog.Info("short_code_verified", "account_id", accountID, "channel", verified.String())
	return verified, nil
}

// ValidateOpaque checks a link token by its exact opaque value and returns
// the owning account and channel. A successful validation stamps
// last_used_at but does not consume the token; it stays usable until it
// expires or a short-code failure path deactivates it.
func (m *Manager) ValidateOpaque(ctx context.Context, opaque string) (int64, models.Channel, error) {
	var accountID int64
	var verified models.Channel
	var opErr error

	err := m.store.Lane(ctx, func(ls LaneStore) error {
		tk, err := ls.TokenByOpaqueValue(ctx, opaque)
		if err != nil {
			return err
		}
		if tk == nil {
			opErr = fmt.Errorf("token is not valid: %w", apperrors.ErrAuthentication)
			return nil
		}
		if tk.Deactivated {
			opErr = fmt.Errorf("token is deactivated: %w", apperrors.ErrSecurity)
			return nil
		}

		now := m.clock.Now()
		if tk.Expired(now) {
			opErr = fmt.Errorf("token is expired: %w", apperrors.ErrTimeout)
			return nil
		}

		tk.LastUsedAt = &now
		if err := ls.UpdateToken(ctx, tk); err != nil {
			return err
		}
		accountID = tk.AccountID
		verified = tk.Channel
		return nil
	})
	if err != nil {
		return 0, models.ChannelUnspecified, err
	}
	if opErr != nil {
		slog.Warn("opaque_token_rejected", "reason", opErr.Error())
		return 0, models.ChannelUnspecified, opErr
	}

	slog.Info("opaque_token_verified", "account_id", accountID, "channel", verified.String())
	return accountID, verified, nil
}
