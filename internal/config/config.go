// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

// Package config resolves runtime configuration from CLI flags, environment
// variables and config.toml, in that order of precedence.
package config

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

var configFile = altsrc.StringSourcer("config.toml")

type Config struct { //nolint:govet // fieldalignment not critical for config structs
	BaseURL  string
	Log      LogConfig
	Database DatabaseConfig
	Token    TokenConfig
	Password PasswordConfig
	SMTP     SMTPConfig
	SMS      SMSConfig
}

type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

type DatabaseConfig struct {
	DSN string
}

// TokenConfig tunes the verification-token lifecycle.
type TokenConfig struct {
	TTL               time.Duration
	MaxFailedAttempts int
}

// PasswordConfig bounds the secret complexity policy.
type PasswordConfig struct {
	MinLength int
	MaxLength int
}

type SMTPConfig struct { //nolint:govet // fieldalignment not critical for config structs
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMSConfig points at the outbound SMS gateway.
type SMSConfig struct {
	GatewayURL string
	APIKey     string
	From       string
}

// NewFromCLI builds the Config from resolved CLI flag values.
func NewFromCLI(cmd *cli.Command) *Config {
	return &Config{
		BaseURL: cmd.String("base-url"),
		Log: LogConfig{
			Level:  cmd.String("log-level"),
			Format: cmd.String("log-format"),
		},
		Database: DatabaseConfig{
			DSN: cmd.String("database-dsn"),
		},
		Token: TokenConfig{
			TTL:               cmd.Duration("token-ttl"),
			MaxFailedAttempts: int(cmd.Int("token-max-failed-attempts")),
		},
		Password: PasswordConfig{
			MinLength: int(cmd.Int("password-min-length")),
			MaxLength: int(cmd.Int("password-max-length")),
		},
		SMTP: SMTPConfig{
			Host:     cmd.String("smtp-host"),
			Port:     int(cmd.Int("smtp-port")),
			Username: cmd.String("smtp-username"),
			Password: cmd.String("smtp-password"),
			From:     cmd.String("smtp-from"),
			FromName: cmd.String("smtp-from-name"),
		},
		SMS: SMSConfig{
			GatewayURL: cmd.String("sms-gateway-url"),
			APIKey:     cmd.String("sms-api-key"),
			From:       cmd.String("sms-from"),
		},
	}
}

// Flags declares all CLI flags with their env and config.toml sources.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "base-url",
			Value:   "http://localhost:8080",
			Usage:   "Base URL used in verification links",
			Sources: cli.NewValueSourceChain(cli.EnvVar("BASE_URL"), toml.TOML("base_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_LEVEL"), toml.TOML("log.level", configFile)),
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text, json)",
			Sources: cli.NewValueSourceChain(cli.EnvVar("LOG_FORMAT"), toml.TOML("log.format", configFile)),
		},
		&cli.StringFlag{
			Name:    "database-dsn",
			Value:   "./data/accounts.db",
			Usage:   "Database DSN",
			Sources: cli.NewValueSourceChain(cli.EnvVar("DATABASE_DSN"), toml.TOML("database.dsn", configFile)),
		},
		&cli.DurationFlag{
			Name:    "token-ttl",
			Value:   time.Hour,
			Usage:   "Validity window of verification tokens",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_TTL"), toml.TOML("token.ttl", configFile)),
		},
		&cli.IntFlag{
			Name:    "token-max-failed-attempts",
			Value:   3,
			Usage:   "Failed short-code attempts before lockout",
			Sources: cli.NewValueSourceChain(cli.EnvVar("TOKEN_MAX_FAILED_ATTEMPTS"), toml.TOML("token.max_failed_attempts", configFile)),
		},
		&cli.IntFlag{
			Name:    "password-min-length",
			Value:   6,
			Usage:   "Minimum password length",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_MIN_LENGTH"), toml.TOML("password.min_length", configFile)),
		},
		&cli.IntFlag{
			Name:    "password-max-length",
			Value:   31,
			Usage:   "Maximum password length",
			Sources: cli.NewValueSourceChain(cli.EnvVar("PASSWORD_MAX_LENGTH"), toml.TOML("password.max_length", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-host",
			Usage:   "SMTP host for outbound mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_HOST"), toml.TOML("smtp.host", configFile)),
		},
		&cli.IntFlag{
			Name:    "smtp-port",
			Value:   587,
			Usage:   "SMTP port",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PORT"), toml.TOML("smtp.port", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-username",
			Usage:   "SMTP username",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_USERNAME"), toml.TOML("smtp.username", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-password",
			Usage:   "SMTP password",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_PASSWORD"), toml.TOML("smtp.password", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from",
			Usage:   "From address for outbound mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM"), toml.TOML("smtp.from", configFile)),
		},
		&cli.StringFlag{
			Name:    "smtp-from-name",
			Usage:   "Display name for outbound mail",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMTP_FROM_NAME"), toml.TOML("smtp.from_name", configFile)),
		},
		&cli.StringFlag{
			Name:    "sms-gateway-url",
			Usage:   "HTTP endpoint of the SMS gateway",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMS_GATEWAY_URL"), toml.TOML("sms.gateway_url", configFile)),
		},
		&cli.StringFlag{
			Name:    "sms-api-key",
			Usage:   "API key for the SMS gateway",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMS_API_KEY"), toml.TOML("sms.api_key", configFile)),
		},
		&cli.StringFlag{
			Name:    "sms-from",
			Usage:   "Sender id for outbound SMS",
			Sources: cli.NewValueSourceChain(cli.EnvVar("SMS_FROM"), toml.TOML("sms.from", configFile)),
		},
	}
}
