// Copyright 2026 Matthias Theiner
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"

	"codeberg.org/mtheiner/accountkit/internal/config"
	"codeberg.org/mtheiner/accountkit/internal/database"
	"codeberg.org/mtheiner/accountkit/internal/logging"
	"codeberg.org/mtheiner/accountkit/internal/models"
	"codeberg.org/mtheiner/accountkit/internal/repository"
	"codeberg.org/mtheiner/accountkit/internal/services/account"
	"codeberg.org/mtheiner/accountkit/internal/services/email"
	"codeberg.org/mtheiner/accountkit/internal/services/password"
	"codeberg.org/mtheiner/accountkit/internal/services/sms"
	"codeberg.org/mtheiner/accountkit/internal/services/token"
)

// env bundles the wired services for one CLI invocation.
type env struct {
	db       *sqlx.DB
	repo     *repository.Repository
	accounts *account.Service
	tokens   *token.Manager
	emails   *email.Service // nil when SMTP is not configured
	sms      *sms.Service
	cfg      *config.Config
}

func setup(cmd *cli.Command) (*env, error) {
	cfg := config.NewFromCLI(cmd)
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	repo := repository.New(db)
	passwords := password.NewService(password.Policy{
		MinLength: cfg.Password.MinLength,
		MaxLength: cfg.Password.MaxLength,
	})
	accounts := account.NewService(repo, passwords)
	tokens := token.NewManager(token.NewStore(repo), token.Config{
		TTL:               cfg.Token.TTL,
		MaxFailedAttempts: cfg.Token.MaxFailedAttempts,
	})

	var emails *email.Service
	if cfg.SMTP.Host != "" && cfg.SMTP.From != "" {
		if emails, err = email.NewService(&cfg.SMTP, cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("configure email: %w", err)
		}
	}

	return &env{
		db:       db,
		repo:     repo,
		accounts: accounts,
		tokens:   tokens,
		emails:   emails,
		sms:      sms.NewService(&cfg.SMS),
		cfg:      cfg,
	}, nil
}

// deliver dispatches the freshly issued token over the channel it was issued
// for. Delivery failures are logged, not returned: the token is already
// persisted and the operator sees both secrets on stdout.
func (e *env) deliver(ctx context.Context, accountID int64, ch models.Channel, issued *models.VerificationToken) {
	acct, err := e.accounts.GetByID(ctx, accountID)
	if err != nil {
		slog.Warn("delivery_skipped", "error", err)
		return
	}

	switch ch {
	case models.ChannelEmail:
		if e.emails == nil || acct.Email == nil {
			slog.Info("delivery_skipped", "channel", ch.String())
			return
		}
		if err := e.emails.SendShortCode(*acct.Email, issued.ShortCode); err != nil {
			slog.Warn("email_delivery_failed", "error", err)
		}
		if err := e.emails.SendVerificationLink(*acct.Email, issued.OpaqueToken); err != nil {
			slog.Warn("email_delivery_failed", "error", err)
		}
	case models.ChannelPhone:
		if acct.Phone == nil {
			slog.Info("delivery_skipped", "channel", ch.String())
			return
		}
		if err := e.sms.SendShortCode(ctx, *acct.Phone, issued.ShortCode); err != nil {
			slog.Warn("sms_delivery_failed", "error", err)
		}
	}
}

func (e *env) close() {
	_ = e.db.Close()
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "accountkit",
		Usage: "Account backend with verification-token lifecycle",
		Flags: config.Flags(),
		Commands: []*cli.Command{
			migrateCommand(),
			accountCommand(),
			tokenCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply all pending migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()
					// Open already migrates; reaching this point means done.
					fmt.Println("migrations applied")
					return nil
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the last migration",
				Action: func(_ context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()
					return database.MigrateDown(e.db.DB)
				},
			},
			{
				Name:  "reset",
				Usage: "Roll back all migrations",
				Action: func(_ context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()
					return database.MigrateReset(e.db.DB)
				},
			},
		},
	}
}

func accountCommand() *cli.Command {
	return &cli.Command{
		Name:  "account",
		Usage: "Manage accounts",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first-name", Required: true},
					&cli.StringFlag{Name: "last-name", Required: true},
					&cli.StringFlag{Name: "email"},
					&cli.StringFlag{Name: "phone"},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					created, err := e.accounts.Register(ctx, account.RegisterParams{
						FirstName: cmd.String("first-name"),
						LastName:  cmd.String("last-name"),
						Email:     cmd.String("email"),
						Phone:     cmd.String("phone"),
						Password:  cmd.String("password"),
					})
					if err != nil {
						return err
					}
					return printJSON(created)
				},
			},
			{
				Name:  "show",
				Usage: "Show an account by id",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					found, err := e.accounts.GetByID(ctx, int64(cmd.Int("id")))
					if err != nil {
						return err
					}
					return printJSON(found)
				},
			},
			{
				Name:  "change-password",
				Usage: "Change the password, authorized by the current one",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "current", Required: true},
					&cli.StringFlag{Name: "new", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					if err := e.accounts.ChangePassword(ctx, int64(cmd.Int("id")),
						cmd.String("current"), cmd.String("new")); err != nil {
						return err
					}
					fmt.Println("password updated")
					return nil
				},
			},
			{
				Name:  "send-reset",
				Usage: "Issue a reset token for the account behind an email address",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					found, err := e.accounts.GetByEmail(ctx, cmd.String("email"))
					if err != nil {
						return err
					}
					issued, err := e.tokens.Issue(ctx, found.ID, models.ChannelEmail)
					if err != nil {
						return err
					}
					if e.emails != nil {
						if err := e.emails.SendPasswordReset(cmd.String("email"), issued.OpaqueToken); err != nil {
							slog.Warn("email_delivery_failed", "error", err)
						}
					}
					fmt.Printf("reset token: %s\n", issued.OpaqueToken)
					return nil
				},
			},
			{
				Name:  "add-address",
				Usage: "Attach an address to an account",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
					&cli.StringFlag{Name: "province", Required: true},
					&cli.StringFlag{Name: "city", Required: true},
					&cli.StringFlag{Name: "zip-code"},
					&cli.StringFlag{Name: "postal-address"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					created, err := e.accounts.AddAddress(ctx, int64(cmd.Int("id")), models.Address{
						Province:      cmd.String("province"),
						City:          cmd.String("city"),
						ZipCode:       cmd.String("zip-code"),
						PostalAddress: cmd.String("postal-address"),
					})
					if err != nil {
						return err
					}
					return printJSON(created)
				},
			},
			{
				Name:  "addresses",
				Usage: "List the addresses of an account",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "id", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					list, err := e.accounts.Addresses(ctx, int64(cmd.Int("id")))
					if err != nil {
						return err
					}
					return printJSON(list)
				},
			},
			{
				Name:  "reset-password",
				Usage: "Set a new password authorized by an opaque reset token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					accountID, _, err := e.tokens.ValidateOpaque(ctx, cmd.String("token"))
					if err != nil {
						return err
					}
					if err := e.accounts.ResetPassword(ctx, accountID, cmd.String("password")); err != nil {
						return err
					}
					fmt.Println("password updated")
					return nil
				},
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue and validate verification tokens",
		Commands: []*cli.Command{
			{
				Name:  "issue",
				Usage: "Issue a fresh token for an account and channel",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "account-id", Required: true},
					&cli.StringFlag{Name: "channel", Required: true, Usage: "email or phone"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					ch, err := models.ParseChannel(cmd.String("channel"))
					if err != nil {
						return err
					}
					issued, err := e.tokens.Issue(ctx, int64(cmd.Int("account-id")), ch)
					if err != nil {
						return err
					}
					fmt.Printf("short code:   %s\n", issued.ShortCode)
					fmt.Printf("opaque token: %s\n", issued.OpaqueToken)
					fmt.Printf("expires at:   %s\n", issued.ExpiresAt.Format(time.RFC3339))
					e.deliver(ctx, int64(cmd.Int("account-id")), ch, issued)
					return nil
				},
			},
			{
				Name:  "verify-code",
				Usage: "Validate a short code and mark the channel verified",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "account-id", Required: true},
					&cli.StringFlag{Name: "code", Required: true},
					&cli.StringFlag{Name: "channel", Usage: "restrict to email or phone"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					ch := models.ChannelUnspecified
					if v := cmd.String("channel"); v != "" {
						if ch, err = models.ParseChannel(v); err != nil {
							return err
						}
					}
					verified, err := e.tokens.ValidateShortCode(ctx, int64(cmd.Int("account-id")), cmd.String("code"), ch)
					if err != nil {
						return err
					}
					updated, err := e.accounts.ApplyVerification(ctx, int64(cmd.Int("account-id")), verified)
					if err != nil {
						return err
					}
					return printJSON(updated)
				},
			},
			{
				Name:  "verify-link",
				Usage: "Validate an opaque link token and mark its channel verified",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "token", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					accountID, ch, err := e.tokens.ValidateOpaque(ctx, cmd.String("token"))
					if err != nil {
						return err
					}
					updated, err := e.accounts.ApplyVerification(ctx, accountID, ch)
					if err != nil {
						return err
					}
					return printJSON(updated)
				},
			},
			{
				Name:  "history",
				Usage: "List the token history of an account, newest first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "account-id", Required: true},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					e, err := setup(cmd)
					if err != nil {
						return err
					}
					defer e.close()

					history, err := e.repo.ListTokensByAccount(ctx, int64(cmd.Int("account-id")))
					if err != nil {
						return err
					}
					return printJSON(history)
				},
			},
		},
	}
}
