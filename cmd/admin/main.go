// Command admin performs one-off maintenance against the complaint database:
// applying the schema and bootstrapping administrator accounts.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aawaaz/complaint-desk/internal/config"
	"github.com/aawaaz/complaint-desk/internal/database"
	"github.com/aawaaz/complaint-desk/internal/services"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Maintenance commands for the complaint desk",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newMigrateCmd(), newCreateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and complaints tables if missing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, cfg, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema up to date (%s)\n", cfg.Environment)
			return nil
		},
	}
}

func newCreateCmd() *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, cfg, err := connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}

			logger := newLogger()
			defer logger.Sync()
			sugar := logger.Sugar()

			store := database.NewPgStore(pool, sugar)
			authSvc := services.NewAuthService(store, nil, services.AuthOptions{
				Secret:     cfg.JWTSecret,
				TokenTTL:   cfg.JWTTTL,
				BcryptCost: cfg.BcryptCost,
			}, sugar)

			user, created, err := authSvc.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !created {
				fmt.Fprintf(out, "Admin user already exists: %s\n", user.Email)
				return nil
			}
			fmt.Fprintf(out, "Admin user created successfully\nEmail: %s\n", user.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "Admin User", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&password, "password", "", "initial password (at least 6 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func connect(ctx context.Context) (*pgxpool.Pool, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		return nil, nil, err
	}
	return pool, cfg, nil
}

// newLogger returns a production logger, or a no-op logger when zap cannot build one
func newLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
