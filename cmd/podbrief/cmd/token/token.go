package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"podbrief/internal/app/auth"
	"podbrief/internal/config"
)

var (
	userID string
	email  string
	ttl    time.Duration
)

func init() {
	Cmd.Flags().StringVar(&userID, "user", "", "user id (token subject)")
	Cmd.Flags().StringVar(&email, "email", "", "email claim")
	Cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	Cmd.MarkFlagRequired("user")
}

// Cmd represents the token command
var Cmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token signed with JWT_SECRET, for local testing",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		signed, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer).Generate(userID, email, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}
