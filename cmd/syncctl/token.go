package main

import (
	"fmt"
	"time"

	"github.com/SscSPs/budget_sync_app/internal/utils"
	"github.com/spf13/cobra"
)

var (
	tokenTTL    time.Duration
	tokenIssuer string
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Print a bearer token for a user, signed with JWT_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.IsProduction {
			return fmt.Errorf("refusing to mint tokens with IS_PRODUCTION set")
		}
		token, err := utils.GenerateJWT(args[0], cfg.JWTSecret, tokenTTL, tokenIssuer)
		if err != nil {
			return fmt.Errorf("failed to sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")
	tokenCmd.Flags().StringVar(&tokenIssuer, "issuer", "syncctl", "token issuer")
}
