package commands

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/SscSPs/bookkeeping_engine/internal/utils"
	"github.com/spf13/cobra"
)

func newTokenCommand() *cobra.Command {
	var expiry time.Duration

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Issue a bearer token for a user",
		Long:  "Issue a bearer token signed with JWT_SECRET. The user ID is recorded as the actor of every change made with it.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("JWT_SECRET") == "" {
				return errors.New("JWT_SECRET must be set so the server accepts the token")
			}
			cfg, _, err := loadConfig()
			if err != nil {
				return err
			}
			if expiry <= 0 {
				expiry = cfg.JWTExpiryDuration
			}
			token, err := utils.GenerateJWT(args[0], cfg.JWTSecret, cfg.JWTIssuer, expiry, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (defaults to JWT_EXPIRY_DURATION)")
	return cmd
}
