package payment

import (
	"fmt"

	"github.com/spf13/cobra"

	"podbrief/internal/app"
)

var (
	userID    string
	sessionID string
)

func init() {
	Cmd.Flags().StringVar(&userID, "user", "", "user id that made the purchase")
	Cmd.Flags().StringVar(&sessionID, "session", "", "checkout session id")

	Cmd.MarkFlagRequired("user")
	Cmd.MarkFlagRequired("session")
}

// Cmd represents the verify-payment command
var Cmd = &cobra.Command{
	Use:   "verify-payment",
	Short: "Fetch a checkout session from the payment provider and apply it",
	Long: `Looks up a checkout session and credits the user if it is paid and was not
applied before. Safe to repeat; a webhook for the same payment will not
credit twice.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := app.Bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck

		a, cleanup, err := app.InitializeApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := a.Billing.VerifySession(cmd.Context(), userID, sessionID)
		if err != nil {
			return err
		}
		user, err := a.Store.GetUser(cmd.Context(), userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: balance %s\n", result, user.Credits().StringFixed(2))
		return nil
	},
}
