package sweep

import (
	"fmt"

	"github.com/spf13/cobra"

	"podbrief/internal/app"
)

// Cmd represents the sweep command
var Cmd = &cobra.Command{
	Use:   "sweep",
	Short: "Re-dispatch stuck jobs once and wait for them to finish",
	Long: `Selects pending or processing jobs older than the stall threshold and runs
them again. Suitable for an external cron when the in-process sweep is off.`,
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

		n, err := a.Sweeper.Sweep(cmd.Context())
		if err != nil {
			return err
		}
		a.Dispatcher.Wait()
		fmt.Fprintf(cmd.OutOrStdout(), "dispatched %d stuck job(s)\n", n)
		return nil
	},
}
