package migrate

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"podbrief/internal/app/repository"
	dbmigrate "podbrief/internal/app/repository/migrate"
	"podbrief/internal/config"
)

// Cmd represents the migrate command
var Cmd = &cobra.Command{
	Use:       "migrate [up|down|status]",
	Short:     "Apply, roll back or list database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "up"
		if len(args) == 1 {
			action = args[0]
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		db, err := repository.Open(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		out := cmd.OutOrStdout()
		switch action {
		case "up":
			applied, err := dbmigrate.Up(cmd.Context(), db.DB, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "applied %d migration(s) %v\n", len(applied), applied)
		case "down":
			version, err := dbmigrate.Down(cmd.Context(), db.DB, cfg.Database.Driver)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "rolled back version %d\n", version)
		case "status":
			statuses, err := dbmigrate.List(cmd.Context(), db.DB, cfg.Database.Driver)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tAPPLIED\tFILE")
			for _, st := range statuses {
				fmt.Fprintf(w, "%d\t%t\t%s\n", st.Version, st.Applied, st.Path)
			}
			return w.Flush()
		}
		return nil
	},
}
