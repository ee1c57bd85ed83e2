package export

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"podbrief/internal/app/export"
	"podbrief/internal/app/repository"
	"podbrief/internal/config"
)

var (
	userID         string
	outputFilePath string
	showProgress   bool
)

func init() {
	Cmd.Flags().StringVarP(&userID, "user", "u", "", "owner whose transcripts are exported")
	Cmd.Flags().StringVarP(&outputFilePath, "out", "o", "", "output .xlsx path")
	Cmd.Flags().BoolVar(&showProgress, "progress", false, "force the progress bar even without a terminal")

	Cmd.MarkFlagRequired("user")
	Cmd.MarkFlagRequired("out")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's transcripts to an Excel workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, cleanup, err := repository.OpenStore(cmd.Context(), cfg.Database)
		if err != nil {
			return err
		}
		defer cleanup()

		rows, err := store.ListExportRows(cmd.Context(), userID)
		if err != nil {
			return err
		}

		progress := export.NewProgress(export.Interactive(showProgress), os.Stderr)
		err = export.ToExcel(rows, outputFilePath, progress.Bar(len(rows), fmt.Sprintf("Exporting (%s)", userID)))
		progress.Wait()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "exported %d transcript(s) to %s\n", len(rows), outputFilePath)
		return nil
	},
}
