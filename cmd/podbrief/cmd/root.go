package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"podbrief/cmd/podbrief/cmd/configcmd"
	"podbrief/cmd/podbrief/cmd/export"
	"podbrief/cmd/podbrief/cmd/migrate"
	"podbrief/cmd/podbrief/cmd/payment"
	"podbrief/cmd/podbrief/cmd/serve"
	"podbrief/cmd/podbrief/cmd/sweep"
	"podbrief/cmd/podbrief/cmd/token"
	"podbrief/cmd/podbrief/cmd/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "podbrief",
	Short: "Turn uploaded audio into transcripts and summaries, billed in credits",
	Long: `PodBrief accepts audio uploads (direct, chunked or by link), transcribes
them in the background, summarizes the transcript and charges the owner's
credit balance per minute of audio.

Configuration comes from .env, an optional config.yaml (PODBRIEF_CONFIG)
and environment variables.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(sweep.Cmd)
	rootCmd.AddCommand(migrate.Cmd)
	rootCmd.AddCommand(configcmd.Cmd)
	rootCmd.AddCommand(payment.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(token.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
