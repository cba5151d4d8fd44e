package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ferbot",
	Short: "FerBot - portfolio assistant API",
	Long: `FerBot answers questions about a professional profile using retrieval-augmented
generation behind a layered safety pipeline (rate limiting, injection screening,
content moderation).

Running ferbot without a subcommand starts the HTTP API server.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
