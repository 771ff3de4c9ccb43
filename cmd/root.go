package cmd

import (
	"github.com/spf13/cobra"
)

// RootCmd represents the base command when called without any subcommands.
// Without a subcommand it runs the server.
var RootCmd = &cobra.Command{
	Use:   "medichat",
	Short: "Streaming customer-support chatbot for hospital IT services",
	Long: `Medichat answers visitor questions with canned responses, streamed as
typed-out text interleaved with service and strength cards.

Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	addServeFlags(RootCmd)
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(cardsCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}
