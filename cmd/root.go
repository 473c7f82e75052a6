package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DJCodeOne/freshwax-sub002/server"
)

var rootCmd = &cobra.Command{
	Use:   "freshwax-sub",
	Short: "FreshWax release ingestion and transcoding pipeline.",
	Run: func(cmd *cobra.Command, args []string) {
		// Default action is to run the HTTP server.
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
