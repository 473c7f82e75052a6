package cmd

import (
	"github.com/spf13/cobra"

	"github.com/DJCodeOne/freshwax-sub002/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the submission pipeline HTTP server",
	Long:  `Run the HTTP server exposing /health, /submissions and /process.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
