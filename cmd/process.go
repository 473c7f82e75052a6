package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/db"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/server"
)

var processCmd = &cobra.Command{
	Use:   "process <submissionId>",
	Short: "Process one submission from the command line",
	Long:  `Run the full ingestion pipeline for a single submission id and print the result.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.InfoLevel})

		orchestrator, _, err := server.BuildOrchestrator(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to initialize pipeline: %v\n", err)
			os.Exit(1)
		}
		defer db.CloseGormDB()
		defer db.CloseRedis()

		result, err := orchestrator.Process(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "processing failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Release created: %s\n", result.ReleaseID)
		fmt.Printf("  Artist: %s\n", result.Artist)
		fmt.Printf("  Title:  %s\n", result.Title)
		fmt.Printf("  Tracks: %d\n", result.TrackCount)
		fmt.Printf("  Cover:  %s\n", result.CoverURL)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
