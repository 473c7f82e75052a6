package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/core/submission"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/storage"
)

var submissionsCmd = &cobra.Command{
	Use:   "submissions",
	Short: "List pending submissions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.WarnLevel})

		store, err := storage.NewStore(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "storage error: %v\n", err)
			os.Exit(1)
		}

		ids, err := store.ListFolders(context.Background(), submission.KeyPrefix)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to list submissions: %v\n", err)
			os.Exit(1)
		}

		if len(ids) == 0 {
			fmt.Println("No pending submissions.")
			return
		}
		fmt.Printf("%d pending submission(s):\n", len(ids))
		for _, id := range ids {
			fmt.Printf("  %s\n", id)
		}
	},
}

func init() {
	rootCmd.AddCommand(submissionsCmd)
}
