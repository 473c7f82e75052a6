package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DJCodeOne/freshwax-sub002/config"
	"github.com/DJCodeOne/freshwax-sub002/db"
	"github.com/DJCodeOne/freshwax-sub002/logger"
	"github.com/DJCodeOne/freshwax-sub002/repository"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the catalog index status",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.WarnLevel})

		if err := db.ConnectGormDB(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "database error: %v\n", err)
			os.Exit(1)
		}
		defer db.CloseGormDB()

		repo := repository.NewGormReleaseRepository(db.GormDB)
		index, err := repo.GetIndex(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to load catalog index: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Catalog index: %d release(s), last updated %s\n",
			index.TotalReleases, index.LastUpdated.Format(time.RFC3339))
		for _, entry := range index.Entries {
			fmt.Printf("  [%s] %s - %s (%d tracks, %s)\n",
				entry.Status, entry.Artist, entry.Title, entry.TrackCount, entry.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
