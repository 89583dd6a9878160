package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/feeder"
	"poemas-versos/repositories"
)

var importFeedName string

// importFeedsCmd pulls the poetry feeds listed in config.yaml
var importFeedsCmd = &cobra.Command{
	Use:   "import-feeds",
	Short: "Import poems from the feeds in config.yaml",
	Long: `Fetch every feed under "feeds:" in config.yaml and store new items as
pending poems (source=feed). Items already imported are matched by link and skipped.`,
	Args: cobra.NoArgs,
	RunE: runImportFeeds,
}

func init() {
	importFeedsCmd.Flags().StringVar(&importFeedName, "feed", "", "Import only the feed with this name")
}

func runImportFeeds(cmd *cobra.Command, args []string) error {
	feeds := config.GetConfig().Feeds
	if importFeedName != "" {
		var picked []config.FeedSource
		for _, f := range feeds {
			if f.Name == importFeedName {
				picked = append(picked, f)
			}
		}
		if len(picked) == 0 {
			return fmt.Errorf("feed %q not found in config", importFeedName)
		}
		feeds = picked
	}
	if len(feeds) == 0 {
		return fmt.Errorf("no feeds configured")
	}

	return withDB(cmd, func(ctx context.Context) error {
		importer := feeder.NewImporter(repositories.NewPoemRepository(db.Database()))
		reports, err := importer.ImportAll(ctx, feeds)
		if perr := printJSON(cmd.OutOrStdout(), reports); perr != nil {
			return perr
		}
		return err
	})
}
