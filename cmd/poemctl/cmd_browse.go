package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/repositories"
	"poemas-versos/sampler"
)

var (
	browsePageSize int
	browsePages    int
	browseCacheIDs bool
)

// browseCmd walks a category in random unseen batches
var browseCmd = &cobra.Command{
	Use:   "browse <category>",
	Short: "Walk a category in random batches without repeats",
	Long: `Walk a category the way the "load more" button does: each page is a random
batch of poems not shown before in this run. Stops at --pages or when the
category is exhausted.`,
	Args: cobra.ExactArgs(1),
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().IntVar(&browsePageSize, "page-size", 0, "Poems per page (default: sampler.default_page_size)")
	browseCmd.Flags().IntVar(&browsePages, "pages", 0, "Stop after this many pages (0 = until exhausted)")
	browseCmd.Flags().BoolVar(&browseCacheIDs, "cache-ids", true, "Enumerate the category once per run")
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig().Sampler
	pageSize := browsePageSize
	if pageSize == 0 {
		pageSize = cfg.DefaultPageSize
	}

	return withDB(cmd, func(ctx context.Context) error {
		smp := sampler.New(repositories.NewPoemRepository(db.Database()), sampler.WithTimeout(cfg.Timeout))
		var opts []sampler.SessionOption
		if browseCacheIDs {
			opts = append(opts, sampler.WithIDCache())
		}
		session := sampler.NewSession(args[0], opts...)
		return walk(ctx, cmd, smp, session, pageSize, browsePages)
	})
}

func walk(ctx context.Context, cmd *cobra.Command, smp *sampler.Sampler, session *sampler.Session, pageSize, maxPages int) error {
	out := cmd.OutOrStdout()
	for page := 1; maxPages == 0 || page <= maxPages; page++ {
		poems, err := session.Next(ctx, smp, pageSize)
		if err != nil {
			if errors.Is(err, sampler.ErrDataUnavailable) {
				return fmt.Errorf("page %d: store unavailable, retry later: %w", page, err)
			}
			return err
		}
		if session.Exhausted() {
			fmt.Fprintf(out, "-- %s exhausted after %d poems --\n", session.Category(), len(session.Seen()))
			return nil
		}
		fmt.Fprintf(out, "== page %d ==\n", page)
		for _, p := range poems {
			fmt.Fprintf(out, "%s  %s\n", p.ID.Hex(), firstLine(p.Title))
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
