package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/repositories"
	"poemas-versos/seed"
)

// seedCmd loads categories and poems into MongoDB
var seedCmd = &cobra.Command{
	Use:   "seed [file.json]",
	Short: "Upsert categories and poems from a seed file",
	Long: `Upsert the categories listed in config.yaml, then the categories and poems
of the given JSON seed file. Poems are matched by slug and stored as approved.
Without a file only the config categories are written.

Seed file format:
  {"categories": [{"name": "Amor", "default_image": "/img/amor.jpg"}],
   "poems": [{"title": "...", "body": "...", "category": "Amor", "tags": ["mar"]}]}`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	f := &seed.File{}
	if len(args) == 1 {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()
		if f, err = seed.Load(file); err != nil {
			return err
		}
	}
	// config 카테고리를 먼저 넣어 파일 쪽 값이 우선하게 한다.
	f.Categories = append(seed.FromConfig(config.GetConfig()), f.Categories...)

	return withDB(cmd, func(ctx context.Context) error {
		database := db.Database()
		rep, err := seed.Run(ctx, f, repositories.NewCategoryRepository(database), repositories.NewPoemRepository(database))
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		return printJSON(cmd.OutOrStdout(), rep)
	})
}
