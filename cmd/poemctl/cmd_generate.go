package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/generator"
	"poemas-versos/quota"
	"poemas-versos/repositories"
)

var (
	generateTheme     string
	generateLanguage  string
	generateWithImage bool
)

// generateCmd runs the AI pipeline synchronously, bypassing Kafka
var generateCmd = &cobra.Command{
	Use:   "generate <category>",
	Short: "Generate one AI poem and queue it for moderation",
	Long: `Run the generation pipeline in-process: reserve quota, ask Gemini for a poem,
optionally illustrate it, and store it as a pending poem (source=ai).
Requires GEMINI_API_KEY.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateTheme, "theme", "", "Optional theme or motif")
	generateCmd.Flags().StringVar(&generateLanguage, "language", "", "Output language (default: generation.language)")
	generateCmd.Flags().BoolVar(&generateWithImage, "image", false, "Also generate an illustration")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := config.GetConfig()

	return withDB(cmd, func(ctx context.Context) error {
		gen, err := generator.NewGenerator(ctx, cfg.Generation)
		if err != nil {
			return err
		}
		database := db.Database()
		pipeline := generator.NewPipeline(
			quota.NewGenerationLimiterFromConfig(cfg),
			gen,
			repositories.NewPoemRepository(database),
			repositories.NewImageRepository(db.ImageBucket()),
			repositories.NewAILogRepository(database),
		)

		poem, err := pipeline.Run(ctx, generator.PipelineRequest{
			RequestID:   uuid.NewString(),
			Category:    args[0],
			Theme:       generateTheme,
			Language:    generateLanguage,
			WithImage:   generateWithImage,
			RequestedBy: "poemctl",
		})
		if err != nil {
			return fmt.Errorf("generation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "queued %s %q (status=%s)\n", poem.ID.Hex(), poem.Title, poem.Status)
		return nil
	})
}
