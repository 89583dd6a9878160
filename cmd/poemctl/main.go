package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"poemas-versos/config"
	"poemas-versos/db"
)

var (
	timeout time.Duration
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "poemctl",
	Short: "Operate the Poemas & Versos catalog",
	Long: `poemctl seeds the catalog, imports poetry feeds, requests AI poems
and lets an operator browse a category the same way the "load more" button does.

Configuration is read from config.yaml (searched upwards from the working
directory) and .env, the same as the API and processor.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.InitApp()
		cfg := config.GetConfig()
		if verbose {
			cfg.Logging.Level = "debug"
		}
		config.InitLogger(cfg.Logging)
	},
}

func init() {
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(importFeedsCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// withDB 는 timeout 이 걸린 context 로 MongoDB 를 연결하고 fn 이 끝나면 닫는다.
func withDB(cmd *cobra.Command, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	if err := db.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize MongoDB: %w", err)
	}
	defer db.Disconnect(context.Background())

	return fn(ctx)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
