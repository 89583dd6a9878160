package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/feeder"
	"poemas-versos/repositories"
)

func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	importer := feeder.NewImporter(repositories.NewPoemRepository(db.Database()))

	loc, err := time.LoadLocation(cfg.Aggregate.Timezone)
	if err != nil {
		config.Logger.Warnf("unknown timezone %q, using local: %v", cfg.Aggregate.Timezone, err)
		loc = time.Local
	}

	// 첫 실행은 즉시 1회 수행
	runOnce(ctx, importer, cfg.Feeds)

	for {
		next := nextRun(time.Now(), loc, cfg.Aggregate.Interval)
		config.Logger.Infof("aggregate sleeping until %s (%s)", next.Format(time.RFC3339), loc)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			config.Logger.Info("aggregate service stopped")
			return
		case <-timer.C:
		}
		runOnce(ctx, importer, cfg.Feeds)
	}
}

// runOnce executes one import cycle for all configured feeds.
func runOnce(ctx context.Context, importer *feeder.Importer, feeds []config.FeedSource) {
	if len(feeds) == 0 {
		config.Logger.Warn("no feeds configured in config.yaml (key: feeds)")
		return
	}
	reports, err := importer.ImportAll(ctx, feeds)
	if err != nil && !errors.Is(err, context.Canceled) {
		config.Logger.Errorf("aggregate cycle error: %v", err)
	}
	fields := config.Fields{"feeds": len(reports)}
	inserted, failed := 0, 0
	for _, rep := range reports {
		inserted += rep.Inserted
		if rep.Error != "" {
			failed++
		}
	}
	fields["inserted"] = inserted
	fields["failed"] = failed
	if failed > 0 {
		config.WarnWithFields("aggregate cycle finished with failures", fields)
		return
	}
	config.InfoWithFields("aggregate cycle finished", fields)
}

// nextRun 은 interval 이 있으면 now+interval, 없으면 loc 기준 다음 자정을 돌려준다.
func nextRun(now time.Time, loc *time.Location, interval time.Duration) time.Time {
	if interval > 0 {
		return now.Add(interval)
	}
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, loc)
}
