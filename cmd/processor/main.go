package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"poemas-versos/cmd/processor/event/dispatcher"
	"poemas-versos/cmd/processor/event/handler"
	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/eventbus"
	"poemas-versos/generator"
	"poemas-versos/quota"
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

	brokers := eventbus.GetBrokers()
	if err := eventbus.EnsureTopics(ctx, brokers, eventbus.TopicPoemEvents, 3); err != nil {
		config.Logger.Errorf("failed to ensure eventbus topics: %v", err)
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	gen, err := generator.NewGenerator(ctx, cfg.Generation)
	if err != nil {
		config.Logger.Errorf("failed to create generator: %v", err)
		os.Exit(1)
	}

	database := db.Database()
	aiLogs := repositories.NewAILogRepository(database)

	// 재시작해도 오늘 사용량을 이어간다.
	limiter := quota.NewGenerationLimiterFromConfig(cfg)
	midnight := time.Now().UTC().Truncate(24 * time.Hour)
	if used, err := aiLogs.CountSince(ctx, midnight); err != nil {
		config.Logger.Warnf("failed to restore generation quota usage: %v", err)
	} else {
		limiter.SeedUsage(int(used))
		config.Logger.Infof("generation quota restored: used=%d remaining=%d", used, limiter.Remaining())
	}

	pipeline := generator.NewPipeline(
		limiter,
		gen,
		repositories.NewPoemRepository(database),
		repositories.NewImageRepository(db.ImageBucket()),
		aiLogs,
	)
	eventHandler := handler.NewEventHandlers(pipeline, dispatcher.NewEventDispatcher(bus))

	groupID := eventbus.GetGroupID()
	config.Logger.Info("starting processor service with eventbus...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bus.Subscribe(gctx, groupID, eventbus.TopicPoemEvents, eventHandler.Dispatch)
	})
	// 재주입기 (재시도 토픽 -> 기본 토픽). retryworker 를 따로 띄우면 끈다.
	if eventbus.EmbeddedReinjectorEnabled() {
		g.Go(func() error {
			return bus.StartRetryReinjector(gctx, groupID+"-retry", eventbus.TopicPoemEvents)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		config.Logger.Errorf("processor stopped with error: %v", err)
		os.Exit(1)
	}
	config.Logger.Info("processor service stopped")
}
