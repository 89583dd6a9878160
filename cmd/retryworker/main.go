package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"poemas-versos/config"
	"poemas-versos/eventbus"
)

func main() {
	config.InitApp()
	config.InitLogger(config.GetConfig().Logging)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	brokers := eventbus.GetBrokers()
	for _, t := range eventbus.AllTopics {
		if err := eventbus.EnsureTopics(ctx, brokers, t, 3); err != nil {
			config.Logger.Errorf("failed to ensure eventbus topics for %s: %v", t.Base(), err)
		}
	}

	bus, err := eventbus.NewKafkaEventBus(brokers)
	if err != nil {
		config.Logger.Errorf("failed to create event bus: %v", err)
		os.Exit(1)
	}
	defer bus.Close()

	groupID := eventbus.GetGroupID() + "-retry-worker"
	config.Logger.Info("starting retry worker service with eventbus...")

	g, gctx := errgroup.WithContext(ctx)
	for _, topic := range eventbus.AllTopics {
		topicGroupID := groupID + "-" + strings.ReplaceAll(topic.Base(), ".", "-")
		g.Go(func() error {
			err := bus.StartRetryReinjector(gctx, topicGroupID, topic)
			if err != nil && !errors.Is(err, context.Canceled) {
				config.Logger.Errorf("eventbus retry reinjector error for %s: %v", topic.Base(), err)
			}
			return err
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		config.Logger.Errorf("retry worker stopped with error: %v", err)
		os.Exit(1)
	}
	config.Logger.Info("retry worker service stopped")
}
