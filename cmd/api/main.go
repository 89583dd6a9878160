package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"poemas-versos/cmd/api/auth"
	"poemas-versos/cmd/api/router"
	"poemas-versos/cmd/api/services"
	"poemas-versos/config"
	"poemas-versos/db"
	"poemas-versos/eventbus"
	"poemas-versos/repositories"
	"poemas-versos/sampler"
)

// @title           Poemas & Versos API
// @version         1.0
// @description     Browse, search, favorite and moderate poems. Random "load more" sampling per category.
// @BasePath        /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	config.InitApp()
	cfg := config.GetConfig()
	config.InitLogger(cfg.Logging)
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := db.Init(ctx); err != nil {
		config.Logger.Errorf("failed to initialize MongoDB: %v", err)
		os.Exit(1)
	}
	defer db.Disconnect(context.Background())

	tokens, err := auth.NewJWTManagerFromEnv()
	if err != nil {
		config.Logger.Errorf("failed to create JWT manager: %v", err)
		os.Exit(1)
	}

	database := db.Database()
	poemRepo := repositories.NewPoemRepository(database)
	favoriteRepo := repositories.NewFavoriteRepository(database)
	categoryRepo := repositories.NewCategoryRepository(database)
	galleryRepo := repositories.NewGalleryRepository(database)
	imageRepo := repositories.NewImageRepository(db.ImageBucket())

	smp := sampler.New(poemRepo, sampler.WithTimeout(cfg.Sampler.Timeout))

	// Kafka 는 선택 사항이다. 없으면 생성 요청만 503 으로 응답한다.
	var bus eventbus.Publisher
	if brokers, ok := eventbus.LookupBrokers(); ok {
		kafkaBus, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			config.Logger.Errorf("failed to create event bus: %v", err)
			os.Exit(1)
		}
		defer kafkaBus.Close()
		bus = kafkaBus
	} else {
		config.Logger.Warn("KAFKA_BOOTSTRAP_SERVERS not set; AI generation requests are disabled")
	}

	r := router.New(router.Deps{
		Tokens:     tokens,
		Poems:      services.NewPoemService(poemRepo, favoriteRepo, categoryRepo),
		Random:     services.NewRandomService(smp, categoryRepo, cfg.Sampler),
		Catalog:    services.NewCatalogService(categoryRepo, galleryRepo, imageRepo),
		Admin:      services.NewAdminService(poemRepo, favoriteRepo, categoryRepo, galleryRepo, imageRepo),
		Generation: services.NewGenerationService(bus),
		Ping:       db.Ping,
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.API.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           c.Handler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			config.Logger.Errorf("graceful shutdown failed: %v", err)
		}
	}()

	config.Logger.Infof("api listening on %s", cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		config.Logger.Errorf("api server stopped with error: %v", err)
		os.Exit(1)
	}
	config.Logger.Info("api server stopped")
}
