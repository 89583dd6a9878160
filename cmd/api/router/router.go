package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"poemas-versos/cmd/api/handlers"
	"poemas-versos/cmd/api/middleware"
	"poemas-versos/cmd/api/services"
	_ "poemas-versos/docs"
)

// Deps 는 라우터가 필요로 하는 서비스 묶음이다.
type Deps struct {
	Tokens     middleware.TokenParser
	Poems      *services.PoemService
	Random     *services.RandomService
	Catalog    *services.CatalogService
	Admin      *services.AdminService
	Generation *services.GenerationService
	// Ping 은 /health 에서 저장소 연결을 확인한다.
	Ping func(ctx context.Context) error
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestTrace(), middleware.RequestLoggingMiddleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := d.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "mongo": "down", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		optionalUser := middleware.OptionalUserMiddleware(d.Tokens)
		requireUser := middleware.UserAuthMiddleware(d.Tokens)

		api.GET("/poems", optionalUser, handlers.ListPoemsHandler(d.Poems))
		api.GET("/poems/search", handlers.SearchPoemsHandler(d.Poems))
		api.POST("/poems/random", handlers.RandomPoemsHandler(d.Random))
		api.GET("/poems/:id", optionalUser, handlers.GetPoemHandler(d.Poems))
		api.POST("/poems/:id/like", handlers.LikePoemHandler(d.Poems))

		api.POST("/poems/submissions", requireUser, handlers.SubmitPoemHandler(d.Poems))
		api.POST("/poems/:id/favorite", requireUser, handlers.AddFavoriteHandler(d.Poems))
		api.DELETE("/poems/:id/favorite", requireUser, handlers.RemoveFavoriteHandler(d.Poems))
		api.GET("/favorites", requireUser, handlers.ListFavoritesHandler(d.Poems))

		api.GET("/categories", handlers.ListCategoriesHandler(d.Catalog))
		api.GET("/gallery", handlers.ListGalleryHandler(d.Catalog))
		api.GET("/images/:id", handlers.GetImageHandler(d.Catalog))
	}

	admin := api.Group("/admin", middleware.AdminAuthMiddleware(d.Tokens))
	{
		admin.GET("/poems", handlers.AdminListPoemsHandler(d.Admin))
		admin.POST("/poems/:id/approve", handlers.AdminApprovePoemHandler(d.Admin))
		admin.POST("/poems/:id/reject", handlers.AdminRejectPoemHandler(d.Admin))
		admin.PATCH("/poems/:id", handlers.AdminUpdatePoemHandler(d.Admin))
		admin.DELETE("/poems/:id", handlers.AdminDeletePoemHandler(d.Admin))
		admin.POST("/images", handlers.AdminUploadImageHandler(d.Admin))
		admin.POST("/gallery", handlers.AdminCreateGalleryItemHandler(d.Admin))
		admin.POST("/generate", handlers.AdminGenerateHandler(d.Generation))
	}

	return r
}
