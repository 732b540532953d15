// Package devserver assembles the in-memory development backend that serves the
// game REST API.
package devserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"piano-quest/internal/common/config"
	"piano-quest/internal/common/middleware"
	"piano-quest/internal/devserver/seed"
	authhttp "piano-quest/internal/features/auth/delivery/http"
	authservice "piano-quest/internal/features/auth/service"
	avatarhttp "piano-quest/internal/features/avatar/delivery/http"
	avatarservice "piano-quest/internal/features/avatar/service"
	levelhttp "piano-quest/internal/features/level/delivery/http"
	levelservice "piano-quest/internal/features/level/service"
	recognitionhttp "piano-quest/internal/features/recognition/delivery/http"
	recognitionservice "piano-quest/internal/features/recognition/service"
	sublevelhttp "piano-quest/internal/features/sublevel/delivery/http"
	"piano-quest/internal/platform/telegram"
)

const APIPrefix = "/api/v1"

// NewRouter wires services and handlers over the seed content.
func NewRouter(cfg *config.Config, content *seed.Seed) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	authSvc := authservice.NewAuthService(
		cfg.Server.JWTSecret,
		cfg.Server.TokenTTL,
		telegram.NewVerifier(cfg.Server.BotToken, cfg.Server.InitDataTTL),
	)
	avatarSvc := avatarservice.NewAvatarService(content.Outfits)
	progressSvc := levelservice.NewProgressService(content.Levels)
	recognitionSvc := recognitionservice.NewRecognitionService(
		content.Tracks,
		cfg.Server.RecognitionRPS,
		cfg.Server.RecognitionBurst,
		cfg.Server.MaxUploadBytes,
	)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Recovery())
	router.Use(metrics.Handler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", middleware.HeaderProviderID, middleware.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{middleware.HeaderRequestID}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"levels":    len(content.Levels),
			"outfits":   len(content.Outfits),
			"tracks":    len(content.Tracks),
			"timestamp": time.Now().UTC(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	requireAuth := middleware.RequireAuth(authSvc)

	v1 := router.Group(APIPrefix)
	authhttp.NewAuthHandler(authSvc).RegisterRoutes(v1, requireAuth)

	protected := v1.Group("", requireAuth)
	avatarhttp.NewAvatarHandler(avatarSvc).RegisterRoutes(protected)
	levelhttp.NewLevelHandler(progressSvc).RegisterRoutes(protected)
	sublevelhttp.NewSublevelHandler(progressSvc).RegisterRoutes(protected)
	recognitionhttp.NewRecognitionHandler(recognitionSvc, cfg.Server.MaxUploadBytes).RegisterRoutes(protected)

	return router
}
