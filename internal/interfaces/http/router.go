// Package http wires the gin engine, middleware, and route groups.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"stridesync/internal/application/integration/services"
	"stridesync/internal/application/integration/usecases"
	"stridesync/internal/infrastructure/auth"
	"stridesync/internal/infrastructure/config"
	"stridesync/internal/infrastructure/crypto"
	"stridesync/internal/infrastructure/dispatch"
	"stridesync/internal/infrastructure/observability"
	"stridesync/internal/infrastructure/repository"
	"stridesync/internal/interfaces/http/handlers"
	"stridesync/internal/interfaces/http/middleware"
	"stridesync/internal/shared/logger"
)

// Router assembles the HTTP surface of the sync engine.
type Router struct {
	engine             *gin.Engine
	integrationHandler *handlers.IntegrationHandler
	webhookHandler     *handlers.WebhookHandler
	authMiddleware     *middleware.AuthMiddleware
	allowedOrigins     []string
	log                logger.Interface
}

// NewRouter builds the repositories, use cases, and handlers on top of
// the long-lived services constructed by the server command.
func NewRouter(
	db *gorm.DB,
	cfg *config.Config,
	cipher crypto.TokenCipher,
	provider services.ProviderClient,
	reconciler *services.ReconcilerService,
	processor *services.WebhookProcessorService,
	dispatcher *dispatch.Dispatcher,
	metrics *observability.Metrics,
	log logger.Interface,
) *Router {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	engine := gin.New()

	credRepo := repository.NewIntegrationCredentialRepository(db)
	workoutRepo := repository.NewWorkoutRepository(db)

	connectUC := usecases.NewConnectStravaUseCase(provider, log)
	callbackUC := usecases.NewHandleStravaCallbackUseCase(credRepo, provider, cipher, log)
	disconnectUC := usecases.NewDisconnectStravaUseCase(credRepo, provider, cipher, log)
	statusUC := usecases.NewGetIntegrationStatusUseCase(credRepo, workoutRepo)
	syncUC := usecases.NewManualSyncUseCase(credRepo, reconciler, log)

	integrationHandler := handlers.NewIntegrationHandler(
		connectUC, callbackUC, disconnectUC, statusUC, syncUC,
		cfg.Strava, log,
	)
	webhookHandler := handlers.NewWebhookHandler(
		processor, dispatcher, metrics, cfg.Strava.WebhookVerifyToken, log,
	)

	jwtSvc := auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, log)

	return &Router{
		engine:             engine,
		integrationHandler: integrationHandler,
		webhookHandler:     webhookHandler,
		authMiddleware:     authMiddleware,
		allowedOrigins:     cfg.Server.AllowedOrigins,
		log:                log,
	}
}

// SetupRoutes configures middleware and all HTTP routes.
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.Logger(r.log))
	r.engine.Use(middleware.CORS(r.allowedOrigins))

	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	strava := r.engine.Group("/api/integrations/strava")
	{
		strava.GET("/authorize", r.authMiddleware.RequireAuth(), r.integrationHandler.Authorize)
		strava.GET("/callback", r.integrationHandler.Callback)
		strava.POST("/disconnect", r.authMiddleware.RequireAuth(), r.integrationHandler.Disconnect)
		strava.GET("/status", r.authMiddleware.RequireAuth(), r.integrationHandler.Status)
		strava.POST("/sync", r.authMiddleware.RequireAuth(), r.integrationHandler.Sync)

		strava.GET("/webhook", r.webhookHandler.Verify)
		strava.POST("/webhook", r.webhookHandler.Receive)
	}
}

// GetEngine returns the gin engine.
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
