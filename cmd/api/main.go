package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/herbal_api/internal/cache"
	"github.com/GTDGit/herbal_api/internal/config"
	"github.com/GTDGit/herbal_api/internal/database"
	"github.com/GTDGit/herbal_api/internal/handler"
	"github.com/GTDGit/herbal_api/internal/middleware"
	"github.com/GTDGit/herbal_api/internal/repository"
	"github.com/GTDGit/herbal_api/internal/service"
	"github.com/GTDGit/herbal_api/internal/session"
	"github.com/GTDGit/herbal_api/internal/sse"
	"github.com/GTDGit/herbal_api/internal/utils"
	"github.com/GTDGit/herbal_api/internal/worker"
)

// main is the application entrypoint for the herbal storefront API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting herbal api")
	for _, name := range cfg.MissingSecrets() {
		log.Warn().Str("variable", name).Msg("Secret not set; the features that depend on it are disabled")
	}

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.RunMigrations(db.DB, database.DefaultMigrationsURL); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 4. Context for workers and background loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 4a. Failed-auth throttle: Redis when configured, process memory otherwise
	var limiter middleware.AttemptLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		limiter = cache.NewAttemptLimiter(redisClient, cfg.Security.AuthFailLimit, cfg.Security.AuthFailWindow)
		log.Info().Msg("redis connected successfully")
	} else {
		limiter = middleware.NewInvalidAuthRateLimiter(ctx, cfg.Security.AuthFailLimit, cfg.Security.AuthFailWindow)
		log.Warn().Msg("REDIS_HOST not set - auth throttling is per instance")
	}

	// 5. Initialize repositories
	partnerRepo := repository.NewPartnerRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// 5a. Admin live feed
	hub := sse.NewHub()
	notifier := sse.NewHubNotifier(hub)

	// 5b. API key usage stamping
	var usage service.KeyUsageRecorder
	workersDone := make(chan struct{})
	if cfg.Worker.KeyUsageSync {
		usage = service.NewSyncKeyUsageRecorder(apiKeyRepo)
		close(workersDone)
	} else {
		usageWorker := worker.NewKeyUsageWorker(apiKeyRepo, cfg.Worker.KeyUsageFlushInterval, worker.DefaultKeyUsageBuffer)
		go func() {
			defer close(workersDone)
			usageWorker.Start(ctx)
		}()
		usage = usageWorker
	}

	// 6. Initialize services
	partnerSigner := session.NewPartnerSigner(cfg.Security.PartnerSessionSecret)
	adminSigner := session.NewAdminSigner(cfg.Security.AdminSessionSecret)
	keyCipher := utils.NewKeyCipher(cfg.Security.APIKeyEncryptionSecret)

	partnerAuthSvc := service.NewPartnerAuthService(partnerRepo, apiKeyRepo, partnerSigner, usage)
	adminAuthSvc := service.NewAdminAuthService(cfg.Security.AdminPassword, adminSigner, cfg.Security.AdminSessionTTL)
	apiKeySvc := service.NewAPIKeyService(apiKeyRepo, keyCipher)
	catalogSvc := service.NewCatalogService(productRepo)
	partnerOrderSvc := service.NewPartnerOrderService(productRepo, orderRepo, notifier)
	publicOrderSvc := service.NewPublicOrderService(orderRepo, notifier)
	accountSvc := service.NewPartnerAccountService(partnerRepo)
	adminPartnerSvc := service.NewAdminPartnerService(partnerRepo, apiKeySvc)
	adminOrderSvc := service.NewAdminOrderService(orderRepo, notifier)

	// 7. Initialize handlers
	secure := cfg.Production()
	handlers := &Handlers{
		Health:  handler.NewHealthHandler(db),
		Public:  handler.NewPublicHandler(catalogSvc, publicOrderSvc),
		Partner: handler.NewPartnerHandler(accountSvc, partnerAuthSvc, partnerOrderSvc, catalogSvc, cfg.Security.PartnerSessionTTL, secure),
		APIKey:  handler.NewAPIKeyHandler(apiKeySvc),
		Admin:   handler.NewAdminHandler(adminAuthSvc, adminPartnerSvc, apiKeySvc, adminOrderSvc, limiter, secure),
		SSE:     handler.NewSSEHandler(hub),
	}

	// 8. Initialize middleware
	partnerMw := middleware.NewPartnerAuthMiddleware(partnerAuthSvc, limiter)
	adminMw := middleware.NewAdminAuthMiddleware(adminAuthSvc)

	// 9. Setup router
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSHosts))
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.MetricsMiddleware())
	setupRoutes(router, handlers, partnerMw, adminMw, cfg.RequestTimeout)

	// 10. Start HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 11. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 12. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// 13. Stop workers; the usage worker flushes what it still holds
	cancel()
	<-workersDone
	log.Info().Msg("Server exited")
}

// Handlers groups all HTTP handlers used by the server.
type Handlers struct {
	Health  *handler.HealthHandler
	Public  *handler.PublicHandler
	Partner *handler.PartnerHandler
	APIKey  *handler.APIKeyHandler
	Admin   *handler.AdminHandler
	SSE     *handler.SSEHandler
}

// setupRoutes registers all routes. The SSE stream is long-lived and is not
// put under the request timeout.
func setupRoutes(
	router *gin.Engine,
	handlers *Handlers,
	partnerMw *middleware.PartnerAuthMiddleware,
	adminMw *middleware.AdminAuthMiddleware,
	timeout time.Duration,
) {
	router.GET("/v1/health", handlers.Health.GetHealth)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	api.Use(middleware.TimeoutMiddleware(timeout))

	// Storefront
	public := api.Group("/public")
	{
		public.GET("/products", handlers.Public.ListProducts)
		public.POST("/order", handlers.Public.PlaceOrder)
		public.POST("/track", handlers.Public.Track)
	}

	// Partner dashboard and partner API
	partner := api.Group("/partner")
	{
		partner.POST("/register", handlers.Partner.Register)
		partner.POST("/login", handlers.Partner.Login)
		partner.POST("/logout", handlers.Partner.Logout)

		anyCred := partnerMw.Handle(middleware.AnyCredential)
		partner.GET("/orders", anyCred, handlers.Partner.ListOrders)
		partner.POST("/orders", anyCred, handlers.Partner.CreateOrder)
		partner.GET("/orders/:id", anyCred, handlers.Partner.GetOrder)

		partner.GET("/products", partnerMw.Handle(middleware.APIKeyOnly), handlers.Partner.ListProducts)

		dashboard := partner.Group("", partnerMw.Handle(middleware.SessionOnly))
		dashboard.GET("/me", handlers.Partner.Me)
		dashboard.GET("/api-keys", handlers.APIKey.List)
		dashboard.POST("/api-keys", handlers.APIKey.Create)
		dashboard.DELETE("/api-keys/:id", handlers.APIKey.Delete)
		dashboard.GET("/api-keys/:id/reveal", handlers.APIKey.Reveal)
		dashboard.GET("/payout", handlers.Partner.GetPayout)
		dashboard.PATCH("/payout", handlers.Partner.UpdatePayout)
		dashboard.PATCH("/password", handlers.Partner.ChangePassword)
		dashboard.GET("/analytics", handlers.Partner.Analytics)
	}

	// Admin back-office
	api.POST("/admin/login", handlers.Admin.Login)
	api.POST("/admin/logout", handlers.Admin.Logout)
	router.GET("/api/admin/events", adminMw.Handle(), handlers.SSE.Stream)

	admin := api.Group("/admin", adminMw.Handle())
	{
		admin.GET("/partners", handlers.Admin.ListPartners)
		admin.POST("/partners", handlers.Admin.PartnerAction)
		admin.GET("/orders", handlers.Admin.ListOrders)
		admin.PATCH("/orders", handlers.Admin.UpdateOrder)
	}
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
