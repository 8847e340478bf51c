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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/drapery_api/internal/cache"
	"github.com/GTDGit/drapery_api/internal/config"
	"github.com/GTDGit/drapery_api/internal/database"
	"github.com/GTDGit/drapery_api/internal/handler"
	"github.com/GTDGit/drapery_api/internal/middleware"
	"github.com/GTDGit/drapery_api/internal/repository"
	"github.com/GTDGit/drapery_api/internal/selection"
	"github.com/GTDGit/drapery_api/internal/service"
	"github.com/GTDGit/drapery_api/internal/sse"
	"github.com/GTDGit/drapery_api/internal/utils"
	"github.com/GTDGit/drapery_api/internal/worker"
	"github.com/GTDGit/drapery_api/pkg/catalogapi"
)

// main is the application entrypoint for the drapery selection API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Msg("starting drapery api")
	utils.SetJWTSecret(cfg.JWTSecret)

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db.DB, cfg.MigrationsDir); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Treatment rules
	resolver := selection.DefaultResolver()
	if cfg.Selection.TreatmentCatalogPath != "" {
		resolver, err = selection.LoadResolver(cfg.Selection.TreatmentCatalogPath)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.Selection.TreatmentCatalogPath).Msg("treatment catalog invalid")
			fmt.Fprintf(os.Stderr, "treatment catalog invalid: %v\n", err)
			os.Exit(1)
		}
		log.Info().Str("path", cfg.Selection.TreatmentCatalogPath).Msg("treatment catalog loaded")
	}

	// 4. Repositories
	catalogRepo := repository.NewCatalogRepository(db)
	vendorRepo := repository.NewVendorRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	userRepo := repository.NewUserRepository(db)

	// 5. Redis-backed stores, in-process when Redis is not reachable
	var (
		recents   selection.RecentStore = selection.NewMemoryRecentStore()
		invCache  service.InventoryCache
		redisPing handler.Check
	)
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, recent selections kept in memory")
		} else {
			defer redisClient.Close()
			recents = cache.NewRecentCache(redisClient)
			invCache = cache.NewInventoryCache(redisClient, cfg.Selection.InventoryCacheTTL)
			redisPing = redisClient.Ping
			log.Info().Msg("redis connected successfully")
		}
	}

	// 6. Services
	hub := sse.NewHub()
	catalogSvc := service.NewCatalogService(catalogRepo, invCache, cfg.Selection.PageSize)
	optionsSvc := service.NewFilterOptionsService(vendorRepo, catalogRepo)
	importSvc := service.NewImportService(catalogRepo, vendorRepo, catalogSvc)

	// 6a. Panel source: the local catalog, or a hosted catalog API when configured
	var (
		panelSource selection.CatalogSource = catalogSvc
		panelItems  service.ItemLookup      = catalogSvc
		warmer      worker.InventoryWarmer  = catalogSvc
	)
	if cfg.Catalog.RemoteURL != "" {
		remote := service.NewRemoteCatalogService(
			catalogapi.NewClient(cfg.Catalog.RemoteURL, cfg.Catalog.RemoteToken),
			cfg.Selection.PageSize,
			cfg.Selection.InventoryCacheTTL,
		)
		panelSource, panelItems, warmer = remote, remote, remote
		log.Info().Str("url", cfg.Catalog.RemoteURL).Msg("panels served from remote catalog")
	}
	selectionSvc := service.NewSelectionService(panelSource, panelItems, resolver, recents, favoriteRepo, hub, cfg.Selection)
	authSvc := service.NewUserAuthService(userRepo)

	// 7. Handlers
	checks := map[string]handler.Check{"database": db.PingContext}
	if redisPing != nil {
		checks["redis"] = redisPing
	}
	loginLimiter := middleware.NewLoginRateLimiter(5, time.Minute)
	handlers := &handler.Handlers{
		Health:     handler.NewHealthHandler(checks, selectionSvc.Count),
		Auth:       handler.NewAuthHandler(authSvc, loginLimiter),
		Catalog:    handler.NewCatalogHandler(catalogSvc, optionsSvc, importSvc, resolver),
		Panel:      handler.NewPanelHandler(selectionSvc),
		Preference: handler.NewPreferenceHandler(selectionSvc),
		SSE:        handler.NewSSEHandler(hub, selectionSvc),
	}

	// 8. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedHosts))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, middleware.NewJWTMiddleware(), loginLimiter)

	// 9. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 10. Start workers
	go worker.NewInventoryWarmWorker(warmer, cfg.Worker.InventoryWarmInterval).Start(ctx)
	go worker.NewPanelSweepWorker(selectionSvc, cfg.Selection.PanelTTL, cfg.Worker.PanelSweepInterval).Start(ctx)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Cancel context to stop workers
	cancel()

	// 14. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	selectionSvc.CloseAll()
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
