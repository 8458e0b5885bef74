package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"renovaflow-backend/internal/config"
	"renovaflow-backend/internal/database"
	"renovaflow-backend/internal/handlers"
	"renovaflow-backend/internal/lifecycle"
	"renovaflow-backend/internal/middleware"
	"renovaflow-backend/internal/services"
	"renovaflow-backend/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Environment == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = logger

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		logger.Fatal().Err(err).Msg("migration failed")
	}

	// The document store is an optional collaborator: without it the
	// service runs with sync and backup disabled.
	var storageClient *storage.Client
	if cfg.SyncEnabled() {
		storageClient, err = storage.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceKey, cfg.SupabaseStorageBucket)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialize storage client, document sync disabled")
			storageClient = nil
		}
	} else {
		logger.Info().Msg("document store not configured, sync and backup disabled")
	}

	docSync := services.NewDocSync(storageClient, logger)

	stop := make(chan struct{})
	docSync.StartBackupLoop(store.Path(), time.Minute,
		time.Duration(cfg.BackupIntervalMinutes)*time.Minute, stop)

	engine := lifecycle.NewEngine(store)

	authHandler := handlers.NewAuthHandler(store, cfg)
	projectsHandler := handlers.NewProjectsHandler(store, engine, docSync)
	billingHandler := handlers.NewBillingHandler(store, engine)
	filesHandler := handlers.NewFilesHandler(store, docSync, cfg.UploadDir)
	usersHandler := handlers.NewUsersHandler(store)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Uploaded files are served straight off the local disk; the registry
	// url column points here.
	router.Static("/uploads", cfg.UploadDir)

	router.GET("/health", handlers.HealthHandler)
	router.POST("/api/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg))

	api.GET("/projects", projectsHandler.ListProjects)
	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects/:id", projectsHandler.GetProject)
	api.PATCH("/projects/:id", projectsHandler.PatchProject)
	api.PUT("/projects/:id", projectsHandler.UpdateProject)
	api.DELETE("/projects/:id", projectsHandler.DeleteProject)

	api.PATCH("/billing_items/:id", billingHandler.PatchBillingItem)
	api.PATCH("/outbound_payments/:id", billingHandler.PatchOutboundPayment)

	api.POST("/projects/:id/files", filesHandler.Upload)
	api.DELETE("/files/:id", filesHandler.Delete)

	api.GET("/users", usersHandler.ListUsers)
	api.POST("/users", usersHandler.CreateUser)
	api.PUT("/users/:id", usersHandler.UpdateUser)
	api.DELETE("/users/:id", usersHandler.DeleteUser)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	close(stop)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
	}
}
