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

	"dietcascade/portal-api/internal/api"
	"dietcascade/portal-api/internal/cache"
	"dietcascade/portal-api/internal/config"
	"dietcascade/portal-api/internal/logging"
	"dietcascade/portal-api/internal/repository/mongo"
	"dietcascade/portal-api/internal/service"
	"dietcascade/portal-api/internal/storage"
	"dietcascade/portal-api/internal/validation"
)

// @title Dietitian Client Portal API
// @version 1.0
// @description Client onboarding, plan lifecycle, progress tracking and diet plan documents.
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		// Logger config is not known yet.
		logging.New(config.LogConfig{}).Fatalf("Could not load config: %v", err)
	}
	log := logging.New(cfg.Log)
	log.Info("Starting client portal server...")
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret (JWT_SECRET) must be set")
	}

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Info("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Errorf("Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Info("Database connection established.")

	// --- Ensure Indexes ---
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureIndexes(ctx, appDB, log)
		log.Info("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	photoStorage, err := storage.NewS3Storage(startupCtx, cfg.S3, cfg.S3.ProgressPhotoBucket, log)
	if err != nil {
		log.Fatalf("Failed to initialize progress photo storage: %v", err)
	}
	dietPlanStorage, err := storage.NewS3Storage(startupCtx, cfg.S3, cfg.S3.DietPlanBucket, log)
	if err != nil {
		log.Fatalf("Failed to initialize diet plan storage: %v", err)
	}

	// --- Progress History Cache ---
	progressCache := cache.NewNoopProgressCache()
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(startupCtx, cfg.Redis, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		progressCache = cache.NewRedisProgressCache(redisClient, cfg.Redis.HistoryTTL)
	} else {
		log.Info("Redis address not configured, progress history cache disabled")
	}

	// --- Initialize Repositories ---
	userRepo := mongo.NewMongoUserRepository(appDB)
	clientRepo := mongo.NewMongoClientRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	dietPlanRepo := mongo.NewMongoDietPlanRepository(appDB)

	// --- Initialize Services ---
	validate := validation.New()
	authService := service.NewAuthService(userRepo, log, cfg.JWT.Secret, cfg.JWT.Expiration)
	clientService := service.NewClientService(clientRepo, userRepo, authService, validate, log)
	progressService := service.NewProgressService(progressRepo, photoStorage, progressCache, validate, log)
	dietPlanService := service.NewDietPlanService(dietPlanRepo, clientRepo, dietPlanStorage, validate, log, cfg.S3.PresignExpiry)
	overviewService := service.NewOverviewService(clientService, progressService, dietPlanService, progressRepo)

	if err := authService.EnsureAdmin(startupCtx, cfg.Admin); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	// --- Initialize Gin Engine ---
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(log))
	router.MaxMultipartMemory = 12 << 20

	api.SetupRoutes(router, log, cfg.JWT.Secret, authService, clientService, progressService, dietPlanService, overviewService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	log.Infof("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exiting.")
}
