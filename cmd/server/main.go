package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/squid-app/squid-api/internal/config"
	"github.com/squid-app/squid-api/internal/handler"
	"github.com/squid-app/squid-api/internal/middleware"
	"github.com/squid-app/squid-api/internal/model"
	"github.com/squid-app/squid-api/internal/repository"
	"github.com/squid-app/squid-api/internal/service"
	"github.com/squid-app/squid-api/migrations"
	"github.com/squid-app/squid-api/pkg/auth"
	"github.com/squid-app/squid-api/pkg/google"
	"github.com/squid-app/squid-api/pkg/notification"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// @title           Squid API
// @version         1.0
// @description     Push URLs from one signed-in device to another through Firebase Cloud Messaging.

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /api

// @securityDefinitions.apikey GoogleAuth
// @in header
// @name Authorization
// @description "Bearer Google OAuth ID Token=<token>" or "Bearer Google OAuth Access Token=<token>"

func main() {
	// ==================== Load Config ====================
	cfg := config.Load()
	configureLogging(cfg.App)
	cfg.Validate()
	log.WithField("env", cfg.App.Env).Info("Starting Squid API server")

	ctx := context.Background()

	// ==================== Database (PostgreSQL) ====================
	gormLogger := logger.Default.LogMode(logger.Info)
	if cfg.App.Env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Info("Connected to PostgreSQL")

	// ==================== Run Migrations ====================
	if err := migrations.Run(cfg.DB.URL()); err != nil {
		log.WithError(err).Warn("Migration failed, falling back to GORM AutoMigrate")
		if err := db.AutoMigrate(&model.User{}, &model.UserDevices{}, &model.Device{}); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// ==================== Google ====================
	googleClient, err := google.NewClient(ctx, google.Config{
		TokenInfoURL:     cfg.Google.TokenInfoURL,
		UserInfoEndpoint: cfg.Google.UserInfoEndpoint,
		Timeout:          cfg.Google.HTTPTimeout,
	})
	if err != nil {
		log.Fatalf("Failed to create Google client: %v", err)
	}

	var provider service.GoogleProvider = googleClient
	if cfg.Google.IDTokenVerify == config.IDTokenVerifyLocal {
		provider = google.LocalIDTokenClient{Client: googleClient}
		log.Info("Verifying Google ID tokens locally")
	}

	// ==================== Redis (verification cache) ====================
	// Leave the interface nil when disabled; a nil *auth.IdentityCache would not compare equal to nil.
	var identityCache service.IdentityCache
	if cfg.Auth.CacheTTL > 0 {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		identityCache = auth.NewIdentityCache(rdb, cfg.Auth.CacheTTL)
		log.WithField("ttl", cfg.Auth.CacheTTL).Info("Connected to Redis, token verification cache enabled")
	}

	// ==================== Firebase Cloud Messaging ====================
	sender, err := notification.NewFirebaseSender(ctx, cfg.Firebase.CredentialsFile)
	if err != nil {
		log.Fatalf("Failed to initialize FCM: %v", err)
	}
	dispatcher := notification.NewDispatcher(sender, cfg.Firebase.SendTimeout)

	// ==================== Initialize Layers ====================
	// Repositories
	userRepo := repository.NewUserRepository(db)
	deviceRepo := repository.NewDeviceRepository(db)

	// Services
	authService := service.NewAuthService(provider, cfg.Google.ValidClientIDs, identityCache)
	deviceService := service.NewDeviceService(deviceRepo, userRepo, dispatcher)

	// Handlers
	deviceHandler := handler.NewDeviceHandler(deviceService)

	// ==================== Gin Router ====================
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	// Serve swagger.json at /docs/swagger.json to avoid conflict with /swagger/* wildcard
	router.StaticFile("/docs/swagger.json", "./docs/swagger.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/docs/swagger.json")))

	router.Use(middleware.CORSMiddleware(cfg.CORS.Origins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, model.HealthResponse{
			Status:  "ok",
			Service: "squid-api",
			Time:    time.Now().Format(time.RFC3339),
		})
	})

	// ==================== API Routes ====================
	api := router.Group("/api")
	handler.RegisterDeviceRoutes(api, deviceHandler, middleware.AuthMiddleware(authService))

	// ==================== Start Server ====================
	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Infof("Squid API running on http://0.0.0.0:%s", cfg.App.Port)
	log.Infof("API docs: http://0.0.0.0:%s/swagger/index.html", cfg.App.Port)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give ongoing requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited gracefully")
}

func configureLogging(app config.AppConfig) {
	level, err := log.ParseLevel(app.LogLevel)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", app.LogLevel)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if app.Env == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
