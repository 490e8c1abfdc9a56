package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"reliefnet/internal/config"
	"reliefnet/internal/handlers"
	"reliefnet/internal/middleware"
	"reliefnet/internal/repositories/mongodb"
	"reliefnet/internal/services"
	"reliefnet/pkg/cache"
	"reliefnet/pkg/database"
	"reliefnet/pkg/logger"
	"reliefnet/pkg/sms"
	"reliefnet/pkg/websocket"
	"reliefnet/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: "json",
		Output: "stdout",
		Colors: cfg.App.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// MongoDB is required; the process is useless without it.
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		log.Fatalf("failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	indexCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.EnsureIndexes(indexCtx); err != nil {
		cancel()
		log.Fatalf("failed to ensure indexes: %v", err)
	}
	cancel()

	// Redis is a snapshot cache, not a source of truth. Run without it
	// rather than refusing to start.
	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, analytics caching disabled")
	} else {
		defer redisCache.Close()
		cacheService = services.NewCacheService(redisCache, log)
	}

	var smsProvider sms.Provider
	if cfg.SMS.Enabled {
		smsProvider = sms.NewTwilioProvider(cfg.SMS.TwilioAccountSID, cfg.SMS.TwilioAuthToken, cfg.SMS.TwilioFromNumber)
	}

	// Repositories
	sosRepo := mongodb.NewSOSRepository(db.Database)
	volunteerRepo := mongodb.NewVolunteerRepository(db.Database)
	adminRepo := mongodb.NewAdminRepository(db.Database)

	// WebSocket hub starts pumping as soon as the handler exists.
	wsHandler := websocket.NewHandler(cfg.Security.JWTSecret, log)

	// Services
	authService := services.NewAuthService(volunteerRepo, adminRepo, cfg.Security.JWTSecret, services.BootstrapAdminConfig{
		Name:     cfg.Security.BootstrapAdminName,
		Email:    cfg.Security.BootstrapAdminEmail,
		Password: cfg.Security.BootstrapAdminPassword,
	}, log)

	bootstrapCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureBootstrapAdmin(bootstrapCtx); err != nil {
		cancel()
		log.Fatalf("failed to ensure bootstrap admin: %v", err)
	}
	cancel()

	sosService := services.NewSOSService(sosRepo, volunteerRepo, wsHandler.GetHub(), cacheService, smsProvider, log)

	// Socket-originated chat persists through the same service path as HTTP.
	wsHandler.SetChatSink(sosService)

	// Handlers
	sosHandler := handlers.NewSOSHandler(sosService)
	volunteerHandler := handlers.NewVolunteerHandler(authService)
	adminHandler := handlers.NewAdminHandler(authService, sosService)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupSOSRoutes(v1, sosHandler, cfg.Security.JWTSecret)
		routes.SetupVolunteerRoutes(v1, volunteerHandler)
		routes.SetupAdminRoutes(v1, adminHandler, cfg.Security.JWTSecret)
	}

	router.GET(cfg.WebSocket.Path, wsHandler.HandleWebSocket)

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{
			"status":  "healthy",
			"version": cfg.App.Version,
		}
		if err := db.Ping(); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
		}
		c.JSON(status, body)
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	log.Infof("starting %s on %s", cfg.App.Name, addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
