// main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marga-Ghale/projecthub-backend/internal/api/handlers"
	"github.com/Marga-Ghale/projecthub-backend/internal/api/middleware"
	"github.com/Marga-Ghale/projecthub-backend/internal/auth/oidc"
	"github.com/Marga-Ghale/projecthub-backend/internal/config"
	"github.com/Marga-Ghale/projecthub-backend/internal/cron"
	"github.com/Marga-Ghale/projecthub-backend/internal/db"
	"github.com/Marga-Ghale/projecthub-backend/internal/email"
	"github.com/Marga-Ghale/projecthub-backend/internal/logger"
	"github.com/Marga-Ghale/projecthub-backend/internal/notification"
	"github.com/Marga-Ghale/projecthub-backend/internal/repository"
	"github.com/Marga-Ghale/projecthub-backend/internal/seed"
	"github.com/Marga-Ghale/projecthub-backend/internal/service"
	"github.com/Marga-Ghale/projecthub-backend/internal/session"
	"github.com/Marga-Ghale/projecthub-backend/internal/socket"
	"github.com/Marga-Ghale/projecthub-backend/internal/telemetry"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

func main() {
	// ============================================
	// Load environment variables and configuration
	// ============================================
	envErr := godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(logger.Conf{
		Output: cfg.LogOutput,
		Path:   cfg.LogPath,
		Level:  cfg.LogLevel,
		JSON:   cfg.IsProduction(),
	})
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	if envErr != nil {
		logger.L().Info("[Config] No .env file found, using environment variables")
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	logger.L().Info("[DB] Running database migrations")
	if err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		logger.L().Fatalw("[DB] Migration failed", "error", err)
	}

	// ============================================
	// Initialize PostgreSQL (pgxpool + sqlx)
	// ============================================
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	pg, err := db.NewPostgresDB(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.L().Fatalw("[DB] Failed to connect", "error", err)
	}
	defer pg.Close()

	repos := repository.NewRepositories(pg.Pool, pg.SQL)

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	var redisClient *redis.Client
	var profileCache service.ProfileCache
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			logger.L().Warnw("[Redis] unavailable, continuing without cache", "error", err)
		} else {
			defer redisDB.Close()
			redisClient = redisDB.Client
			profileCache = redisDB
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailQueue *email.EmailQueue
	var pricingMailer service.PricingMailer
	var contactMailer handlers.ContactMailer
	if cfg.SMTPHost != "" {
		emailSvc := email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		emailQueue = email.NewEmailQueue(emailSvc, 2)
		defer emailQueue.Stop()
		pricingMailer = emailQueue
		contactMailer = emailQueue
		logger.L().Infow("[Email] service initialized", "host", cfg.SMTPHost)
	} else {
		logger.L().Warn("[Email] not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	sessions := session.NewRegistry()
	hub := socket.NewHub(companyRoomPolicy(sessions, repos.ProfileRepo))
	go hub.Run(ctx)
	broadcaster := socket.NewBroadcaster(hub)

	// ============================================
	// Seed Data (for development)
	// ============================================
	if !cfg.IsProduction() {
		if err := seed.SeedData(ctx, repos); err != nil {
			logger.L().Warnw("[Seed] failed", "error", err)
		}
	}

	// ============================================
	// Initialize Services
	// ============================================
	notificationSvc := notification.NewService(repos.RPC)
	notificationSvc.SetBroadcaster(broadcaster)

	services := service.NewServices(&service.ServiceDeps{
		Config:       cfg,
		Repos:        repos,
		Sessions:     sessions,
		ProfileCache: profileCache,
		Notifier:     notificationSvc,
		Broadcaster:  broadcaster,
		Counts:       broadcaster,
		Mailer:       pricingMailer,
	})

	var identity handlers.IdentityProvider
	if cfg.OIDC.Enabled {
		provider, err := oidc.NewProvider(ctx, cfg.OIDC)
		if err != nil {
			logger.L().Warnw("[OIDC] disabled", "error", err)
		} else {
			identity = provider
		}
	}

	h := handlers.NewHandlers(services, cfg, handlers.Options{Identity: identity, Mailer: contactMailer})
	wsHandler := socket.NewHandler(hub, services.Auth, cfg.AllowedOrigins)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	scheduler := cron.NewScheduler(cron.Options{
		NotificationRetention: time.Duration(cfg.NotificationRetentionDays) * 24 * time.Hour,
		SessionIdle:           time.Duration(cfg.SessionIdleMinutes) * time.Minute,
		SweepSchedule:         cfg.SubscriptionSweepCron,
	}, repos.NotificationRepo, sessions, services.Company, pg.Pool)
	if err := scheduler.Start(); err != nil {
		logger.L().Fatalw("[Cron] Failed to start scheduler", "error", err)
	}
	defer scheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), telemetry.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		database := "connected"
		if err := pg.Pool.Ping(c.Request.Context()); err != nil {
			status, database = http.StatusServiceUnavailable, "unreachable"
		}
		c.JSON(status, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   database,
			"cache":      featureStatus(redisDB != nil, "connected"),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"sessions":   sessions.Len(),
			"email":      featureStatus(emailQueue != nil, "configured"),
			"oidc":       featureStatus(identity != nil, "configured"),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", wsHandler.HandleWebSocket)

	limiter := middleware.NewRateLimiter(redisClient, cfg.RateLimitPerMinute)
	h.Routes(r.Group("/api"), middleware.AuthMiddleware(services.Auth, sessions), limiter.Handler())

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.L().Infow("[Server] starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.L().Fatalw("[Server] failed to start", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.L().Info("[Server] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L().Errorw("[Server] forced to shutdown", "error", err)
	}
	stop()

	logger.L().Info("[Server] exited")
}

func featureStatus(enabled bool, on string) string {
	if enabled {
		return on
	}
	return "disabled"
}
