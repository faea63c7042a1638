package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quillhub/quillhub/internal/auth"
	"github.com/quillhub/quillhub/internal/cache"
	"github.com/quillhub/quillhub/internal/cleanup"
	"github.com/quillhub/quillhub/internal/database"
	"github.com/quillhub/quillhub/internal/email"
	"github.com/quillhub/quillhub/internal/handlers"
	"github.com/quillhub/quillhub/internal/logger"
	"github.com/quillhub/quillhub/internal/middleware"
	"github.com/quillhub/quillhub/internal/projection"
	"github.com/quillhub/quillhub/internal/storage"
)

func main() {
	// Missing .env just means the process environment is used
	_ = godotenv.Load()

	if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
		panic(err)
	}
	defer logger.Close()

	logger.Log.Info("quillhub server starting")

	if err := database.Initialize(); err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		logger.Log.Fatal("failed to run migrations", zap.Error(err))
	}

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	if len(jwtSecret) == 0 {
		logger.Log.Fatal("JWT_SECRET environment variable is required")
	}

	// Mailer is optional in development; verification codes land in the log
	var mailer auth.Mailer
	var notifier handlers.RemovalNotifier
	if os.Getenv("SES_FROM_EMAIL") != "" {
		emailService, err := email.NewService(
			os.Getenv("AWS_REGION"),
			os.Getenv("SES_FROM_EMAIL"),
			os.Getenv("SES_FROM_NAME"),
			os.Getenv("WEB_BASE_URL"),
		)
		if err != nil {
			logger.Log.Fatal("failed to initialize email service", zap.Error(err))
		}
		mailer = emailService
		notifier = emailService
	} else {
		logger.Log.Warn("SES_FROM_EMAIL not set, emails disabled")
	}

	authService := auth.NewService(database.DB, jwtSecret, mailer)
	projectionService := projection.New(database.DB, nil)

	h := handlers.New(database.DB, authService, projectionService)
	if notifier != nil {
		h.SetRemovalNotifier(notifier)
	}

	if os.Getenv("AWS_BUCKET") != "" {
		s3Uploader, err := storage.NewS3Uploader(
			os.Getenv("AWS_REGION"),
			os.Getenv("AWS_BUCKET"),
			os.Getenv("CDN_BASE_URL"),
		)
		if err != nil {
			logger.Log.Fatal("failed to initialize S3 uploader", zap.Error(err))
		}
		if err := s3Uploader.CheckBucketAccess(context.Background()); err != nil {
			logger.Log.Warn("S3 bucket access check failed, uploads may fail", zap.Error(err))
		}
		h.SetImageStore(s3Uploader)
	} else {
		logger.Log.Warn("AWS_BUCKET not set, picture uploads disabled")
	}

	// Redis backs the rate limiter. Without it the limiter passes
	// everything through.
	if host := os.Getenv("REDIS_HOST"); host != "" {
		if _, err := cache.NewRedisClient(host, os.Getenv("REDIS_PORT"), os.Getenv("REDIS_PASSWORD")); err != nil {
			logger.Log.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		}
	}

	removalSweep := cleanup.New(database.DB, nil, 1*time.Hour)
	removalSweep.Start()
	defer removalSweep.Stop()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = corsOrigins()
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Credential-stuffing protection on the auth surface
	r.Use(pathPrefixLimiter("/api/auth", middleware.RedisRateLimitMiddleware(30, time.Minute)))

	r.GET("/health", func(c *gin.Context) {
		if err := database.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "quillhub",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h.RegisterRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8787"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("forced shutdown", zap.Error(err))
	}

	logger.Log.Info("server exited")
}

func corsOrigins() []string {
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		return []string{origins}
	}
	return []string{"http://localhost:3000"}
}

// pathPrefixLimiter applies a middleware only to paths under prefix
func pathPrefixLimiter(prefix string, limiter gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(c.Request.URL.Path) >= len(prefix) && c.Request.URL.Path[:len(prefix)] == prefix {
			limiter(c)
			return
		}
		c.Next()
	}
}
