package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmgine/dmgine/config"
	"github.com/dmgine/dmgine/pkg/ai/llm"
	"github.com/dmgine/dmgine/pkg/api/handlers"
	custommw "github.com/dmgine/dmgine/pkg/api/middleware"
	"github.com/dmgine/dmgine/pkg/auth"
	"github.com/dmgine/dmgine/pkg/billing"
	"github.com/dmgine/dmgine/pkg/cache"
	"github.com/dmgine/dmgine/pkg/generator"
	"github.com/dmgine/dmgine/pkg/identity"
	"github.com/dmgine/dmgine/pkg/jobs"
	"github.com/dmgine/dmgine/pkg/logger"
	"github.com/dmgine/dmgine/pkg/metrics"
	custommiddleware "github.com/dmgine/dmgine/pkg/middleware"
	"github.com/dmgine/dmgine/pkg/quota"
	"github.com/dmgine/dmgine/pkg/store"
)

func main() {
	// Load .env if present (local development)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.APIEnvironment)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	// Initialize Postgres
	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startCancel()

	db, err := store.NewDB(startCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(startCtx); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}
	log.Printf("✅ Database migrations applied")

	// Initialize Redis cache
	redisClient, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("❌ Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Initialize Prometheus metrics
	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	// Repositories
	users := store.NewUsers(db)
	generations := store.NewGenerations(db)

	// Identity resolution: premium always comes from the profile store,
	// cached briefly in Redis
	resolver := identity.NewResolver(users, redisClient, appLogger)

	// Quota gate over the two daily ledgers
	policy := quota.Policy{
		AnonymousDailyLimit: cfg.AnonymousDailyLimit,
		FreeDailyLimit:      cfg.FreeDailyLimit,
		PremiumTones:        quota.DefaultPolicy().PremiumTones,
	}
	gate := quota.NewGate(policy,
		quota.NewRedisLedger(redisClient, "anon"),
		quota.NewRedisLedger(redisClient, "user"),
	)

	// Generation provider and workflow
	provider := llm.NewOpenAIClient(cfg.OpenAIAPIKey, appLogger)
	generatorService := generator.NewService(policy, gate, provider, generations, prometheusMetrics, appLogger)

	// Billing
	billingService := billing.NewService(users, resolver, policy, &billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PricePremium:  cfg.StripePricePremium,
		SuccessURL:    cfg.FrontendURL + "/upgrade/success",
		CancelURL:     cfg.FrontendURL + "/upgrade/cancelled",
		FrontendURL:   cfg.FrontendURL,
	})
	billingService.SetRecorder(prometheusMetrics)

	// Auth
	blacklist := auth.NewTokenBlacklist(redisClient)

	// Handlers
	generateHandler := handlers.NewGenerateHandler(resolver, generatorService)
	tierConfigHandler := handlers.NewTierConfigHandler()
	authHandler := handlers.NewAuthHandler(users, cfg, blacklist, prometheusMetrics)
	userHandler := handlers.NewUserHandler(resolver, generatorService, generations)
	billingHandler := handlers.NewBillingHandler(billingService, prometheusMetrics)

	// Cron jobs
	cronManager := jobs.NewCronManager(generations, log.Default())
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("❌ Failed to setup cron jobs: %v", err)
	}
	cronManager.Start()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	// Rate limiters
	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	generateRateLimiter := custommiddleware.NewRateLimiter(cfg.GenerateRateLimitPerMinute, cfg.GenerateRateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2)       // login
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20) // Stripe webhooks

	// Global middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Printf("[%s] %s - Status: %d", c.Request().Method, v.URI, v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true,
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(cfg.CORSAllowedOrigins)))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{}))
	e.Use(globalRateLimiter.RateLimitMiddleware())

	// Health and metrics endpoints (public)
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "DMGine API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":   "unhealthy",
				"database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(ctx).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy",
				"cache":  "down",
			})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":   "healthy",
			"database": "up",
			"cache":    "up",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.GET("/ping", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "pong"})
	})

	// Generation: anonymous allowed, token optional
	v1.POST("/generate-dm", generateHandler.Generate,
		generateRateLimiter.RateLimitMiddleware(),
		custommw.OptionalAuth(cfg.JWTSecret, blacklist))

	// Tier capability info (public)
	v1.GET("/tier-config/:tier", tierConfigHandler.Get)

	// Auth
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register, authRateLimiter.RateLimitMiddleware())
	authGroup.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())
	authGroup.GET("/me", authHandler.Me, custommw.RequireAuth(cfg.JWTSecret, blacklist))
	authGroup.POST("/logout", authHandler.Logout, custommw.RequireAuth(cfg.JWTSecret, blacklist))

	// User usage and history
	v1.GET("/user/usage", userHandler.Usage, custommw.RequireAuth(cfg.JWTSecret, blacklist))
	v1.GET("/user/history", userHandler.History, custommw.RequireAuth(cfg.JWTSecret, blacklist))

	// Billing
	v1.GET("/pricing", billingHandler.Pricing)
	billingGroup := v1.Group("/billing")
	billingGroup.POST("/checkout", billingHandler.CreateCheckout, custommw.RequireAuth(cfg.JWTSecret, blacklist))
	billingGroup.POST("/portal", billingHandler.CreatePortal, custommw.RequireAuth(cfg.JWTSecret, blacklist))

	// Stripe calls this directly; signature verification happens in the handler
	v1.POST("/webhook/stripe", billingHandler.Webhook, webhookRateLimiter.RateLimitMiddleware())

	// Start server
	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Printf("🚀 DMGine API starting on %s", address)
	log.Printf("📝 Log level: %s, Log format: %s", cfg.LogLevel, cfg.LogFormat)
	log.Printf("🔐 JWT expiration: %d hours", cfg.JWTExpirationHours)
	log.Printf("🌍 CORS: %s", strings.Join(cfg.CORSAllowedOrigins, ", "))
	log.Printf("🛡️  Rate limiting: %d req/min (burst: %d), generate %d req/min (burst: %d)",
		cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst,
		cfg.GenerateRateLimitPerMinute, cfg.GenerateRateLimitBurst)
	log.Printf("🎯 Daily quotas: anonymous %d, free %d, premium unlimited",
		cfg.AnonymousDailyLimit, cfg.FreeDailyLimit)
	log.Printf("⏰ Cron jobs: Daily 3AM (prune history), Daily 4AM (stats)")

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	cronManager.Stop()
	log.Println("✅ Cron jobs stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}
