// cmd/api/main.go
// Main entry point for the discovery API
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	// Internal packages
	"github.com/imadgeboyega/fitmatch-backend/internal/auth"
	"github.com/imadgeboyega/fitmatch-backend/internal/blocks"
	"github.com/imadgeboyega/fitmatch-backend/internal/common/database"
	"github.com/imadgeboyega/fitmatch-backend/internal/common/logger"
	"github.com/imadgeboyega/fitmatch-backend/internal/config"
	"github.com/imadgeboyega/fitmatch-backend/internal/kvstore"
	"github.com/imadgeboyega/fitmatch-backend/internal/profile"
	"github.com/imadgeboyega/fitmatch-backend/internal/signals"
	"github.com/imadgeboyega/fitmatch-backend/internal/swipe"
)

var startTime = time.Now()

func main() {
	// 1. Load environment variables
	envErr := godotenv.Load()

	// 2. Load configuration
	cfg := config.Load()
	log := logger.New(cfg.Logging)

	log.Info().Msg("========================================")
	log.Info().Msg("🚀 Starting FitMatch Discovery API")
	log.Info().Msg("========================================")

	log.Info().Msg("📁 Step 1: Loading .env file...")
	if envErr != nil {
		log.Warn().Err(envErr).Msg("⚠️  No .env file found, using environment variables")
	} else {
		log.Info().Msg("✅ .env file loaded successfully")
	}
	log.Info().Msg("📋 Step 2: Configuration loaded")

	// 3. Validate configuration
	log.Info().Msg("✔️  Step 3: Validating configuration...")
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Configuration validation failed")
	}
	log.Info().Str("environment", cfg.Environment).Msg("✅ Configuration is valid")

	// 4. Connect to PostgreSQL
	log.Info().Msg("🗄️  Step 4: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to PostgreSQL")
	}
	defer db.Close()
	log.Info().Msg("✅ Connected to PostgreSQL successfully")

	// 5. Connect to Redis
	log.Info().Msg("📮 Step 5: Connecting to Redis...")
	redisClient, err := database.NewRedisClient(&database.RedisConfig{
		URL:          cfg.RedisURL,
		DialTimeout:  cfg.RedisDialTimeout,
		ReadTimeout:  cfg.RedisReadTimeout,
		WriteTimeout: cfg.RedisWriteTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to connect to Redis")
	}
	defer redisClient.Close()
	log.Info().Msg("✅ Connected to Redis successfully")

	// 6. Run database migrations
	log.Info().Msg("🔨 Step 6: Running database migrations...")
	if err := database.RunMigrations(context.Background(), db, log); err != nil {
		log.Fatal().Err(err).Msg("❌ Failed to run migrations")
	}
	log.Info().Msg("✅ Database migrations completed")

	// 7. Initialize discovery components
	log.Info().Msg("💘 Step 7: Initializing discovery and swipe system...")
	store := kvstore.NewRedisStore(redisClient)
	queueCache := swipe.NewQueueCache(store, cfg.Swipe.QueueCacheTTL, log)
	blockRepo := blocks.NewPostgresRepository(db)

	swipeService := swipe.NewService(swipe.Deps{
		Store:    store,
		Cache:    queueCache,
		Repo:     swipe.NewPostgresRepository(db),
		Profiles: profile.NewPostgresRepository(db),
		Signals:  signals.NewPostgresRepository(db),
		Blocks:   blockRepo,
	}, cfg.Swipe, log)
	log.Info().
		Int("like_limit", cfg.Swipe.LikeDailyLimit).
		Int("superlike_limit", cfg.Swipe.SuperLikeDailyLimit).
		Dur("queue_cache_ttl", cfg.Swipe.QueueCacheTTL).
		Msg("✅ Swipe service initialized")

	blockService := blocks.NewService(blockRepo, queueCache, log)
	log.Info().Msg("✅ Block registry initialized")

	// 8. Setup routes
	log.Info().Msg("🛣️  Step 8: Setting up routes...")
	authMiddleware := auth.NewMiddleware(cfg.JWTSecret, log)
	router := newRouter(cfg, log, db, redisClient, swipeService, blockService, authMiddleware)

	// 9. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msg("========================================")
		log.Info().Msgf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Info().Msgf("🌍 Environment: %s", cfg.Environment)
		log.Info().Msg("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("❌ Server forced to shutdown")
	}

	log.Info().Msg("   - Waiting for pending side effects...")
	swipeService.Wait()

	log.Info().Msg("✅ Server exited gracefully")
}

// newRouter mounts every route on a gorilla router and wraps it with
// request logging and CORS
func newRouter(cfg *config.Config, log zerolog.Logger, db *sqlx.DB, redisClient *redis.Client,
	swipeService swipe.Service, blockService blocks.Service, authMiddleware *auth.Middleware) http.Handler {

	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck(db, redisClient)).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	log.Info().Msg("   ✅ Health and metrics routes registered")

	swipeHandler := swipe.NewHandler(swipeService, log)
	router.PathPrefix(swipe.RoutePrefix).Handler(
		swipe.NewRouter(swipeHandler, authMiddleware.Authenticate, cfg.RequestTimeout))
	log.Info().Msg("   ✅ Swipe routes registered")

	blocks.RegisterRoutes(router, blocks.NewHandler(blockService), authMiddleware.Authenticate)
	log.Info().Msg("   ✅ Block routes registered")

	router.Use(loggingMiddleware(log))

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: true,
	}).Handler(router)
}

// healthCheck reports server health including its backing stores
func healthCheck(db *sqlx.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := map[string]string{"postgres": "ok", "redis": "ok"}

		if err := db.PingContext(ctx); err != nil {
			checks["postgres"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			status = http.StatusServiceUnavailable
		}

		response := map[string]interface{}{
			"status":    "healthy",
			"checks":    checks,
			"timestamp": time.Now().Format(time.RFC3339),
			"uptime":    time.Since(startTime).String(),
		}
		if status != http.StatusOK {
			response["status"] = "degraded"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(response)
	}
}

// responseWriter captures the status code for request logging
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs all requests
func loggingMiddleware(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", r.RemoteAddr).
				Int("status", wrapped.statusCode).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
