package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"github.com/yourorg/jobboard/internal/handler"
	"github.com/yourorg/jobboard/internal/infrastructure/logger"
	"github.com/yourorg/jobboard/internal/infrastructure/redis"
	"github.com/yourorg/jobboard/internal/observability/metrics"
	"github.com/yourorg/jobboard/internal/observability/tracing"
	"github.com/yourorg/jobboard/internal/repository"
	"github.com/yourorg/jobboard/internal/security"
	"github.com/yourorg/jobboard/internal/security/audit"
	"github.com/yourorg/jobboard/internal/security/auth"
	"github.com/yourorg/jobboard/internal/security/middleware"
	"github.com/yourorg/jobboard/internal/security/ratelimit"
	"github.com/yourorg/jobboard/internal/service"
	"github.com/yourorg/jobboard/internal/storage"
	"github.com/yourorg/jobboard/internal/worker"
	"github.com/yourorg/jobboard/pkg/config"
	"github.com/yourorg/jobboard/pkg/database"
)

func main() {
	// 1. Load configuration (.env in development, env vars otherwise)
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting jobboard server", slog.String("environment", cfg.Environment))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Tracing (no-op without an OTLP endpoint configured)
	shutdownTracing, err := tracing.Init(ctx, log, "jobboard", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Database connection and schema
	pool, err := database.NewConnectionPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.Migrate(pool.GetDB(), log); err != nil {
		log.Error("failed to migrate database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 5. Redis client (submission locks)
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to Redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	// 6. Blob store and upload staging
	blobStore, err := storage.NewFSStore(cfg.BlobDir, log)
	if err != nil {
		log.Error("failed to initialize blob store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	staging, err := storage.NewStaging(cfg.StagingDir)
	if err != nil {
		log.Error("failed to initialize staging dir", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Repositories
	db := pool.GetDB()
	userRepo := repository.NewPostgresUserRepository(db, log)
	jobRepo := repository.NewPostgresJobRepository(db, log)
	appRepo := repository.NewPostgresApplicationRepository(db, log)

	// 8. Services
	tokenManager := auth.NewTokenManager(cfg.SigningKey, cfg.TokenIssuer)
	authz := security.NewAuthorizationService(log)
	authService := service.NewAuthService(userRepo, tokenManager, log)
	jobService := service.NewJobService(jobRepo, authz, log)
	appService := service.NewApplicationService(appRepo, jobRepo, blobStore, redisClient, authz, log)

	// 9. Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	jobsHandler := handler.NewJobsHandler(jobService, authService, log)
	applyHandler := handler.NewApplyHandler(appService, authService, staging, cfg.AllowedResumeTypes, cfg.MaxUploadMB, log)
	applicationsHandler := handler.NewApplicationsHandler(appService, authService, log)
	statusHandler := handler.NewStatusHandler(appService, authService, log)
	resumeHandler := handler.NewResumeHandler(appService, log)

	// 10. Security components
	rateLimiter := ratelimit.NewLimiter(100, time.Minute)
	auditLogger := audit.NewLogger(log)

	// 11. HTTP routes
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/signup", authHandler.Signup)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", authHandler.Me)
	mux.HandleFunc("GET /api/jobs", jobsHandler.List)
	mux.HandleFunc("POST /api/jobs", jobsHandler.Create)
	mux.HandleFunc("PUT /api/jobs/{id}", jobsHandler.Update)
	mux.HandleFunc("DELETE /api/jobs/{id}", jobsHandler.Delete)
	mux.Handle("POST /api/jobs/{id}/apply", applyHandler)
	mux.Handle("GET /api/jobs/{id}/applications", applicationsHandler)
	mux.Handle("PUT /api/applications/{id}/status", statusHandler)
	mux.Handle("GET /api/resume/{id}", resumeHandler)
	mux.Handle("/metrics", promhttp.Handler())

	// Health and readiness endpoints (no auth required)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Health(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("database not ready"))
			return
		}
		if err := redisClient.Ping(ctx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("redis not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> JWT -> rate limit ->
	// audit -> content type -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.JWTMiddleware(tokenManager, log)(
				middleware.RateLimitMiddleware(rateLimiter, log)(
					middleware.AuditMiddleware(auditLogger)(
						middleware.ValidateJSONContentType(log)(handlerWithCORS),
					),
				),
			),
		),
		log,
	)

	// 12. Start blob sweeper in background
	sweeper := worker.NewBlobSweeper(
		blobStore,
		appRepo,
		log,
		time.Duration(cfg.SweepIntervalMinutes)*time.Minute,
		time.Duration(cfg.SweepGraceMinutes)*time.Minute,
	)
	go sweeper.Start(ctx)

	// 13. Start HTTP server
	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      otelhttp.NewHandler(rootHandler, "jobboard.http"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info("server starting",
		slog.String("addr", cfg.ListenAddr),
		slog.String("auth", "jwt"),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	<-sigChan
	log.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	cancel() // Stop the sweeper
	rateLimiter.Stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}
	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err == nil {
		return hex.EncodeToString(buf)
	}
	return fmt.Sprintf("req-%d", time.Now().UnixNano())
}
