package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/aiplan"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/config"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/db"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/globals"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/itinerary"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/logging"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/metrics"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/middleware"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/mq"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/places"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/planner"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/ratelim"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/rdx"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/routes"
	"github.com/QuangZuy11/TravelBookingSystem-BE-sub000/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// XSS, content sniffing, framing
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// Itineraries are per user
		w.Header().Set("Cache-Control", "no-store, private")
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware tags each request with an id and logs method, path,
// status and duration.
func loggingMiddleware(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = utils.GetUUID()
		}
		w.Header().Set("X-Request-ID", requestID)
		r = r.WithContext(context.WithValue(r.Context(), globals.RequestIDKey, requestID))

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
		logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)))
	})
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.Development())
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	mongo, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB, logger)
	if err != nil {
		logger.Fatal("mongo unavailable", zap.Error(err))
	}
	if err := mongo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("ensure indexes", zap.Error(err))
	}

	deps := itinerary.Deps{
		Store:  itinerary.NewMongoStore(mongo),
		Logger: logger,
		Options: itinerary.Options{
			PublicBaseURL:   cfg.PublicBaseURL,
			DefaultTimezone: cfg.DefaultTimezone,
		},
	}

	var cache planner.Cache = planner.NewMemoryCache(cfg.PoolCacheTTL)
	var redisConn *redis.Client
	if cfg.RedisEnabled() {
		redisConn, err = rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatal("redis unavailable", zap.Error(err))
		}
		deps.Locker = rdx.NewLocker(redisConn, logger)
		deps.Events = mq.NewRedisEmitter(redisConn, logger)
		cache = rdx.NewPoolCache(redisConn, cfg.PoolCacheTTL, logger)
		logger.Info("redis enabled", zap.String("addr", cfg.RedisAddr))
	} else {
		logger.Info("redis not configured; using in-process locks and cache")
	}

	catalog := places.NewMongoCatalog(mongo)
	deps.Catalog = catalog
	deps.Pool = planner.NewBuilder(catalog, cache, logger)

	if cfg.AIEnabled() {
		completer := aiplan.NewOpenAICompleter(cfg.OpenAIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
		deps.External = aiplan.NewAdapter(completer, cfg.AIPlanTimeout, logger)
		logger.Info("external planner enabled", zap.String("model", cfg.OpenAIModel))
	}

	svc := itinerary.NewService(deps)
	if n, err := svc.SweepOrphans(ctx, cfg.OrphanSweepAge); err != nil {
		logger.Warn("orphan sweep failed", zap.Error(err))
	} else if n > 0 {
		logger.Info("orphan sweep removed days", zap.Int64("days", n))
	}

	rateLimiter := ratelim.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	stopLimiter := make(chan struct{})
	go rateLimiter.Run(stopLimiter)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Auth:        middleware.NewAuth(cfg.JWTSecret),
		RateLimiter: rateLimiter,
		Itinerary:   itinerary.NewHandlers(svc, logger),
		Places:      &places.Handlers{Catalog: catalog, Destinations: catalog, Logger: logger},
	})

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "Content-Disposition"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(logger, securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		close(stopLimiter)
	})

	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	// wait for interrupt or SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if redisConn != nil {
		if err := redisConn.Close(); err != nil {
			logger.Warn("close redis", zap.Error(err))
		}
	}
	if err := mongo.Disconnect(shutdownCtx); err != nil {
		logger.Warn("disconnect mongo", zap.Error(err))
	}
	logger.Info("server stopped cleanly")
}
