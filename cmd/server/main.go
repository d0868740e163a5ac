package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/liamcoop/learningplan/access"
	"github.com/liamcoop/learningplan/internal/config"
	"github.com/liamcoop/learningplan/internal/logger"
	"github.com/liamcoop/learningplan/internal/metrics"
	"github.com/liamcoop/learningplan/store"
)

type Server struct {
	svc            *access.Service
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	router         *chi.Mux
	tokenHeader    string
	slowRequest    time.Duration
	requestTimeout time.Duration
	closers        []func() error
}

// NewServer builds the repository and cache selected by cfg
func NewServer(cfg config.Config) (*Server, error) {
	var (
		repo    store.Repository
		closers []func() error
	)

	switch cfg.StoreDriver {
	case config.DriverMemory:
		mem := store.NewInMemoryStore()
		store.SeedDemo(mem)
		repo = mem
		logger.Info("using in-memory store with demo data")
	default:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		repo = store.NewPostgresStore(db)
		closers = append(closers, db.Close)
	}

	cacheConfig := store.CacheConfig{TTL: cfg.CatalogCacheTTL}
	var cache store.CatalogCache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to ping redis: %w", err)
		}
		cache = store.NewRedisCatalogCache(client, cacheConfig)
		closers = append(closers, client.Close)
		logger.Info("catalog cache backed by redis", "ttl", cfg.CatalogCacheTTL.String())
	} else {
		cache = store.NewInMemoryCatalogCache(cacheConfig)
	}

	s := newServer(repo, cache, cfg)
	s.closers = closers
	return s, nil
}

// NewServerWithDB creates a server over an existing database connection
func NewServerWithDB(db *sql.DB, cfg config.Config) *Server {
	return newServer(store.NewPostgresStore(db), store.NewInMemoryCatalogCache(store.CacheConfig{TTL: cfg.CatalogCacheTTL}), cfg)
}

func newServer(repo store.Repository, cache store.CatalogCache, cfg config.Config) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	s := &Server{
		svc:            access.NewService(repo, cache, m),
		metrics:        m,
		registry:       registry,
		tokenHeader:    cfg.TokenHeader,
		slowRequest:    cfg.SlowRequestThreshold,
		requestTimeout: cfg.RequestTimeout,
	}
	if s.tokenHeader == "" {
		s.tokenHeader = "UserToken"
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = 60 * time.Second
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.requestTimeout))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Get("/incentives", s.handleIncentives)
	r.Get("/learning-plan", s.handleLearningPlan)
	r.Route("/users", func(r chi.Router) {
		r.Get("/", s.handleUsers)
		r.Get("/working", s.handleWorking)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases the database and redis connections
func (s *Server) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warn("invalid LOG_LEVEL", "error", err)
	}
	logger.SetLevel(level)
	logger.SetSampleRate(cfg.ErrorSampleRate)

	server, err := NewServer(cfg)
	if err != nil {
		logger.Fatal("failed to create server", "error", err)
	}
	defer server.Close()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		logger.Info("server starting", "port", cfg.Port, "store", cfg.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed to start", "error", err)
		}
	}()

	// SIGHUP drops the cached catalog; SIGINT/SIGTERM shut down
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			server.svc.InvalidateCatalog(context.Background())
			logger.Info("incentive catalog cache invalidated")
			continue
		}
		break
	}

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
