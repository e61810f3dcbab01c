package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/luxbot/internal/auth"
	"github.com/freeeve/luxbot/internal/bot"
	"github.com/freeeve/luxbot/internal/config"
	"github.com/freeeve/luxbot/internal/handler"
	"github.com/freeeve/luxbot/internal/logger"
	"github.com/freeeve/luxbot/internal/middleware"
	"github.com/freeeve/luxbot/internal/repository"
	"github.com/freeeve/luxbot/internal/repository/memory"
	"github.com/freeeve/luxbot/internal/repository/postgres"
	redisrepo "github.com/freeeve/luxbot/internal/repository/redis"
	"github.com/freeeve/luxbot/internal/service"
)

const maxRequestBody = 4 << 20

func main() {
	logger.Init()
	cfg := config.Load()
	inMemory := flag.Bool("memory", false, "keep matches in process memory instead of Postgres and Redis")
	flag.Parse()

	policies := bot.Presets()
	if cfg.PolicyFile != "" {
		var err error
		if policies, err = bot.LoadPolicies(cfg.PolicyFile); err != nil {
			log.Fatal().Err(err).Str("file", cfg.PolicyFile).Msg("Failed to load policies")
		}
	}
	log.Info().Strs("variants", sortedKeys(policies)).Bool("memory", *inMemory).Msg("Config loaded")

	var (
		health    []func(context.Context) error
		matchRepo repository.MatchRepository
		turnRepo  repository.TurnRepository
		cache     repository.TurnCache
	)
	if *inMemory {
		store := memory.New()
		matchRepo, turnRepo, cache = store, store, store
	} else {
		db, err := postgres.Connect(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns)
		if err != nil {
			log.Fatal().Err(err).Msg("Database connection failed")
		}
		defer db.Close()
		if cfg.MigrationFile != "" {
			if err := postgres.Migrate(context.Background(), db, cfg.MigrationFile); err != nil {
				log.Fatal().Err(err).Msg("Migration failed")
			}
		}

		redisClient, err := redisrepo.NewClient(context.Background(), cfg.RedisURL, cfg.MatchTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		defer redisClient.Close()
		health = append(health, db.PingContext, redisClient.Ping)

		matchRepo = postgres.NewMatchRepo(db)
		turnRepo = postgres.NewTurnRepo(db)
		cache = redisClient
	}

	// Auth
	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)

	// WebSocket hub
	wsHub := handler.NewHub()

	// Services
	pool := service.NewAgentPool()
	matchSvc := service.NewMatchService(matchRepo, cache, pool, wsHub, policies)
	decisionSvc := service.NewDecisionService(matchRepo, turnRepo, cache, pool, wsHub, policies)

	// Handlers
	authHandler := handler.NewAuthHandler(jwtMgr, cfg.DevAuth)
	matchHandler := handler.NewMatchHandler(matchSvc, decisionSvc)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr, cfg.AllowOrigin)

	// Router
	mux := http.NewServeMux()
	authMw := auth.Middleware(jwtMgr)

	// Health
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, ping := range health {
			if err := ping(ctx); err != nil {
				log.Warn().Err(err).Msg("Health check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				w.Write([]byte(`{"status":"unavailable"}`))
				return
			}
		}
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Auth (public)
	mux.HandleFunc("POST /auth/refresh", authHandler.RefreshToken)
	mux.HandleFunc("GET /auth/dev", authHandler.DevLogin)

	// Protected API routes
	api := http.NewServeMux()
	handler.RegisterMatchRoutes(api, matchHandler)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", authMw(api)))

	// WebSocket (auth via query param, not middleware)
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	// Apply global middleware
	root := middleware.Chain(mux,
		middleware.Recover,
		middleware.Logger,
		middleware.CORS(cfg.AllowOrigin),
		middleware.MaxBody(maxRequestBody),
		middleware.JSON,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Int("agents", pool.Len()).Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

func sortedKeys(policies map[string]bot.Policy) []string {
	names := make([]string, 0, len(policies))
	for name := range policies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
