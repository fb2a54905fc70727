package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/crosscheck-ai/crosscheck/internal/api/handlers"
	mw "github.com/crosscheck-ai/crosscheck/internal/api/middleware"
	"github.com/crosscheck-ai/crosscheck/internal/config"
	"github.com/crosscheck-ai/crosscheck/internal/domain"
	"github.com/crosscheck-ai/crosscheck/internal/llm"
	"github.com/crosscheck-ai/crosscheck/internal/provider"
	"github.com/crosscheck-ai/crosscheck/internal/registry"
	"github.com/crosscheck-ai/crosscheck/internal/scoring"
	"github.com/crosscheck-ai/crosscheck/internal/service"
	"github.com/crosscheck-ai/crosscheck/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the router and shared state for lifecycle management.
type App struct {
	Router       *chi.Mux
	Registry     *registry.Registry
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
	inFlight     atomic.Int64
}

// NewApp wires the full engine. db may be nil, in which case the in-memory
// cache backend is used regardless of configuration.
func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Cache backend
	var cache domain.Cache
	if config.CacheBackend() == "postgres" && db != nil {
		cache = store.NewPostgresCache(db)
		logger.Info("cache backend initialized", zap.String("backend", "postgres"))
	} else {
		cache = store.NewMemoryCache()
		logger.Info("cache backend initialized", zap.String("backend", "memory"))
	}

	// External clients via provider factory
	llmProvider := config.LLMProvider()
	llmClient, err := llm.NewClient(llmProvider, config.LLMAPIKey())
	if err != nil {
		logger.Warn("LLM client initialization failed, using mock", zap.String("provider", llmProvider), zap.Error(err))
		llmClient = llm.NewMockClient()
	} else {
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	var web registry.Searcher
	if key := config.ExaAPIKey(); key != "" {
		web = provider.NewExaClient(key)
	} else {
		logger.Warn("EXA_API_KEY not set, web search agents use mock results")
		web = provider.NewMockSearcher()
	}
	var news registry.Searcher
	if key := config.TavilyAPIKey(); key != "" {
		news = provider.NewTavilyClient(key)
	} else {
		logger.Warn("TAVILY_API_KEY not set, news search agents use mock results")
		news = provider.NewMockSearcher()
	}
	wiki := provider.NewWikipediaClient()

	reg := registry.NewBuiltin(web, news, wiki)

	// Services
	plannerSvc := service.NewPlannerService(llmClient, reg, config.MaxAgents(), logger)
	executorSvc := service.NewExecutorService(reg, cache, logger,
		config.AgentTimeout(), config.RetryTimeout(), config.CacheTTL())
	researchSvc := service.NewResearchService(plannerSvc, executorSvc, llmClient, reg, config.RetryRounds(), logger)
	validator := scoring.NewValidator(config.ConfidenceFloor(), config.ConfidenceCeiling(), logger)
	hypothesisSvc := service.NewHypothesisService(executorSvc, validator, llmClient, logger)

	// Handlers
	researchHandler := handlers.NewResearchHandler(researchSvc, logger)
	hypothesisHandler := handlers.NewHypothesisHandler(hypothesisSvc)
	agentsHandler := handlers.NewAgentsHandler(reg)

	r := chi.NewRouter()

	app := &App{
		Router:    r,
		Registry:  reg,
		startTime: time.Now(),
	}

	metricsCollector := mw.NewMetricsCollector(&app.requestCount, &app.errorCount, &app.inFlight)

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(metricsCollector.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(config.RateLimitRPS(), config.RateLimitBurst()))

	// Health (no auth)
	r.Get("/health", healthHandler(db))

	// Metrics (no auth)
	r.Get("/metrics", app.metricsHandler())

	// Authenticated routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(config.APIKey()))

		r.Get("/agents", agentsHandler.List)
		r.Post("/research", researchHandler.Run)
		r.Post("/hypotheses/validate", hypothesisHandler.Validate)
	})

	return app
}

// NewRouter returns just the chi.Mux for callers that manage no lifecycle.
func NewRouter(db *pgxpool.Pool, logger *zap.Logger) *chi.Mux {
	return NewApp(db, logger).Router
}

func healthHandler(db *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		response := map[string]any{
			"uptime_seconds": uptime.Seconds(),
			"uptime_human":   uptime.Round(time.Second).String(),
			"request_count":  app.requestCount.Load(),
			"error_count":    app.errorCount.Load(),
			"in_flight":      app.inFlight.Load(),
			"goroutines":     runtime.NumGoroutine(),
			"agents":         app.Registry.Len(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// Ensure stores and clients satisfy interfaces at compile time.
var (
	_ domain.Cache      = (*store.MemoryCache)(nil)
	_ domain.Cache      = (*store.PostgresCache)(nil)
	_ domain.LLMClient  = (*llm.OpenAIClient)(nil)
	_ domain.LLMClient  = (*llm.AnthropicClient)(nil)
	_ domain.LLMClient  = (*llm.MockClient)(nil)
	_ registry.Searcher = (*provider.ExaClient)(nil)
	_ registry.Searcher = (*provider.TavilyClient)(nil)
	_ registry.Searcher = (*provider.MockSearcher)(nil)
	_ registry.Summarizer = (*provider.WikipediaClient)(nil)
)
