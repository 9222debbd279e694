package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dennisdiepolder/eduvoice/internal/aggregator"
	"github.com/dennisdiepolder/eduvoice/internal/api"
	"github.com/dennisdiepolder/eduvoice/internal/auth"
	"github.com/dennisdiepolder/eduvoice/internal/cache"
	"github.com/dennisdiepolder/eduvoice/internal/config"
	"github.com/dennisdiepolder/eduvoice/internal/convo"
	"github.com/dennisdiepolder/eduvoice/internal/crm"
	"github.com/dennisdiepolder/eduvoice/internal/eligibility"
	"github.com/dennisdiepolder/eduvoice/internal/flow"
	"github.com/dennisdiepolder/eduvoice/internal/interpreter"
	"github.com/dennisdiepolder/eduvoice/internal/metrics"
	"github.com/dennisdiepolder/eduvoice/internal/orchestrator"
	"github.com/dennisdiepolder/eduvoice/internal/prompts"
	"github.com/dennisdiepolder/eduvoice/internal/speech"
	"github.com/dennisdiepolder/eduvoice/internal/storage"
	"github.com/dennisdiepolder/eduvoice/internal/telephony"
	"github.com/dennisdiepolder/eduvoice/internal/websocket"
	"github.com/dennisdiepolder/eduvoice/pkg/middleware"
)

func main() {
	// Configure logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Set log level
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("invalid log level, using info")
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("log_level", cfg.LogLevel).
		Str("default_language", cfg.DefaultLanguage).
		Msg("starting EduVoice engine")

	// Create context for services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Durable persistence (call records, leads, deferred tasks, callbacks)
	store, err := storage.NewStore(ctx, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Conversation context store: Redis with a retention TTL when configured,
	// in-process otherwise
	var convos convo.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("failed to reach redis")
		}
		convos = convo.NewRedisStore(rdb)
		log.Info().Str("addr", cfg.RedisAddr).Msg("conversation contexts stored in redis")
	} else {
		convos = convo.NewMemoryStore()
		log.Info().Msg("conversation contexts stored in process memory")
	}

	// Turn interpreter, with the model scorer when a key is configured
	var scorer interpreter.Scorer
	if cfg.GeminiAPIKey != "" {
		scorer, err = interpreter.NewGeminiScorer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize scoring model")
		}
		log.Info().Str("model", cfg.GeminiModel).Msg("model-backed turn interpretation enabled")
	} else {
		log.Warn().Msg("GEMINI_API_KEY not set, using rule-based turn interpretation only")
	}
	interp := interpreter.New(scorer, cfg.InterpreterTimeout, log.Logger)

	// Dialogue configuration: prompts, lender set, question sequence
	catalog, err := prompts.Load(cfg.FlowConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load prompt catalog")
	}
	lenders, err := eligibility.LoadLenderSet(cfg.FlowConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load lender set")
	}
	flowCfg, err := flow.LoadConfig(cfg.FlowConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load flow config")
	}
	machine, err := flow.New(flowCfg, eligibility.New(lenders), catalog, log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build conversation machine")
	}

	// Collaborator adapters
	crmClient := crm.New(cfg.CRMBaseURL, cfg.CRMToken, log.Logger)
	synth := speech.New(cfg.SpeechBaseURL, cfg.SpeechToken, log.Logger)
	provider := telephony.New(cfg.TelephonyBaseURL, cfg.TelephonyToken, cfg.PublicBaseURL, log.Logger)

	// Live view caches
	tracker := cache.NewLiveCallTracker()
	events := cache.NewEventCache()

	// The orchestration engine
	engine := orchestrator.NewEngine(cfg, machine, interp, convos, store, crmClient, synth, provider, tracker, events, log.Logger)
	engine.Start(ctx)

	// Monitor stream: hub + per-second frame broadcaster
	hub := websocket.NewHub(log.Logger)
	go hub.Run()
	wsHandler := websocket.NewHandler(hub, cfg, log.Logger)

	aggregatorService := aggregator.NewAggregator(events, tracker, engine, hub, log.Logger)
	go aggregatorService.Start(ctx)

	// Telephony webhook receiver
	receiver := telephony.NewReceiver(engine, cfg.PublicBaseURL, log.Logger)

	// REST handlers
	callsHandler := api.NewCallsHandler(engine, tracker, log.Logger)
	leadHistory := api.NewLeadHistoryHandler(store, log.Logger)
	leadsHandler := api.NewLeadsHandler(store, log.Logger)
	adminHandler := api.NewAdminHandler(engine, tracker, store, log.Logger)

	// Create router
	r := chi.NewRouter()

	// Add middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register public routes (no auth required)
	r.Get("/health", healthHandler)
	r.Get("/metrics", metrics.Get().Handler())

	// Internal routes (no auth - called by the telephony provider and campaign tooling)
	r.Route("/internal", func(r chi.Router) {
		r.Post("/telephony/status", receiver.HandleStatus)
		r.Post("/telephony/utterance", receiver.HandleUtterance)
		r.Post("/telephony/voice", receiver.HandleVoice)
		r.Get("/telephony/stats", receiver.GetStats)
		r.Post("/leads/import", leadsHandler.HandleImport)
	})

	// Add auth middleware for protected routes
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware)

		r.Get("/ws", wsHandler.ServeHTTP)

		r.Route("/api", func(r chi.Router) {
			r.Get("/calls", callsHandler.ListCalls)
			r.Get("/calls/{callId}", callsHandler.GetCall)
			r.Get("/leads", leadsHandler.ListLeads)
			r.Get("/leads/{leadId}", leadHistory.GetLead)
			r.Get("/leads/{leadId}/calls", leadHistory.GetCalls)
			r.Get("/leads/{leadId}/handoffs", leadHistory.GetHandoffs)
			r.Get("/leads/{leadId}/callbacks", leadHistory.GetCallbacks)

			r.Group(func(r chi.Router) {
				r.Use(api.RequireSupervisorOrAdmin)
				r.Post("/calls", callsHandler.InitiateCall)
				r.Post("/calls/{callId}/utterance", callsHandler.PostUtterance)
				r.Delete("/calls/{callId}", callsHandler.EndCall)
				r.Post("/leads/{leadId}/handoff", callsHandler.TriggerHandoff)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(api.RequireAdmin)
				r.Post("/campaign", adminHandler.StartCampaign)
				r.Post("/calls/inject", adminHandler.InjectCalls)
				r.Post("/calls/wipe", adminHandler.WipeAllCalls)
				r.Post("/reset", adminHandler.ResetMemory)
				r.Post("/storage/truncate", adminHandler.TruncateStorage)
			})
		})
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Msgf("server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Stop the dial, scheduler and broadcast loops
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// healthHandler handles health check requests
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"ok","service":"eduvoice-engine"}`)
}
