package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindease/internal/achievements"
	"mindease/internal/api"
	"mindease/internal/auth"
	"mindease/internal/companion"
	"mindease/internal/llm"
	"mindease/internal/messagestore"
	"mindease/internal/messagestore/models"
	"mindease/internal/middleware"
	"mindease/internal/telegram"
	"mindease/internal/users"
	"mindease/internal/wellness"
	"mindease/pkg/config"
	"mindease/pkg/db"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	cfg := config.LoadConfig()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("unknown LOG_LEVEL %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	userService := users.NewService(users.NewRepository(database))
	messageStoreService := messagestore.NewService(messagestore.NewRepository(database))

	engine := companion.NewEngine(newBackend(cfg), companion.NewClassifier(nil), engineConfig(cfg))

	achievementRepo := achievements.NewRepository(database)
	evaluator := achievements.NewEvaluator(achievementRepo)
	wellnessRepo := wellness.NewRepository(database)
	tracker := wellness.NewTracker(wellnessRepo, wellness.NewStatsService(wellnessRepo, messageStoreService), evaluator)

	revoked := auth.NewRevocationList()
	go revoked.Run(ctx, 10*time.Minute)
	authenticator := auth.NewAuthenticator(cfg.JWTSigningKey, revoked)

	webSessions := companion.NewSessions(engine, messageStoreService, models.PlatformWeb)
	go webSessions.Run(ctx)

	if cfg.TelegramToken != "" {
		tgSessions := companion.NewSessions(engine, messageStoreService, models.PlatformTelegram)
		go tgSessions.Run(ctx)
		tgHandler, err := telegram.NewHandler(cfg.TelegramToken, tgSessions)
		if err != nil {
			logrus.Errorf("Telegram bot disabled: %v", err)
		} else {
			go tgHandler.Run(ctx)
		}
	} else {
		logrus.Info("TELEGRAM_TOKEN not set, Telegram bot disabled")
	}

	apiHandler := api.NewHandler(
		userService,
		authenticator,
		webSessions,
		tracker,
		evaluator,
		cfg.JWTSigningKey,
		cfg.JWTTTL,
	)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	apiHandler.Routes(r)

	server := &http.Server{
		Addr:              cfg.ServerHost + ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("server shutdown failed: %v", err)
	}
	logrus.Info("server stopped")
}

func newBackend(cfg *config.Config) llm.Backend {
	if cfg.LLMProvider == "openai" {
		logrus.Infof("using OpenAI-compatible backend, model %s", cfg.OpenAI.Model)
		return llm.NewOpenAIBackend(cfg.OpenAI.Key, cfg.OpenAI.BaseURL, cfg.OpenAI.Model)
	}
	logrus.Infof("using Ollama backend at %s (%s transport)", cfg.Ollama.URL, cfg.Ollama.Transport)
	return llm.NewOllamaBackend(cfg.Ollama.URL, cfg.Ollama.Transport, &http.Client{})
}

func engineConfig(cfg *config.Config) companion.EngineConfig {
	opts := llm.DefaultOptions()
	opts.NumCtx = cfg.Ollama.NumCtx
	opts.NumPredict = cfg.Ollama.NumPredict

	ec := companion.EngineConfig{
		PreferredModel:   cfg.Ollama.PreferredModel,
		FallbackFamilies: cfg.Ollama.FallbackFamilies,
		Options:          opts,
		ProbeTimeout:     cfg.Ollama.ProbeTimeout,
		ChatTimeout:      cfg.Ollama.ChatTimeout,
	}
	if cfg.LLMProvider == "openai" {
		ec.PreferredModel = cfg.OpenAI.Model
		ec.FallbackFamilies = nil
	}
	return ec
}
