package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ai-translator/web/internal/api"
	"github.com/ai-translator/web/internal/auth"
	"github.com/ai-translator/web/internal/config"
	"github.com/ai-translator/web/internal/db"
	"github.com/ai-translator/web/internal/session"
	"github.com/ai-translator/web/internal/translate"
	"github.com/ai-translator/web/internal/web"
)

type sessionStore interface {
	session.Store
	io.Closer
}

func openSessionStore(cfg *config.Config, database *db.Database) (sessionStore, error) {
	switch cfg.SessionBackend {
	case "", "memory":
		return session.NewMemoryStore(cfg.SessionTTL), nil
	case "redis":
		return session.NewRedisStore(session.RedisConfig{URL: cfg.RedisURL, TTL: cfg.SessionTTL})
	case "sqlite":
		return session.NewSQLiteStore(database.DB(), cfg.SessionTTL), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}

func main() {
	cfg := config.Load()

	// Ensure data directory exists
	if err := os.MkdirAll(cfg.DataPath, 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	// Initialize database
	database, err := db.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	// Ensure admin user exists
	if err := database.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to create admin user: %v", err)
	}
	log.Printf("Admin user ensured: %s", cfg.AdminUsername)

	sessions, err := openSessionStore(cfg, database)
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer sessions.Close()
	log.Printf("Session backend: %s (ttl %s)", cfg.SessionBackend, cfg.SessionTTL)

	translator := translate.NewService(translate.Config{
		DefaultEngine: cfg.TranslationEngine,
		GoogleURL:     cfg.GoogleTranslateURL,
		DeepLAPIKey:   cfg.DeepLAPIKey,
		DeepLAPIURL:   cfg.DeepLAPIURL,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
	}, database)
	log.Printf("Translation engine: %s (available: %v)", translator.Name(), translator.Engines())

	pages, err := web.NewRenderer(cfg.StylePath)
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	router := api.NewRouter(cfg, api.Services{
		Database:   database,
		JWT:        auth.NewJWTService(cfg.JWTSecret),
		Sessions:   sessions,
		Translator: translator,
		IntroGate:  session.NewIntroGate(cfg.IntroDuration, session.TimerScheduler{}),
		Pages:      pages,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Shutdown: %v", err)
		}
		close(done)
	}()

	log.Printf("Starting server on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server failed: %v", err)
	}
	<-done
}
