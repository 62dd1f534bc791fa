package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"intake-chatbot/internal/config"
	httpserver "intake-chatbot/internal/http"
	"intake-chatbot/internal/llm"
	"intake-chatbot/internal/logging"
	"intake-chatbot/internal/metrics"
	"intake-chatbot/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	var profiles store.ProfileStore
	switch cfg.StorageBackend {
	case "memory":
		profiles = store.NewMemory()
	default:
		if cfg.DatabaseURL == "" {
			log.Fatal().Msg("DATABASE_URL must be set")
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open database")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		if err := store.Migrate(context.Background(), db); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		profiles = store.NewPostgres(db, log)
	}

	var client llm.Client
	switch cfg.LLMBackend {
	case "relay":
		client = llm.NewRelayClient(cfg.RelayURL)
	case "script":
		client = llm.NewScriptedClient()
	default:
		if cfg.GroqAPIKey == "" {
			log.Fatal().Msg("GROQ_API_KEY must be set")
		}
		client = llm.NewOpenAIClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.Model)
	}

	srv := httpserver.NewServer(profiles, client, metrics.New(), log)

	addr := ":" + cfg.Port
	log.Info().
		Str("addr", addr).
		Str("storage", cfg.StorageBackend).
		Str("llm", cfg.LLMBackend).
		Msg("listening")
	if err := http.ListenAndServe(addr, srv.Router()); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
