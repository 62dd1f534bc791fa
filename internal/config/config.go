package config

import "os"

// Config collects every runtime setting. All values come from the
// environment; the env names for the upstream provider match the ones the
// deployment already uses.
type Config struct {
	Port string

	StorageBackend string // "postgres" or "memory"
	DatabaseURL    string

	LLMBackend  string // "groq", "relay", or "script"
	GroqAPIKey  string
	GroqBaseURL string
	Model       string
	RelayURL    string

	LogLevel  string
	LogPretty bool
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "TRUE"
}

// Load reads all env vars and builds the config.
func Load() *Config {
	cfg := &Config{
		Port: getEnv("PORT", "8080"),

		StorageBackend: getEnv("STORAGE_BACKEND", "postgres"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		LLMBackend:  getEnv("LLM_BACKEND", "groq"),
		GroqAPIKey:  getEnv("GROQ_API_KEY", ""),
		GroqBaseURL: getEnv("GROQ_API_URL", "https://api.groq.com/openai/v1"),
		Model:       getEnv("GROQ_MODEL", ""),
		RelayURL:    getEnv("RELAY_URL", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getBoolEnv("LOG_PRETTY", false),
	}

	// A configured relay URL implies the relay backend.
	if cfg.RelayURL != "" && cfg.LLMBackend == "groq" {
		cfg.LLMBackend = "relay"
	}
	return cfg
}
