package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string
	CacheBackend    string
	CacheDBPath     string
	CacheTTL        time.Duration
	DatabaseURL     string
	VizDir          string
	LLMProvider     string
	LLMModel        string
	RateLimitRPS    float64
	RateLimitBurst  int
	AzureAPIKey     string
	AzureEndpoint   string
	AzureAPIVersion string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	backend := normalizeCacheBackend(getEnv("CACHE_BACKEND", "sqlite"))
	if backend == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required for the postgres cache backend, falling back to sqlite")
		backend = "sqlite"
	}

	ttl := 72 * time.Hour
	if raw := strings.TrimSpace(os.Getenv("CACHE_TTL")); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil && parsed > 0 {
			ttl = parsed
		} else {
			log.Printf("CACHE_TTL invalid duration %q, using default", raw)
		}
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "*")),
		Env:             env,
		CacheBackend:    backend,
		CacheDBPath:     getEnv("CACHE_DB_PATH", "cache.db"),
		CacheTTL:        ttl,
		DatabaseURL:     dbURL,
		VizDir:          getEnv("VIZ_DIR", "visualizations"),
		LLMProvider:     getEnv("LLM_PROVIDER", "azure"),
		RateLimitRPS:    getEnvFloat("RATE_LIMIT_RPS", 1),
		RateLimitBurst:  getEnvInt("RATE_LIMIT_BURST", 5),
		LLMModel:        getEnv("LLM_MODEL", os.Getenv("DEPLOYMENT_NAME")),
		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIVersion: getEnv("AZURE_API_VERSION", ""),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil || val <= 0 {
		log.Printf("%s invalid value %q, using default", key, raw)
		return def
	}
	return val
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		log.Printf("%s invalid value %q, using default", key, raw)
		return def
	}
	return val
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeCacheBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "memory":
		return "memory"
	default:
		return "sqlite"
	}
}
