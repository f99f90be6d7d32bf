package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"vendoreval-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port                       string
	CORSAllowOrigin            []string
	DatabaseURL                string
	Env                        string
	LogLevel                   string
	SentryDSN                  string
	RunMigrations              bool
	RecommendationBatchSize    int
	ReconcileLookupConcurrency int
	DirectoryCacheTTL          time.Duration
	SubmitRatePerSec           float64
	SubmitBurst                int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("RECOMMENDATION_BATCH_SIZE", 10)
	v.SetDefault("RECONCILE_LOOKUP_CONCURRENCY", 4)
	v.SetDefault("DIRECTORY_CACHE_TTL", "30s")
	v.SetDefault("SUBMIT_RATE_PER_SEC", 2.0)
	v.SetDefault("SUBMIT_BURST", 10)
}

func fromViper(v *viper.Viper) Config {
	env := normalizeEnv(v.GetString("ENV"))
	dbURL := strings.TrimSpace(v.GetString("DATABASE_URL"))

	if env == "production" && dbURL == "" {
		telemetry.Error("config.invalid", map[string]any{"reason": "DATABASE_URL is required in production"})
	}

	batch := v.GetInt("RECOMMENDATION_BATCH_SIZE")
	if batch <= 0 {
		batch = 10
	}
	concurrency := v.GetInt("RECONCILE_LOOKUP_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = 1
	}

	return Config{
		Port:                       v.GetString("PORT"),
		CORSAllowOrigin:            splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		DatabaseURL:                dbURL,
		Env:                        env,
		LogLevel:                   v.GetString("LOG_LEVEL"),
		SentryDSN:                  v.GetString("SENTRY_DSN"),
		RunMigrations:              v.GetBool("RUN_MIGRATIONS"),
		RecommendationBatchSize:    batch,
		ReconcileLookupConcurrency: concurrency,
		DirectoryCacheTTL:          v.GetDuration("DIRECTORY_CACHE_TTL"),
		SubmitRatePerSec:           v.GetFloat64("SUBMIT_RATE_PER_SEC"),
		SubmitBurst:                v.GetInt("SUBMIT_BURST"),
	}
}

// IsDevLike reports whether the environment allows in-memory fallbacks.
func (c Config) IsDevLike() bool {
	switch c.Env {
	case "dev", "local":
		return true
	default:
		return false
	}
}

// loadEnvFiles loads KEY=VALUE files that exist; missing files are ignored.
// Variables already present in the environment win.
func loadEnvFiles(paths ...string) {
	for _, path := range paths {
		_ = godotenv.Load(path)
	}
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
