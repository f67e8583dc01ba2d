// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/subosito/gotenv"
)

// Provider names accepted by AI_PROVIDER.
const (
	ProviderGateway = "gateway"
	ProviderGemini  = "gemini"
)

// Extractor names accepted by TEXT_EXTRACTOR.
const (
	ExtractorRaw  = "raw"
	ExtractorTika = "tika"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// AIProvider selects the upstream: "gateway" (OpenAI-compatible chat
	// completions) or "gemini" (Gemini API direct).
	AIProvider string `env:"AI_PROVIDER" envDefault:"gateway"`
	// AIGatewayAPIKey and AIGatewayURL are required at request time; the
	// server starts without them but every analysis fails with 500.
	AIGatewayAPIKey  string        `env:"AI_GATEWAY_API_KEY"`
	AIGatewayURL     string        `env:"AI_GATEWAY_URL"`
	AIGatewayModel   string        `env:"AI_GATEWAY_MODEL" envDefault:"google/gemini-2.5-flash"`
	AIGatewayTimeout time.Duration `env:"AI_GATEWAY_TIMEOUT" envDefault:"60s"`

	// TextExtractor is used by the multipart upload endpoint only.
	TextExtractor  string        `env:"TEXT_EXTRACTOR" envDefault:"raw"`
	TikaURL        string        `env:"TIKA_URL" envDefault:"http://tika:9998"`
	TikaTimeout    time.Duration `env:"TIKA_TIMEOUT" envDefault:"15s"`
	TikaMaxElapsed time.Duration `env:"TIKA_MAX_ELAPSED" envDefault:"20s"`

	// RedisURL enables the shared rate limiter when set.
	RedisURL        string `env:"REDIS_URL"`
	RateLimitPerMin int    `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`

	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"resume-analyzer"`

	MaxUploadMB int64 `env:"MAX_UPLOAD_MB" envDefault:"20"`
	// MaxBodyMB caps the JSON analysis body. Binary uploads re-encoded as
	// JSON strings grow considerably, so this is well above MaxUploadMB.
	MaxBodyMB        int64  `env:"MAX_BODY_MB" envDefault:"128"`
	CORSAllowOrigins string `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`

	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"60s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"75s"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are skipped.
func LoadDotEnv(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := gotenv.Load(f); err != nil {
			slog.Warn("dotenv load failed", slog.String("file", f), slog.Any("error", err))
			continue
		}
		slog.Debug("dotenv loaded", slog.String("file", f))
	}
}

// MissingGatewaySettings returns the names of the required upstream
// variables that are empty, in a stable order. The Gemini provider has a
// default endpoint, so only the key is required for it.
func (c Config) MissingGatewaySettings() []string {
	var missing []string
	if strings.TrimSpace(c.AIGatewayAPIKey) == "" {
		missing = append(missing, "AI_GATEWAY_API_KEY")
	}
	if c.AIProvider != ProviderGemini && strings.TrimSpace(c.AIGatewayURL) == "" {
		missing = append(missing, "AI_GATEWAY_URL")
	}
	return missing
}

// MaxUploadBytes is the upload cap in bytes; 20 MB when unset.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 20 * 1024 * 1024
	}
	return c.MaxUploadMB * 1024 * 1024
}

// MaxBodyBytes is the JSON body cap in bytes; 128 MB when unset.
func (c Config) MaxBodyBytes() int64 {
	if c.MaxBodyMB <= 0 {
		return 128 * 1024 * 1024
	}
	return c.MaxBodyMB * 1024 * 1024
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }

// IsTest reports whether the app is running in test mode.
func (c Config) IsTest() bool { return strings.ToLower(c.AppEnv) == "test" }
