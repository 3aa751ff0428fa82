package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string

	LogLevel  string
	LogFormat string

	OTLPEndpoint     string
	OTLPProtocol     string
	TracingEnabled   bool
	TraceSampleRatio float64
}

// Load loads configuration from environment variables and .env file.
// Tracing defaults to on only in production.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:          getenv("APP_SERVICE", "invoicesheet"),
		AppVersion:       getenv("APP_VERSION", "0.1.0"),
		Environment:      getenv("ENVIRONMENT", "development"),
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		LogLevel:         strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:        strings.ToLower(getenv("LOG_FORMAT", "json")),
		OTLPEndpoint:     getenv("OTLP_ENDPOINT", "localhost:4317"),
		OTLPProtocol:     strings.ToLower(getenv("OTLP_PROTOCOL", "grpc")),
		TraceSampleRatio: getenvFloat("TRACE_SAMPLE_RATIO", 0.1),
	}
	cfg.TracingEnabled = getenvBool("TRACING_ENABLED", cfg.IsProduction())
	return cfg
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}
