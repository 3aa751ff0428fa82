package observability

import (
	"strings"

	"github.com/smallbiznis/invoicesheet/internal/config"
)

const defaultServiceName = "invoicesheet"

// Config is the observability view of the application configuration.
type Config struct {
	ServiceName string
	Environment string
	Version     string

	Log   LogSettings
	Trace TraceSettings
}

// LogSettings selects the zap level and encoding.
type LogSettings struct {
	Level  string
	Format string
}

// TraceSettings selects the OTLP exporter. A disabled tracer still hands out
// spans, it just never samples them.
type TraceSettings struct {
	Enabled     bool
	Endpoint    string
	Protocol    string
	SampleRatio float64
}

func LoadConfig(cfg config.Config) Config {
	name := strings.TrimSpace(cfg.AppName)
	if name == "" {
		name = defaultServiceName
	}
	level := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if level == "" {
		level = "info"
	}

	return Config{
		ServiceName: name,
		Environment: strings.TrimSpace(cfg.Environment),
		Version:     strings.TrimSpace(cfg.AppVersion),
		Log: LogSettings{
			Level:  level,
			Format: strings.ToLower(strings.TrimSpace(cfg.LogFormat)),
		},
		Trace: TraceSettings{
			Enabled:     cfg.TracingEnabled,
			Endpoint:    strings.TrimSpace(cfg.OTLPEndpoint),
			Protocol:    strings.ToLower(strings.TrimSpace(cfg.OTLPProtocol)),
			SampleRatio: cfg.TraceSampleRatio,
		},
	}
}

// Debug reports whether verbose gin output and error stacks are wanted.
func (c Config) Debug() bool {
	if c.Log.Level == "debug" {
		return true
	}
	switch strings.ToLower(c.Environment) {
	case "dev", "development", "local", "test":
		return true
	}
	return false
}
