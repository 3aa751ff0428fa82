package config

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// RenderSettings tune document assembly. They never change the geometry of
// a format.
type RenderSettings struct {
	Workers      int
	Title        string
	Author       string
	Creator      string
	VerifyOutput bool
}

const maxRenderWorkers = 64

func DefaultRenderSettings() RenderSettings {
	return RenderSettings{
		Workers:      4,
		Title:        "Invoices",
		Author:       "",
		Creator:      "invoicesheet",
		VerifyOutput: true,
	}
}

var defaultRenderConfigPaths = []string{
	"/var/lib/invoicesheet/config", // Volume-mounted config
	"/etc/invoicesheet",            // System config
	".",                            // Current directory (dev mode)
}

type RenderSettingsHolder struct {
	current atomic.Value // holds RenderSettings
}

// NewRenderSettingsHolder loads render.yml from the default locations and
// keeps it up to date while the file changes.
func NewRenderSettingsHolder(log *zap.Logger) (*RenderSettingsHolder, error) {
	return LoadRenderSettings(log, defaultRenderConfigPaths...)
}

// LoadRenderSettings reads the "render" key of render.yml from the first of
// paths that has one, falling back to defaults. Environment variables such
// as INVOICESHEET_RENDER_WORKERS override file values.
func LoadRenderSettings(log *zap.Logger, paths ...string) (*RenderSettingsHolder, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("config.render")

	v := viper.New()
	v.SetConfigName("render")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("INVOICESHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultRenderSettings()
	v.SetDefault("render.workers", defaults.Workers)
	v.SetDefault("render.title", defaults.Title)
	v.SetDefault("render.author", defaults.Author)
	v.SetDefault("render.creator", defaults.Creator)
	v.SetDefault("render.verify_output", defaults.VerifyOutput)

	fileFound := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		fileFound = false
	}

	cfg := readRenderSettings(v)
	if err := validateRenderSettings(cfg); err != nil {
		return nil, err
	}

	holder := &RenderSettingsHolder{}
	holder.current.Store(cfg)

	if fileFound {
		v.WatchConfig()
		v.OnConfigChange(func(e fsnotify.Event) {
			updated := readRenderSettings(v)
			if err := validateRenderSettings(updated); err != nil {
				log.Warn("invalid render settings ignored", zap.Error(err))
				return
			}
			holder.current.Store(updated)
			log.Info("render settings reloaded", zap.String("file", e.Name))
		})
	}

	return holder, nil
}

// NewStaticRenderSettings returns a holder that never reloads.
func NewStaticRenderSettings(cfg RenderSettings) *RenderSettingsHolder {
	holder := &RenderSettingsHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *RenderSettingsHolder) Get() RenderSettings {
	if h == nil {
		return DefaultRenderSettings()
	}
	return h.current.Load().(RenderSettings)
}

// readRenderSettings resolves each key on its own so environment overrides
// apply to nested keys too.
func readRenderSettings(v *viper.Viper) RenderSettings {
	return RenderSettings{
		Workers:      v.GetInt("render.workers"),
		Title:        v.GetString("render.title"),
		Author:       v.GetString("render.author"),
		Creator:      v.GetString("render.creator"),
		VerifyOutput: v.GetBool("render.verify_output"),
	}
}

func validateRenderSettings(cfg RenderSettings) error {
	if cfg.Workers < 1 || cfg.Workers > maxRenderWorkers {
		return fmt.Errorf("render.workers must be between 1 and %d", maxRenderWorkers)
	}
	if strings.TrimSpace(cfg.Creator) == "" {
		return errors.New("render.creator cannot be empty")
	}
	return nil
}
