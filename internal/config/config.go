// Package config loads application settings from defaults, an optional
// yaml file, a .env file, and VISIONCHECK_-prefixed environment
// variables, with hot reload of the yaml file.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config is the top-level configuration structure.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers"`
	Storage   StorageConfig   `mapstructure:"storage"`
	History   HistoryConfig   `mapstructure:"history"`
	Report    ReportConfig    `mapstructure:"report"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ProviderConfig holds one report provider's settings. A provider with
// no API key is skipped at wiring time.
type ProviderConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Weight      float64 `mapstructure:"weight"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// ProvidersConfig holds the report generator ensemble settings.
type ProvidersConfig struct {
	Gemini   ProviderConfig `mapstructure:"gemini"`
	Minimax  ProviderConfig `mapstructure:"minimax"`
	Deepseek ProviderConfig `mapstructure:"deepseek"`
}

// StorageConfig selects the history persistence backend.
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // memory, file or sqlite
	Path    string `mapstructure:"path"`
}

// HistoryConfig holds result-history settings.
type HistoryConfig struct {
	RecentForReport int `mapstructure:"recent_for_report"`
}

// ReportConfig holds report pipeline settings.
type ReportConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Locale  string        `mapstructure:"locale"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	// Keys need a default for AutomaticEnv to surface them through
	// Unmarshal, so secrets default to empty strings.
	v.SetDefault("providers.gemini.api_key", "")
	v.SetDefault("providers.minimax.api_key", "")
	v.SetDefault("providers.deepseek.api_key", "")

	v.SetDefault("providers.gemini.model", "gemini-2.5-pro")
	v.SetDefault("providers.gemini.weight", 0.5)
	v.SetDefault("providers.gemini.temperature", 0.3)
	v.SetDefault("providers.gemini.max_tokens", 2048)

	v.SetDefault("providers.minimax.base_url", "https://api.minimax.chat/v1")
	v.SetDefault("providers.minimax.model", "abab6.5s-chat")
	v.SetDefault("providers.minimax.weight", 0.3)
	v.SetDefault("providers.minimax.temperature", 0.3)
	v.SetDefault("providers.minimax.max_tokens", 2048)

	v.SetDefault("providers.deepseek.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("providers.deepseek.model", "deepseek-chat")
	v.SetDefault("providers.deepseek.weight", 0.2)
	v.SetDefault("providers.deepseek.temperature", 0.3)
	v.SetDefault("providers.deepseek.max_tokens", 2048)

	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "data/visioncheck.db")

	v.SetDefault("history.recent_for_report", 5)

	v.SetDefault("report.timeout", "60s")
	v.SetDefault("report.locale", "en")

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)
}

// Load reads configuration rooted at projectRoot. The yaml file is
// optional; a change to it is re-read in place, guarded by the
// returned holder.
func Load(projectRoot string, log *zap.Logger) (*Holder, error) {
	// Pull a .env file into the process environment first so viper's
	// env binding sees it. Missing files are fine.
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(filepath.Join(projectRoot, "config"))
	v.AddConfigPath(projectRoot)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("VISIONCHECK") // e.g. VISIONCHECK_STORAGE_BACKEND
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	holder := &Holder{}
	if err := holder.reload(v); err != nil {
		return nil, err
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("configuration file changed, reloading", zap.String("file", e.Name))
		if err := holder.reload(v); err != nil {
			log.Error("error reloading configuration", zap.Error(err))
		}
	})

	log.Info("configuration loaded",
		zap.String("storage", holder.Get().Storage.Backend))
	return holder, nil
}

// Holder hands out the current configuration snapshot. Reload swaps
// the snapshot atomically so long-lived components read a consistent
// view.
type Holder struct {
	mu  sync.RWMutex
	cfg *Config
}

// Get returns the current configuration.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

func (h *Holder) reload(v *viper.Viper) error {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	h.mu.Lock()
	h.cfg = &cfg
	h.mu.Unlock()
	return nil
}
