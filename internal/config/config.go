package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the main application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Bot       BotConfig       `mapstructure:"bot"`
	Sources   SourcesConfig   `mapstructure:"sources"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Addr             string `mapstructure:"addr"`
	RequestTimeoutMS int    `mapstructure:"request_timeout_ms"` // outbound HTTP client timeout
}

type BotConfig struct {
	// Name is the reply identity; lines starting with it are broadcast queries.
	Name            string   `mapstructure:"name"`
	ShowURLs        bool     `mapstructure:"show_urls"`
	SourceTimeoutMS int      `mapstructure:"source_timeout_ms"`
	// Priority fixes the enumeration order of multi-source price lines.
	Priority []string `mapstructure:"priority"`
}

type SourcesConfig struct {
	Steam  SteamConfig  `mapstructure:"steam"`
	GOG    GOGConfig    `mapstructure:"gog"`
	Humble HumbleConfig `mapstructure:"humble"`
}

type SteamConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AppListURL string `mapstructure:"app_list_url"`
	DetailsURL string `mapstructure:"details_url"`
	Country    string `mapstructure:"country"`
}

type GOGConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Currency string `mapstructure:"currency"`
}

type HumbleConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// TemplatesConfig carries the response wording; empty fields use the built-in
// defaults of the formatter.
type TemplatesConfig struct {
	NotFound    string `mapstructure:"not_found"`
	SingleFound string `mapstructure:"single_found"`
	MultiFound  string `mapstructure:"multi_found"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// RequestTimeout converts the configured outbound timeout to a duration.
func (s ServerConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMS) * time.Millisecond
}

// SourceTimeout converts the per-source deadline to a duration.
func (b BotConfig) SourceTimeout() time.Duration {
	return time.Duration(b.SourceTimeoutMS) * time.Millisecond
}

// Load reads config.yaml (or the file at path when non-empty) and applies
// environment overrides. A missing file is fine: defaults plus environment
// are enough to run.
func Load(path string) (*Config, error) {
	_ = godotenv.Load() // best effort

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}
	v.SetEnvPrefix("PRICEBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	applyDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout_ms", 15000)

	v.SetDefault("bot.name", "pricebot")
	v.SetDefault("bot.show_urls", true)
	v.SetDefault("bot.source_timeout_ms", 10000)
	v.SetDefault("bot.priority", []string{"steam", "gog", "humble"})

	v.SetDefault("sources.steam.enabled", true)
	v.SetDefault("sources.steam.app_list_url", "https://api.steampowered.com/ISteamApps/GetAppList/v2/")
	v.SetDefault("sources.steam.details_url", "https://store.steampowered.com/api/appdetails")
	v.SetDefault("sources.steam.country", "us")

	v.SetDefault("sources.gog.enabled", true)
	v.SetDefault("sources.gog.endpoint", "https://embed.gog.com/games/ajax/filtered")
	v.SetDefault("sources.gog.currency", "USD")

	v.SetDefault("sources.humble.enabled", true)
	v.SetDefault("sources.humble.endpoint", "https://www.humblebundle.com/store/api/search")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func validate(cfg *Config) error {
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Bot.Name == "" {
		return fmt.Errorf("bot.name is required")
	}
	if cfg.Bot.SourceTimeoutMS <= 0 {
		return fmt.Errorf("bot.source_timeout_ms must be positive")
	}
	if !cfg.Sources.Steam.Enabled && !cfg.Sources.GOG.Enabled && !cfg.Sources.Humble.Enabled {
		return fmt.Errorf("at least one source must be enabled")
	}
	return nil
}
