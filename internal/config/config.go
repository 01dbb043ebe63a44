package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "PRESSMOOD"

// Config holds everything a single pipeline run needs.
type Config struct {
	Logging    LoggingConfig   `mapstructure:"logging"`
	Store      StoreConfig     `mapstructure:"store"`
	Crawler    CrawlerConfig   `mapstructure:"crawler"`
	Dedup      DedupConfig     `mapstructure:"dedup"`
	Sources    []SourceConfig  `mapstructure:"sources"`
	Publishers PublishersBlock `mapstructure:"publishers"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// StoreConfig points at the bbolt database file.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// CrawlerConfig tunes the fetch stage.
type CrawlerConfig struct {
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	HostDelay      time.Duration `mapstructure:"host_delay"`
	Workers        int           `mapstructure:"workers"`
	UserAgent      string        `mapstructure:"user_agent"`
	Enrich         bool          `mapstructure:"enrich"`
}

// DedupConfig extends the tracking-parameter denylist used for canonicalization.
type DedupConfig struct {
	TrackingParams []string `mapstructure:"tracking_params"`
}

// SourceConfig describes one listing endpoint and the parse strategy for it.
type SourceConfig struct {
	Name      string          `mapstructure:"name"`
	URL       string          `mapstructure:"url"`
	Strategy  string          `mapstructure:"strategy"`
	Selectors SelectorsConfig `mapstructure:"selectors"`
}

// SelectorsConfig carries the CSS selectors for the selector strategy.
type SelectorsConfig struct {
	Item    string `mapstructure:"item"`
	Title   string `mapstructure:"title"`
	Link    string `mapstructure:"link"`
	Snippet string `mapstructure:"snippet"`
	Date    string `mapstructure:"date"`
}

// PublishersBlock points at the sink declarations file.
type PublishersBlock struct {
	File string `mapstructure:"file"`
}

// Load reads the YAML config (path may be empty to use ./pressmood.yaml) and
// applies PRESSMOOD_* environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("store.path", "pressmood.db")
	v.SetDefault("crawler.request_timeout", 15*time.Second)
	v.SetDefault("crawler.host_delay", 2*time.Second)
	v.SetDefault("crawler.workers", 4)
	v.SetDefault("crawler.user_agent", "pressmood/1.0 (+https://github.com/pressmood/pressmood)")
	v.SetDefault("crawler.enrich", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("pressmood")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Crawler.Workers <= 0 {
		return fmt.Errorf("crawler.workers must be positive, got %d", c.Crawler.Workers)
	}
	if c.Crawler.RequestTimeout <= 0 {
		return fmt.Errorf("crawler.request_timeout must be positive")
	}
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if strings.TrimSpace(src.Name) == "" {
			return fmt.Errorf("sources[%d]: name is required", i)
		}
		if strings.TrimSpace(src.URL) == "" {
			return fmt.Errorf("source %q: url is required", src.Name)
		}
		if strings.TrimSpace(src.Strategy) == "" {
			return fmt.Errorf("source %q: strategy is required", src.Name)
		}
		if _, dup := seen[src.Name]; dup {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = struct{}{}
	}
	return nil
}
