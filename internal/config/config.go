package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	CatalogStoreMemory = "memory"
	CatalogStoreRedis  = "redis"

	defaultListen          = ":8000"
	defaultDownloadDir     = "downloads"
	defaultOutputTemplate  = "%(title)s.%(ext)s"
	defaultFormat          = "best"
	defaultShutdownTimeout = 10 * time.Second
	defaultCatalogKey      = "mediafetch:catalog"
	defaultRateRequests    = 30
	defaultRateWindow      = time.Minute
	defaultPageTitle       = "Video Downloader"
)

type CatalogConfig struct {
	Store    string `yaml:"store"`
	RedisURL string `yaml:"redis_url"`
	Key      string `yaml:"key"`
}

type RateLimitConfig struct {
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type PageConfig struct {
	Title      string `yaml:"title"`
	NoticeFile string `yaml:"notice_file"`
}

type FetcherConfig struct {
	DownloadDir    string
	OutputTemplate string
	Format         string
	Proxy          string
}

type Config struct {
	Listen          string          `yaml:"listen"`
	LogLevel        string          `yaml:"log_level"`
	DownloadDir     string          `yaml:"download_dir"`
	OutputTemplate  string          `yaml:"output_template"`
	Format          string          `yaml:"format"`
	Proxy           string          `yaml:"proxy"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	Catalog         CatalogConfig   `yaml:"catalog"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
	Page            PageConfig      `yaml:"page"`
}

func (c *Config) FetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		DownloadDir:    c.DownloadDir,
		OutputTemplate: c.OutputTemplate,
		Format:         c.Format,
		Proxy:          c.Proxy,
	}
}

// MustLoad reads the config file and panics on any error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

// Load reads .env (if present) into the environment, then parses the YAML file
// at path with ${VAR} references expanded.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot load .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("cannot unmarshal config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.DownloadDir == "" {
		c.DownloadDir = defaultDownloadDir
	}
	if c.OutputTemplate == "" {
		c.OutputTemplate = defaultOutputTemplate
	}
	if c.Format == "" {
		c.Format = defaultFormat
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = defaultShutdownTimeout
	}
	if c.Catalog.Store == "" {
		c.Catalog.Store = CatalogStoreMemory
	}
	if c.Catalog.Key == "" {
		c.Catalog.Key = defaultCatalogKey
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = defaultRateRequests
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = defaultRateWindow
	}
	if c.Page.Title == "" {
		c.Page.Title = defaultPageTitle
	}
}

func (c *Config) validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %s", c.LogLevel)
	}

	switch c.Catalog.Store {
	case CatalogStoreMemory:
	case CatalogStoreRedis:
		if c.Catalog.RedisURL == "" {
			return fmt.Errorf("catalog.redis_url is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown catalog store: %s", c.Catalog.Store)
	}

	if filepath.IsAbs(c.OutputTemplate) || filepath.Dir(c.OutputTemplate) != "." {
		return fmt.Errorf("output_template must be a file name template, got %s", c.OutputTemplate)
	}

	return nil
}
