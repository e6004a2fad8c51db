// Package config loads coinboard settings from flags, a YAML file and the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory = "memory"
	StorageRedis  = "redis"

	// GeneratedPath file written by the setup wizard.
	GeneratedPath = "config.gen.yaml"
)

// Config validated application settings.
type Config struct {
	HTTP      HTTPConfig
	Catalog   CatalogConfig
	Storage   StorageConfig
	Journal   JournalConfig
	Scheduler SchedulerConfig
	Log       LogConfig
}

type HTTPConfig struct {
	Addr        string
	TLSDomains  []string
	TLSCacheDir string
}

type CatalogConfig struct {
	Size int
	Seed uint64
}

type StorageConfig struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type JournalConfig struct {
	Dir      string
	Disabled bool
}

type SchedulerConfig struct {
	Resolution time.Duration
	Disabled   bool
}

type LogConfig struct {
	Level       zapcore.Level
	Development bool
}

// ConfigTmp raw YAML shape, converted into Config by Build.
type ConfigTmp struct {
	HTTP struct {
		Addr        string   `yaml:"addr"`
		TLSDomains  []string `yaml:"tls_domains,omitempty"`
		TLSCacheDir string   `yaml:"tls_cache_dir,omitempty"`
	} `yaml:"http"`
	Catalog struct {
		Size int    `yaml:"size"`
		Seed uint64 `yaml:"seed"`
	} `yaml:"catalog"`
	Storage struct {
		Backend       string `yaml:"backend"`
		RedisAddr     string `yaml:"redis_addr,omitempty"`
		RedisPassword string `yaml:"redis_password,omitempty"`
		RedisDB       int    `yaml:"redis_db,omitempty"`
		RedisPrefix   string `yaml:"redis_prefix,omitempty"`
	} `yaml:"storage"`
	Journal struct {
		Dir      string `yaml:"dir"`
		Disabled bool   `yaml:"disabled,omitempty"`
	} `yaml:"journal"`
	Scheduler struct {
		Resolution string `yaml:"resolution"`
		Disabled   bool   `yaml:"disabled,omitempty"`
	} `yaml:"scheduler"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development,omitempty"`
	} `yaml:"log"`
}

// Defaults returns the raw settings used when no config file is given.
func Defaults() ConfigTmp {
	var c ConfigTmp
	c.HTTP.Addr = ":8000"
	c.HTTP.TLSCacheDir = "cert-cache"
	c.Catalog.Size = 200
	c.Catalog.Seed = 1
	c.Storage.Backend = StorageMemory
	c.Storage.RedisAddr = "localhost:6379"
	c.Storage.RedisPrefix = "coinboard:"
	c.Journal.Dir = "./wal/journal"
	c.Scheduler.Resolution = "1s"
	c.Log.Level = "info"

	return c
}

// Flags command line options.
type Flags struct {
	ConfigPath string
	Setup      bool
	Addr       string
}

// ParseFlags parses command line arguments (without the program name).
func ParseFlags(args []string) (Flags, error) {
	var f Flags

	fs := flag.NewFlagSet("coinboard", flag.ContinueOnError)
	fs.StringVar(&f.ConfigPath, "config", "", "path to yaml config")
	fs.BoolVar(&f.Setup, "setup", false, "run the interactive configuration wizard")
	fs.StringVar(&f.Addr, "addr", "", "http listen address, overrides config and env")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return f, nil
}

// Get parses os.Args and loads the resulting configuration.
func Get() (Config, error) {
	f, err := ParseFlags(os.Args[1:])
	if err != nil {
		return Config{}, err
	}
	return Load(f)
}

// Load reads the YAML file named by the flags (defaults when absent), applies
// environment and flag overrides and validates the result.
func Load(f Flags) (Config, error) {
	raw := Defaults()

	if f.ConfigPath != "" {
		data, err := os.ReadFile(f.ConfigPath)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("incorrect yaml config %s: %w", f.ConfigPath, err)
		}
	}

	applyEnv(&raw, os.LookupEnv)
	if f.Addr != "" {
		raw.HTTP.Addr = f.Addr
	}

	return raw.Build()
}

func applyEnv(c *ConfigTmp, lookup func(string) (string, bool)) {
	if v, ok := lookup("COINBOARD_ADDR"); ok && v != "" {
		c.HTTP.Addr = v
	}
	if v, ok := lookup("COINBOARD_REDIS_ADDR"); ok && v != "" {
		c.Storage.RedisAddr = v
	}
	if v, ok := lookup("COINBOARD_REDIS_PASSWORD"); ok {
		c.Storage.RedisPassword = v
	}
	if v, ok := lookup("COINBOARD_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("COINBOARD_STORAGE"); ok && v != "" {
		c.Storage.Backend = v
	}
	if v, ok := lookup("COINBOARD_CATALOG_SEED"); ok && v != "" {
		if seed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Catalog.Seed = seed
		}
	}
}

// Build validates the raw settings and converts them into a Config.
func (c ConfigTmp) Build() (Config, error) {
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		return Config{}, fmt.Errorf("incorrect 'http.addr' param in yaml config: must not be empty")
	}
	if c.Catalog.Size <= 0 {
		return Config{}, fmt.Errorf("incorrect 'catalog.size' param in yaml config: must be positive, got %d", c.Catalog.Size)
	}

	backend := strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch backend {
	case StorageMemory:
	case StorageRedis:
		if c.Storage.RedisAddr == "" {
			return Config{}, fmt.Errorf("incorrect 'storage.redis_addr' param in yaml config: required for redis backend")
		}
	default:
		return Config{}, fmt.Errorf("incorrect 'storage.backend' param in yaml config: %q (must be memory or redis)", c.Storage.Backend)
	}

	resolution, err := time.ParseDuration(c.Scheduler.Resolution)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'scheduler.resolution' param in yaml config, error: %w", err)
	}
	if resolution <= 0 {
		return Config{}, fmt.Errorf("incorrect 'scheduler.resolution' param in yaml config: must be positive")
	}

	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return Config{}, fmt.Errorf("incorrect 'log.level' param in yaml config, error: %w", err)
	}

	return Config{
		HTTP: HTTPConfig{
			Addr:        c.HTTP.Addr,
			TLSDomains:  c.HTTP.TLSDomains,
			TLSCacheDir: c.HTTP.TLSCacheDir,
		},
		Catalog: CatalogConfig{Size: c.Catalog.Size, Seed: c.Catalog.Seed},
		Storage: StorageConfig{
			Backend:       backend,
			RedisAddr:     c.Storage.RedisAddr,
			RedisPassword: c.Storage.RedisPassword,
			RedisDB:       c.Storage.RedisDB,
			RedisPrefix:   c.Storage.RedisPrefix,
		},
		Journal:   JournalConfig{Dir: c.Journal.Dir, Disabled: c.Journal.Disabled},
		Scheduler: SchedulerConfig{Resolution: resolution, Disabled: c.Scheduler.Disabled},
		Log:       LogConfig{Level: level, Development: c.Log.Development},
	}, nil
}

// Write marshals raw settings into a YAML file.
func (c ConfigTmp) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
