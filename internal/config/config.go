package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var exeDirCache string

// getExecutableDir returns the directory where the executable is located
func getExecutableDir() string {
	if exeDirCache != "" {
		return exeDirCache
	}
	execPath, err := os.Executable()
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		exeDirCache = "."
		return exeDirCache
	}
	exeDirCache = filepath.Dir(execPath)
	return exeDirCache
}

type Config struct {
	Logging  LoggingConfig   `yaml:"logging"`
	Fetcher  FetcherConfig   `yaml:"fetcher"`
	Services []ServiceConfig `yaml:"services,omitempty"`
	Browser  BrowserConfig   `yaml:"browser,omitempty"`
	Web      WebConfig       `yaml:"web,omitempty"`
	Output   OutputConfig    `yaml:"output,omitempty"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// FetcherConfig controls the outbound HTTP client.
type FetcherConfig struct {
	TimeoutSeconds    int      `yaml:"timeout_seconds"`
	MaxAttempts       int      `yaml:"max_attempts"`
	BackoffMinMillis  int      `yaml:"backoff_min_ms"`
	BackoffMaxMillis  int      `yaml:"backoff_max_ms"`
	RateIntervalMilli int      `yaml:"rate_interval_ms"` // default per-service minimum interval
	Proxy             string   `yaml:"proxy,omitempty"`
	UserAgents        []string `yaml:"user_agents,omitempty"`
}

// ServiceConfig tunes a single extractor service.
type ServiceConfig struct {
	Name              string `yaml:"name"`
	Enabled           bool   `yaml:"enabled"`
	RateIntervalMilli int    `yaml:"rate_interval_ms,omitempty"`
}

// BrowserConfig configures the headless renderer used for
// JavaScript-heavy targets.
type BrowserConfig struct {
	Enabled bool   `yaml:"enabled"`
	Bin     string `yaml:"bin,omitempty"` // browser executable; autodetected when empty
}

type WebConfig struct {
	Port int `yaml:"port"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir,omitempty"`
	Format string `yaml:"format"` // "text", "json" or "csv"
}

// DefaultUserAgents is the rotation pool used when the config provides none.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.1.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/92.0.4515.107 Safari/537.36",
}

// DefaultServiceNames lists every extractor registered out of the box.
var DefaultServiceNames = []string{
	"Gab",
	"TikTok",
	"LinkedIn",
	"Reddit",
	"Tumblr",
	"ImageSearch",
	"URLExpander",
	"UsernameSweep",
	"TrainerCode",
}

func DefaultConfig() *Config {
	cfg := &Config{
		Logging: LoggingConfig{
			Level: "info",
		},
		Fetcher: FetcherConfig{
			TimeoutSeconds:    30,
			MaxAttempts:       3,
			BackoffMinMillis:  1000,
			BackoffMaxMillis:  3000,
			RateIntervalMilli: 1000,
			UserAgents:        DefaultUserAgents,
		},
		Browser: BrowserConfig{
			Enabled: false,
		},
		Web: WebConfig{
			Port: 18080,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
	for _, name := range DefaultServiceNames {
		cfg.Services = append(cfg.Services, ServiceConfig{Name: name, Enabled: true})
	}
	return cfg
}

func ConfigPath() string {
	return filepath.Join(getExecutableDir(), ".osprey.yaml")
}

func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath reads the config file at path, merged over defaults.
// A missing file is not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if len(cfg.Fetcher.UserAgents) == 0 {
		cfg.Fetcher.UserAgents = DefaultUserAgents
	}

	return cfg, nil
}

func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0600)
}

// ServiceEnabled reports whether the named service should be registered.
// Services absent from the config default to enabled.
func (c *Config) ServiceEnabled(name string) bool {
	for _, s := range c.Services {
		if s.Name == name {
			return s.Enabled
		}
	}
	return true
}

// ServiceRateInterval returns the per-service minimum request interval in
// milliseconds, falling back to the fetcher default.
func (c *Config) ServiceRateInterval(name string) int {
	for _, s := range c.Services {
		if s.Name == name && s.RateIntervalMilli > 0 {
			return s.RateIntervalMilli
		}
	}
	return c.Fetcher.RateIntervalMilli
}
