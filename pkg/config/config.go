package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultArchiveBaseURL is the static archive mirror serving profiles, posts and assets
	DefaultArchiveBaseURL = "https://archive.vine.co"

	// DefaultAPIBaseURL is the live service used for vanity lookups and user info
	DefaultAPIBaseURL = "https://vine.co"

	// DefaultConcurrentPosts is the size of the post archiving pool
	DefaultConcurrentPosts = 5

	envPrefix = "VINEARCHIVE_"
)

// Config holds all configuration options for the archiver
type Config struct {
	Vine     VineConfig     `yaml:"vine" json:"vine"`
	Download DownloadConfig `yaml:"download" json:"download"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Notify   NotifyConfig   `yaml:"notifications" json:"notifications"`
}

// VineConfig holds the remote endpoints
type VineConfig struct {
	ArchiveBaseURL string `yaml:"archive_base_url" json:"archive_base_url" validate:"required|fullUrl"`
	APIBaseURL     string `yaml:"api_base_url" json:"api_base_url" validate:"required|fullUrl"`
	UserAgent      string `yaml:"user_agent" json:"user_agent"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	ConcurrentPosts int           `yaml:"concurrent_posts" json:"concurrent_posts" validate:"required|min:1|max:20"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	BaseDirectory string `yaml:"base_directory" json:"base_directory" validate:"required"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level" validate:"required|in:debug,info,warn,error,disabled"`
	File    string `yaml:"file" json:"file"`
	NoColor bool   `yaml:"no_color" json:"no_color"`
}

// MetricsConfig controls the per-run metrics textfile
type MetricsConfig struct {
	Textfile string `yaml:"textfile" json:"textfile"`
}

// NotifyConfig controls the desktop notification sent when a run ends
type NotifyConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Vine: VineConfig{
			ArchiveBaseURL: DefaultArchiveBaseURL,
			APIBaseURL:     DefaultAPIBaseURL,
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Download: DownloadConfig{
			ConcurrentPosts: DefaultConcurrentPosts,
			Timeout:         60 * time.Second,
		},
		Output: OutputConfig{
			BaseDirectory: ".",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from VINEARCHIVE_* environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(envPrefix + "ARCHIVE_BASE_URL"); v != "" {
		c.Vine.ArchiveBaseURL = v
	}
	if v := os.Getenv(envPrefix + "API_BASE_URL"); v != "" {
		c.Vine.APIBaseURL = v
	}
	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.Vine.UserAgent = v
	}
	if v := os.Getenv(envPrefix + "OUTPUT_DIR"); v != "" {
		c.Output.BaseDirectory = v
	}
	if v := os.Getenv(envPrefix + "CONCURRENT_POSTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sCONCURRENT_POSTS: %w", envPrefix, err)
		}
		c.Download.ConcurrentPosts = n
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		c.Download.Timeout = d
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv(envPrefix + "METRICS_TEXTFILE"); v != "" {
		c.Metrics.Textfile = v
	}
	if v := os.Getenv(envPrefix + "NOTIFY"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sNOTIFY: %w", envPrefix, err)
		}
		c.Notify.Enabled = enabled
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file.
// An empty path searches the default locations; finding nothing is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// FindConfigFile returns the first config file found in the standard
// locations, or "" when there is none
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".vinearchive.yaml",
		".vinearchive.yml",
		filepath.Join(home, ".config", "vinearchive", "config.yaml"),
		filepath.Join(home, ".vinearchive.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	sections := []interface{}{&c.Vine, &c.Download, &c.Output, &c.Logging}
	for _, section := range sections {
		v := validate.Struct(section)
		if !v.Validate() {
			errs = append(errs, v.Errors)
		}
	}

	if c.Download.Timeout < 0 {
		errs = append(errs, errors.New("download timeout cannot be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags applies flag values, keyed by flag name
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Output.BaseDirectory = v
	}
	// Out-of-range values are left for Validate to reject
	if v, ok := flags["concurrent"].(int); ok {
		c.Download.ConcurrentPosts = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok {
		c.Download.Timeout = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v, ok := flags["log-file"].(string); ok && v != "" {
		c.Logging.File = v
	}
	if v, ok := flags["no-color"].(bool); ok && v {
		c.Logging.NoColor = true
	}
	if v, ok := flags["metrics-textfile"].(string); ok && v != "" {
		c.Metrics.Textfile = v
	}
	if v, ok := flags["notify"].(bool); ok {
		c.Notify.Enabled = v
	}
	if v, ok := flags["archive-url"].(string); ok && v != "" {
		c.Vine.ArchiveBaseURL = v
	}
	if v, ok := flags["api-url"].(string); ok && v != "" {
		c.Vine.APIBaseURL = v
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment > .env files > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".vinearchive.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.MergeCommandLineFlags(flags)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
