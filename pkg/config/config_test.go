package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DefaultArchiveBaseURL, cfg.Vine.ArchiveBaseURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Vine.APIBaseURL)
	assert.Equal(t, 5, cfg.Download.ConcurrentPosts)
	assert.Equal(t, ".", cfg.Output.BaseDirectory)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("VINEARCHIVE_ARCHIVE_BASE_URL", "http://127.0.0.1:9000")
	t.Setenv("VINEARCHIVE_OUTPUT_DIR", "/tmp/vines")
	t.Setenv("VINEARCHIVE_CONCURRENT_POSTS", "8")
	t.Setenv("VINEARCHIVE_TIMEOUT", "15s")
	t.Setenv("VINEARCHIVE_LOG_LEVEL", "debug")
	t.Setenv("VINEARCHIVE_NOTIFY", "true")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://127.0.0.1:9000", cfg.Vine.ArchiveBaseURL)
	assert.Equal(t, "/tmp/vines", cfg.Output.BaseDirectory)
	assert.Equal(t, 8, cfg.Download.ConcurrentPosts)
	assert.Equal(t, 15*time.Second, cfg.Download.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Notify.Enabled)
}

func TestLoadFromEnvInvalidNumber(t *testing.T) {
	t.Setenv("VINEARCHIVE_CONCURRENT_POSTS", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
vine:
  archive_base_url: "http://localhost:8081"
download:
  concurrent_posts: 2
output:
  base_directory: "./archive"
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://localhost:8081", cfg.Vine.ArchiveBaseURL)
	assert.Equal(t, DefaultAPIBaseURL, cfg.Vine.APIBaseURL)
	assert.Equal(t, 2, cfg.Download.ConcurrentPosts)
	assert.Equal(t, "./archive", cfg.Output.BaseDirectory)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("download: [unterminated"), 0644))
	assert.Error(t, cfg.LoadFromFile(bad))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero workers", func(c *Config) { c.Download.ConcurrentPosts = 0 }, true},
		{"too many workers", func(c *Config) { c.Download.ConcurrentPosts = 50 }, true},
		{"negative timeout", func(c *Config) { c.Download.Timeout = -time.Second }, true},
		{"no timeout", func(c *Config) { c.Download.Timeout = 0 }, false},
		{"empty output", func(c *Config) { c.Output.BaseDirectory = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"relative archive url", func(c *Config) { c.Vine.ArchiveBaseURL = "archive.vine.co" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"output":           "/data",
		"concurrent":       3,
		"timeout":          5 * time.Second,
		"log-level":        "DEBUG",
		"no-color":         true,
		"metrics-textfile": "/var/lib/node_exporter/vinearchive.prom",
	})

	assert.Equal(t, "/data", cfg.Output.BaseDirectory)
	assert.Equal(t, 3, cfg.Download.ConcurrentPosts)
	assert.Equal(t, 5*time.Second, cfg.Download.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.NoColor)
	assert.Equal(t, "/var/lib/node_exporter/vinearchive.prom", cfg.Metrics.Textfile)
}

func TestMarshalledConfigLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := DefaultConfig()
	cfg.Download.ConcurrentPosts = 7
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, loaded.Download.ConcurrentPosts)
	assert.Equal(t, 60*time.Second, loaded.Download.Timeout)
}

func TestLoadRejectsOutOfRangeConcurrentFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output:\n  base_directory: .\n"), 0644))

	for _, n := range []int{0, -3, 21} {
		_, err := Load(path, map[string]interface{}{"concurrent": n})
		assert.ErrorContains(t, err, "validation failed", "concurrent=%d", n)
	}

	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{"concurrent": 0})
	assert.Equal(t, 0, cfg.Download.ConcurrentPosts)
	assert.Error(t, cfg.Validate())
}
