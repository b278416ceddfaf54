package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"vinearchive/pkg/config"
	"vinearchive/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage vinearchive configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (VINEARCHIVE_*)
  - .env files
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file is created as '.vinearchive.yaml' in the current directory unless a
different path is given with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Required fields and URL formats
  - Value ranges
  - Whether the output and log directories can be created`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# vinearchive configuration file
#
# Every option can also be set with an environment variable prefixed with
# VINEARCHIVE_, for example VINEARCHIVE_OUTPUT_DIR or VINEARCHIVE_LOG_LEVEL.

# Remote endpoints
vine:
  # Static archive serving profile and post records and media
  archive_base_url: "https://archive.vine.co"

  # Live service used for vanity lookups and follower counts
  api_base_url: "https://vine.co"

  # User agent sent with every request (optional)
  user_agent: ""

# Download behaviour
download:
  # Number of posts archived at the same time
  # Range: 1-20
  concurrent_posts: 5

  # Timeout for a single HTTP request, 0 disables it
  timeout: 60s

# Where user folders are created
output:
  base_directory: "."

# Logging
logging:
  # debug, info, warn, error or disabled
  level: "info"

  # Write JSON logs to this file instead of the console (optional)
  file: ""

  no_color: false

# Run metrics
metrics:
  # Prometheus textfile written at the end of each run (optional),
  # e.g. /var/lib/node_exporter/textfile_collector/vinearchive.prom
  textfile: ""

# Desktop notification when a run ends (notify-send, osascript or PowerShell)
notifications:
  enabled: false
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := configFile
	if configPath == "" {
		configPath = ".vinearchive.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists: %s", configPath)
	}

	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created")
	ui.PrintInfo("Path", configPath)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, commandLineFlags(cmd))
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(out)
	fmt.Fprint(out, string(data))

	// Show configuration sources
	source := configFile
	if source == "" {
		source = config.FindConfigFile()
	}
	if source == "" {
		source = "(none found)"
	}
	fmt.Fprintln(out, "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(out, "1. Command line flags")
	fmt.Fprintln(out, "2. Environment variables (VINEARCHIVE_*)")
	fmt.Fprintln(out, "3. .env files")
	fmt.Fprintf(out, "4. Configuration file: %s\n", source)
	fmt.Fprintln(out, "5. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return fmt.Errorf("no configuration file found, specify one with --config")
	}

	ui.PrintInfo("Validating configuration", path)

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration has errors:\n%w", err)
	}

	var problems []string

	// Check paths
	if err := os.MkdirAll(cfg.Output.BaseDirectory, 0755); err != nil {
		problems = append(problems, fmt.Sprintf("cannot create output directory: %v", err))
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}
	if cfg.Metrics.Textfile != "" {
		if _, err := os.Stat(filepath.Dir(cfg.Metrics.Textfile)); err != nil {
			problems = append(problems, fmt.Sprintf("metrics textfile directory is not accessible: %v", err))
		}
	}

	if len(problems) > 0 {
		for _, p := range problems {
			ui.PrintWarning("  - " + p)
		}
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	}

	ui.PrintSuccess("Configuration is valid")
	ui.PrintInfo("  Output directory", cfg.Output.BaseDirectory)
	ui.PrintInfo("  Concurrent posts", fmt.Sprintf("%d", cfg.Download.ConcurrentPosts))
	ui.PrintInfo("  Timeout", cfg.Download.Timeout.String())
	ui.PrintInfo("  Log level", cfg.Logging.Level)
	return nil
}
