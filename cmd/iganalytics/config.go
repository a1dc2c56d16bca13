package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"iganalytics/pkg/config"
	"iganalytics/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage iganalytics configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables (IGANALYTICS_*, ACCESS_TOKEN, .env)
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'iganalytics.yaml'
unless a different path is specified with the --config flag.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = "iganalytics.yaml"
		}
		return writeExampleConfig(path)
	},
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the effective configuration after merging every source.

The access token is masked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile, globalFlags())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return showConfig(cfg)
	},
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Log file path accessibility`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.FindConfigFile()
		}
		if path == "" {
			return fmt.Errorf("no configuration file found, specify one with --config")
		}
		return validateConfig(path)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const exampleConfig = `# iganalytics configuration file
#
# Environment variables override this file:
#   IGANALYTICS_ACCESS_TOKEN (or ACCESS_TOKEN), IGANALYTICS_BASE_URL,
#   IGANALYTICS_REQUESTS_PER_HOUR, IGANALYTICS_CONCURRENCY,
#   IGANALYTICS_FOLLOW_PAGINATION, IGANALYTICS_LOG_LEVEL, NO_COLOR

# Instagram Graph API
instagram:
  # Access token (optional here, prefer 'iganalytics auth login')
  access_token: ""

  base_url: "https://graph.instagram.com"

  # Request timeout
  timeout: 30s

# Graph API allowance
rate_limit:
  enabled: true
  requests_per_hour: 200

# Retries for network, rate limit and server errors
retry:
  enabled: true
  # Range: 1-10
  max_attempts: 3
  base_delay: 1s
  max_delay: 30s
  multiplier: 2.0
  jitter_factor: 0.1

# Dashboard and listings
analysis:
  # Comments shown per post in the dashboard
  comment_preview: 3
  caption_width: 150
  comment_width: 60

  # Posts enriched in parallel. Range: 1-16
  concurrency: 1

  # Read every page of media instead of the first one
  follow_pagination: false
  # Page limit with follow_pagination, 0 = no limit
  max_pages: 0
  # Media per page, 0 = API default
  page_size: 0

# Logs go to stderr; the dashboard goes to stdout
logging:
  # Log level: debug, info, warn, error, disabled
  level: "warn"
  # Log file path (optional, JSON lines)
  file: ""

ui:
  color_enabled: true
`

func writeExampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		ui.PrintError("Configuration file already exists", path)
		fmt.Fprintln(ui.Output(), "\nTo overwrite, first remove the existing file:")
		fmt.Fprintf(ui.Output(), "  rm %s\n", path)
		return errReported
	}

	if err := os.WriteFile(path, []byte(exampleConfig), 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Fprintln(ui.Output(), "\nNext steps:")
	fmt.Fprintln(ui.Output(), "1. Store your access token with 'iganalytics auth login'")
	fmt.Fprintln(ui.Output(), "2. Run 'iganalytics config validate' to check the configuration")
	fmt.Fprintln(ui.Output(), "3. Print the dashboard with 'iganalytics analyze'")
	return nil
}

func showConfig(cfg *config.Config) error {
	data, err := yaml.Marshal(cfg.Masked())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Fprintln(ui.Output())
	fmt.Fprint(ui.Output(), string(data))

	fmt.Fprintln(ui.Output(), "\nConfiguration sources (in order of priority):")
	fmt.Fprintln(ui.Output(), "1. Command line flags")
	fmt.Fprintln(ui.Output(), "2. Environment variables (IGANALYTICS_*, ACCESS_TOKEN, .env)")
	if path := configFileInUse(); path != "" {
		fmt.Fprintf(ui.Output(), "3. Configuration file: %s\n", path)
	} else {
		fmt.Fprintln(ui.Output(), "3. Configuration file: (none found)")
	}
	fmt.Fprintln(ui.Output(), "4. Default values")
	return nil
}

func configFileInUse() string {
	if configFile != "" {
		return configFile
	}
	return config.FindConfigFile()
}

func validateConfig(path string) error {
	ui.PrintInfo("Validating configuration", path)

	cfg := config.DefaultConfig()
	if err := cfg.LoadFromFile(path); err != nil {
		ui.PrintError("Configuration validation failed", err)
		return errReported
	}

	var problems []string
	if err := cfg.Validate(); err != nil {
		problems = append(problems, err.Error())
	}
	if cfg.Logging.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.File), 0755); err != nil {
			problems = append(problems, fmt.Sprintf("Cannot create log directory: %v", err))
		}
	}

	if len(problems) > 0 {
		ui.PrintError("Configuration has errors:")
		for _, problem := range problems {
			fmt.Fprintf(ui.Output(), "  - %s\n", problem)
		}
		return errReported
	}

	if cfg.Instagram.AccessToken != "" {
		ui.PrintWarning("The file contains an access token; 'iganalytics auth login' keeps it out of plain text")
		fmt.Fprintln(ui.Output())
	}

	ui.PrintSuccess("Configuration is valid")

	out := ui.Output()
	fmt.Fprintln(out, "\nConfiguration summary:")
	fmt.Fprintf(out, "  API: %s (timeout %s)\n", cfg.Instagram.BaseURL, cfg.Instagram.Timeout)
	if cfg.RateLimit.Enabled {
		fmt.Fprintf(out, "  Rate limit: %d requests/hour\n", cfg.RateLimit.RequestsPerHour)
	} else {
		fmt.Fprintln(out, "  Rate limit: disabled")
	}
	if cfg.Retry.Enabled {
		fmt.Fprintf(out, "  Max retries: %d\n", cfg.Retry.MaxAttempts)
	} else {
		fmt.Fprintln(out, "  Max retries: disabled")
	}
	fmt.Fprintf(out, "  Concurrency: %d\n", cfg.Analysis.Concurrency)
	fmt.Fprintf(out, "  Follow pagination: %t\n", cfg.Analysis.FollowPagination)
	fmt.Fprintf(out, "  Log level: %s\n", cfg.Logging.Level)
	return nil
}
