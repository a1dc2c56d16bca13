package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the analytics CLI
type Config struct {
	// Graph API access
	Instagram InstagramConfig `yaml:"instagram" json:"instagram"`

	// Rate limiting configuration
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`

	// Retry configuration
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Analysis and report settings
	Analysis AnalysisConfig `yaml:"analysis" json:"analysis"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Terminal output
	UI UIConfig `yaml:"ui" json:"ui"`
}

// InstagramConfig holds Graph API configuration
type InstagramConfig struct {
	AccessToken string        `yaml:"access_token" json:"access_token"`
	BaseURL     string        `yaml:"base_url" json:"base_url"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled         bool `yaml:"enabled" json:"enabled"`
	RequestsPerHour int  `yaml:"requests_per_hour" json:"requests_per_hour"`
}

// RetryConfig holds retry configuration
type RetryConfig struct {
	Enabled      bool          `yaml:"enabled" json:"enabled"`
	MaxAttempts  int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay     time.Duration `yaml:"max_delay" json:"max_delay"`
	Multiplier   float64       `yaml:"multiplier" json:"multiplier"`
	JitterFactor float64       `yaml:"jitter_factor" json:"jitter_factor"`
}

// AnalysisConfig holds aggregator and report settings
type AnalysisConfig struct {
	// CommentPreview is how many comments each post block shows
	CommentPreview int `yaml:"comment_preview" json:"comment_preview"`
	CaptionWidth   int `yaml:"caption_width" json:"caption_width"`
	CommentWidth   int `yaml:"comment_width" json:"comment_width"`
	// Concurrency is the number of enrichment workers, 1 means sequential
	Concurrency int `yaml:"concurrency" json:"concurrency"`
	// FollowPagination follows paging.next on the media list
	FollowPagination bool `yaml:"follow_pagination" json:"follow_pagination"`
	// MaxPages bounds pagination, 0 means unbounded
	MaxPages int `yaml:"max_pages" json:"max_pages"`
	// PageSize is sent as "limit", 0 leaves the API default
	PageSize int `yaml:"page_size" json:"page_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// UIConfig holds terminal output preferences
type UIConfig struct {
	ColorEnabled bool `yaml:"color_enabled" json:"color_enabled"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Instagram: InstagramConfig{
			BaseURL: "https://graph.instagram.com",
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Enabled:         true,
			RequestsPerHour: 200,
		},
		Retry: RetryConfig{
			Enabled:      true,
			MaxAttempts:  3,
			BaseDelay:    1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
			JitterFactor: 0.1,
		},
		Analysis: AnalysisConfig{
			CommentPreview:   3,
			CaptionWidth:     150,
			CommentWidth:     60,
			Concurrency:      1,
			FollowPagination: false,
			MaxPages:         0,
			PageSize:         0,
		},
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
		UI: UIConfig{
			ColorEnabled: true,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	// ACCESS_TOKEN is what the original scripts read from .env
	if token := os.Getenv("ACCESS_TOKEN"); token != "" {
		c.Instagram.AccessToken = token
	}
	if token := os.Getenv("IGANALYTICS_ACCESS_TOKEN"); token != "" {
		c.Instagram.AccessToken = token
	}
	if baseURL := os.Getenv("IGANALYTICS_BASE_URL"); baseURL != "" {
		c.Instagram.BaseURL = baseURL
	}

	if rph := os.Getenv("IGANALYTICS_REQUESTS_PER_HOUR"); rph != "" {
		val, err := strconv.Atoi(rph)
		if err != nil {
			return fmt.Errorf("invalid IGANALYTICS_REQUESTS_PER_HOUR: %w", err)
		}
		if val > 0 {
			c.RateLimit.RequestsPerHour = val
		}
	}

	if concurrency := os.Getenv("IGANALYTICS_CONCURRENCY"); concurrency != "" {
		val, err := strconv.Atoi(concurrency)
		if err != nil {
			return fmt.Errorf("invalid IGANALYTICS_CONCURRENCY: %w", err)
		}
		if val > 0 {
			c.Analysis.Concurrency = val
		}
	}

	if follow := os.Getenv("IGANALYTICS_FOLLOW_PAGINATION"); follow != "" {
		c.Analysis.FollowPagination = strings.ToLower(follow) == "true"
	}

	if logLevel := os.Getenv("IGANALYTICS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	// https://no-color.org
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		c.UI.ColorEnabled = false
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = FindConfigFile()
		if path == "" {
			return nil // No config file found, not an error
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

// FindConfigFile searches for a config file in standard locations
func FindConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		"iganalytics.yaml",
		".iganalytics.yaml",
		".iganalytics.yml",
		filepath.Join(home, ".config", "iganalytics", "config.yaml"),
		filepath.Join(home, ".config", "iganalytics", "config.yml"),
		filepath.Join(home, ".iganalytics.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// A missing access token is deliberately not an error here: it surfaces as
// a failed first request.
func (c *Config) Validate() error {
	var errs []error

	if c.Instagram.BaseURL == "" {
		errs = append(errs, errors.New("instagram base URL is required"))
	}
	if c.Instagram.Timeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}

	if c.RateLimit.Enabled && c.RateLimit.RequestsPerHour <= 0 {
		errs = append(errs, errors.New("requests per hour must be positive"))
	}

	if c.Retry.Enabled {
		if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
			errs = append(errs, errors.New("retry max attempts must be between 1 and 10"))
		}
		if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < c.Retry.BaseDelay {
			errs = append(errs, errors.New("retry delays must satisfy 0 <= base_delay <= max_delay"))
		}
		if c.Retry.Multiplier < 1 {
			errs = append(errs, errors.New("retry multiplier must be at least 1"))
		}
	}

	if c.Analysis.CommentPreview < 0 {
		errs = append(errs, errors.New("comment preview cannot be negative"))
	}
	if c.Analysis.CaptionWidth <= 0 || c.Analysis.CommentWidth <= 0 {
		errs = append(errs, errors.New("caption and comment widths must be positive"))
	}
	if c.Analysis.Concurrency < 1 || c.Analysis.Concurrency > 16 {
		errs = append(errs, errors.New("concurrency must be between 1 and 16"))
	}
	if c.Analysis.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}
	if c.Analysis.PageSize < 0 {
		errs = append(errs, errors.New("page size cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Errorf("invalid log level: %s", c.Logging.Level))
	}

	return errors.Join(errs...)
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// 0600 because the file may hold the access token
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Masked returns a copy of the configuration safe to print
func (c *Config) Masked() *Config {
	masked := *c
	masked.Instagram.AccessToken = MaskSecret(c.Instagram.AccessToken)
	return &masked
}

// MaskSecret masks all but the first 4 and last 4 characters of a secret
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in flags are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["token"].(string); ok && token != "" {
		c.Instagram.AccessToken = token
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Instagram.BaseURL = baseURL
	}
	if timeout, ok := flags["timeout"].(time.Duration); ok && timeout > 0 {
		c.Instagram.Timeout = timeout
	}
	if concurrency, ok := flags["concurrency"].(int); ok && concurrency > 0 {
		c.Analysis.Concurrency = concurrency
	}
	if follow, ok := flags["all-pages"].(bool); ok {
		c.Analysis.FollowPagination = follow
	}
	if maxPages, ok := flags["max-pages"].(int); ok && maxPages >= 0 {
		c.Analysis.MaxPages = maxPages
	}
	if preview, ok := flags["comment-preview"].(int); ok && preview >= 0 {
		c.Analysis.CommentPreview = preview
	}
	if attempts, ok := flags["max-retries"].(int); ok {
		if attempts <= 0 {
			c.Retry.Enabled = false
		} else {
			c.Retry.MaxAttempts = attempts
		}
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
	if noColor, ok := flags["no-color"].(bool); ok && noColor {
		c.UI.ColorEnabled = false
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".iganalytics.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
