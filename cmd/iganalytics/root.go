package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"iganalytics/pkg/auth"
	"iganalytics/pkg/config"
	"iganalytics/pkg/instagram"
	"iganalytics/pkg/logger"
	"iganalytics/pkg/report"
	"iganalytics/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	tokenFlag   string
	accountName string
	noColor     bool
	verbose     bool
)

// errReported is returned once a failure has been written to the output,
// so Execute only sets the exit code
var errReported = errors.New("failure already reported")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iganalytics",
	Short: "Instagram Graph API analytics from the command line",
	Long: `iganalytics reads an Instagram professional account through the Graph API
and prints an analytics dashboard of its recent posts.

Features:
  - Per-post insights with engagement rate and reel watch time
  - Account totals and per-post averages
  - Media, comment and insight listings
  - Publishing photos and posting comments
  - Secure token storage using the system keychain
  - Rate limiting and retries with exponential backoff

The access token is taken from --token, IGANALYTICS_ACCESS_TOKEN or
ACCESS_TOKEN (a .env file works too), the config file, or a stored account.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			ui.PrintError("Error", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./iganalytics.yaml or ~/.config/iganalytics/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Graph API access token")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and progress to stderr")

	rootCmd.SetVersionTemplate(`iganalytics {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// app is what a command needs to talk to the API and print results
type app struct {
	cfg    *config.Config
	log    logger.Logger
	client *instagram.Client
	out    *report.Renderer
}

// globalFlags collects the persistent flags the user actually set
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if tokenFlag != "" {
		flags["token"] = tokenFlag
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	} else if verbose {
		flags["log-level"] = "debug"
	}
	if noColor {
		flags["no-color"] = true
	}
	return flags
}

// loadConfig loads the configuration and sets up logging and colors
func loadConfig(cmd *cobra.Command, extra map[string]interface{}) (*config.Config, error) {
	flags := globalFlags()
	for key, value := range extra {
		flags[key] = value
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	ui.SetColorEnabled(cfg.UI.ColorEnabled)

	return cfg, nil
}

// resolveToken fills in the access token from the credential store when
// neither flags, environment nor config file provided one. An unknown
// --account is an error; no stored account at all is not, the first
// request then fails with the API's own message.
func resolveToken(cfg *config.Config, log logger.Logger) error {
	if cfg.Instagram.AccessToken != "" && accountName == "" {
		return nil
	}

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential store unavailable")
		if accountName != "" {
			return fmt.Errorf("failed to initialize credential manager: %w", err)
		}
		return nil
	}

	account, err := manager.Resolve(accountName)
	if err != nil {
		if accountName != "" {
			return err
		}
		log.Debug("No stored account found")
		return nil
	}

	log.WithField("account", account.Username).Debug("Using stored account")
	cfg.Instagram.AccessToken = account.AccessToken
	return nil
}

// newApp builds the client and renderer for an API command
func newApp(cmd *cobra.Command, extra map[string]interface{}) (*app, error) {
	cfg, err := loadConfig(cmd, extra)
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger()
	if err := resolveToken(cfg, log); err != nil {
		return nil, err
	}

	return newAppWithConfig(cfg, log, cmd.OutOrStdout()), nil
}

func newAppWithConfig(cfg *config.Config, log logger.Logger, w io.Writer) *app {
	return &app{
		cfg:    cfg,
		log:    log,
		client: instagram.NewFromConfig(cfg, log),
		out:    report.New(w, report.OptionsFromConfig(cfg)),
	}
}

// apiFailure prints a failed call and marks it as reported
func (a *app) apiFailure(action string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	if perr := a.out.APIError(action, err); perr != nil {
		return perr
	}
	return errReported
}
