package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igfollowers/pkg/auth"
	"igfollowers/pkg/config"
	"igfollowers/pkg/logger"
	"igfollowers/pkg/pipeline"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile  string
	logLevel    string
	dataDir     string
	accountName string
	quiet       bool
	verbose     bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igfollowers",
	Short: "Collect, enrich, and analyze Instagram follower lists",
	Long: `igfollowers collects an Instagram account's follower list, enriches each
follower with full profile data, and generates analysis reports.

Four interchangeable collection strategies are available, each with its own
subcommand:
  export    parse the official Instagram data export archive
  api       page through the web API with browser session cookies
  session   log in interactively and walk the GraphQL follower edge
  apify     run managed Apify cloud actors

Every strategy feeds the same three stages (collect, enrich, analyze) and
all progress is checkpointed, so interrupted runs resume where they
stopped.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igfollowers.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "base data directory (default: data)")
	rootCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "", "use a specific stored account's cookies")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")

	rootCmd.SetVersionTemplate(`igfollowers {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration from all sources and initializes the
// logger. Stored credentials fill in session cookies when the environment
// does not provide them.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFile, config.Flags{DataDir: dataDir, LogLevel: logLevel})
	if err != nil {
		return nil, err
	}

	if quiet {
		cfg.Logging.Level = "error"
	} else if verbose {
		cfg.Logging.Level = "debug"
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	applyStoredCredentials(cfg)
	return cfg, nil
}

// applyStoredCredentials fills in cookies from the credential store when
// nothing else provided them, or when a specific account was requested.
func applyStoredCredentials(cfg *config.Config) {
	if cfg.Instagram.SessionID != "" && accountName == "" {
		return
	}

	manager, err := auth.NewManager()
	if err != nil {
		return
	}

	var account *auth.Account
	if accountName != "" {
		account, err = manager.Retrieve(accountName)
	} else {
		account, err = manager.RetrieveDefault()
	}
	if err != nil || account == nil {
		return
	}

	cfg.Instagram.SessionID = account.SessionID
	cfg.Instagram.CSRFToken = account.CSRFToken
	cfg.Instagram.DSUserID = account.DSUserID
	if account.UserAgent != "" {
		cfg.Instagram.UserAgent = account.UserAgent
	}
}

// newPipeline builds a pipeline from freshly loaded configuration.
func newPipeline() (*pipeline.Pipeline, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return pipeline.New(cfg, logger.GetLogger()), cfg, nil
}
