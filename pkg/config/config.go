package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"igfollowers/pkg/logger"
)

// Config holds all configuration options for the follower collector
type Config struct {
	// DataDir is the base directory holding one subdirectory per target
	DataDir string `yaml:"data_dir"`

	// Instagram session cookies used by the api/export enrichment path
	Instagram InstagramConfig `yaml:"instagram"`

	// Apify cloud actor settings
	Apify ApifyConfig `yaml:"apify"`

	// Pacing between upstream requests
	Pacing PacingConfig `yaml:"pacing"`

	// Retry behavior for transient failures
	Retry RetryConfig `yaml:"retry"`

	// Report thresholds and keyword lists
	Reports ReportsConfig `yaml:"reports"`

	// Logging configuration
	Logging logger.Config `yaml:"logging"`
}

// InstagramConfig holds the browser session cookies the web API requires
type InstagramConfig struct {
	SessionID string `yaml:"session_id"`
	CSRFToken string `yaml:"csrf_token"`
	DSUserID  string `yaml:"ds_user_id"`
	UserAgent string `yaml:"user_agent"`
}

// ApifyConfig holds the cloud actor IDs and API token.
// Actor output shapes vary between actors and actor versions, so the field
// normalization map lives here as data rather than in code.
type ApifyConfig struct {
	Token           string            `yaml:"token"`
	FollowersActor  string            `yaml:"followers_actor"`
	PostsActor      string            `yaml:"posts_actor"`
	CommentsActor   string            `yaml:"comments_actor"`
	ProfilesActor   string            `yaml:"profiles_actor"`
	PollInterval    time.Duration     `yaml:"poll_interval"`
	CommentBatch    int               `yaml:"comment_batch"`
	ProfileBatch    int               `yaml:"profile_batch"`
	FollowerFields  map[string]string `yaml:"follower_fields,omitempty"`
	CommenterFields map[string]string `yaml:"commenter_fields,omitempty"`
}

// PacingConfig controls the fixed delays between sequential requests.
// Fast mode roughly triples throughput at higher rate-limit risk.
type PacingConfig struct {
	PageDelay      time.Duration `yaml:"page_delay"`
	FastPageDelay  time.Duration `yaml:"fast_page_delay"`
	PagePause      time.Duration `yaml:"page_pause"`
	FastPagePause  time.Duration `yaml:"fast_page_pause"`
	PagePauseEvery int           `yaml:"page_pause_every"`

	ProfileDelay        time.Duration `yaml:"profile_delay"`
	FastProfileDelay    time.Duration `yaml:"fast_profile_delay"`
	BatchPause          time.Duration `yaml:"batch_pause"`
	FastBatchPause      time.Duration `yaml:"fast_batch_pause"`
	BatchPauseEvery     int           `yaml:"batch_pause_every"`
	FastBatchPauseEvery int           `yaml:"fast_batch_pause_every"`
}

// RetryConfig holds retry limits for transient failures
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay"`
}

// ReportsConfig holds the thresholds and keyword lists the Analyze stage
// filters on
type ReportsConfig struct {
	NoteworthyFollowerMin int      `yaml:"noteworthy_follower_min"`
	LargeFollowingMin     int      `yaml:"large_following_min"`
	LocalKeywords         []string `yaml:"local_keywords"`
}

// DefaultLocalKeywords matches Queens / NYC localities in follower bios
var DefaultLocalKeywords = []string{
	"queens", "nyc", "new york", "flushing", "jamaica", "astoria",
	"jackson heights", "long island city", "lic", "woodside",
	"elmhurst", "corona", "forest hills", "rego park", "bayside",
	"fresh meadows", "whitestone", "sunnyside", "ridgewood",
	"maspeth", "middle village", "kew gardens", "howard beach",
	"ozone park", "south ozone", "richmond hill", "woodhaven",
	"rockaways", "rockaway", "far rockaway", "broad channel",
	"queens ny", "qns", "district 25", "district 19", "cd25",
}

// DefaultFollowerFields maps each profile field to the actor output keys
// that may carry it, in priority order. Actor output shapes drift between
// versions, so this lives in configuration and can be overridden per
// deployment without a code change. Dots descend into nested objects.
func DefaultFollowerFields() map[string]string {
	return map[string]string{
		"handle":          "username userName handle",
		"ig_user_id":      "id pk userId iguid",
		"full_name":       "fullName full_name",
		"follower_count":  "followerCount followers follower_count followersCount",
		"following_count": "followingCount following following_count followsCount",
		"is_verified":     "isVerified is_verified verified",
		"is_private":      "isPrivate is_private private",
		"bio":             "biography bio",
		"post_count":      "mediaCount postsCount post_count",
		"external_url":    "externalUrl external_url",
		"profile_pic_url": "profilePicUrlHD profilePicUrl profile_pic_url",
	}
}

// DefaultCommenterFields maps comment fields to their candidate actor
// output keys, same scheme as DefaultFollowerFields.
func DefaultCommenterFields() map[string]string {
	return map[string]string{
		"handle":     "ownerUsername username owner.username",
		"text":       "text body",
		"post_short": "shortCode shortcode postShortCode",
	}
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		DataDir: "data",
		Instagram: InstagramConfig{
			UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
				"AppleWebKit/537.36 (KHTML, like Gecko) " +
				"Chrome/122.0.0.0 Safari/537.36",
		},
		Apify: ApifyConfig{
			FollowersActor:  "instaprism/instagram-followers-scraper",
			PostsActor:      "apify/instagram-post-scraper",
			CommentsActor:   "apify/instagram-comment-scraper",
			ProfilesActor:   "apify/instagram-profile-scraper",
			PollInterval:    15 * time.Second,
			CommentBatch:    50,
			ProfileBatch:    1000,
			FollowerFields:  DefaultFollowerFields(),
			CommenterFields: DefaultCommenterFields(),
		},
		Pacing: PacingConfig{
			PageDelay:      2 * time.Second,
			FastPageDelay:  1 * time.Second,
			PagePause:      15 * time.Second,
			FastPagePause:  5 * time.Second,
			PagePauseEvery: 10,

			ProfileDelay:        4 * time.Second,
			FastProfileDelay:    1500 * time.Millisecond,
			BatchPause:          45 * time.Second,
			FastBatchPause:      15 * time.Second,
			BatchPauseEvery:     40,
			FastBatchPauseEvery: 50,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   5 * time.Second,
		},
		Reports: ReportsConfig{
			NoteworthyFollowerMin: 5000,
			LargeFollowingMin:     10000,
			LocalKeywords:         DefaultLocalKeywords,
		},
		Logging: logger.Config{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("IG_SESSION_ID"); v != "" {
		c.Instagram.SessionID = v
	}
	if v := os.Getenv("IG_CSRF_TOKEN"); v != "" {
		c.Instagram.CSRFToken = v
	}
	if v := os.Getenv("IG_DS_USER_ID"); v != "" {
		c.Instagram.DSUserID = v
	}
	if v := os.Getenv("IG_USER_AGENT"); v != "" {
		c.Instagram.UserAgent = v
	}
	if v := os.Getenv("APIFY_TOKEN"); v != "" {
		c.Apify.Token = v
	}
	if v := os.Getenv("IGFOLLOWERS_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("IGFOLLOWERS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
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

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igfollowers.yaml",
		".igfollowers.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igfollowers", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igfollowers", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igfollowers.yaml"),
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

	if c.DataDir == "" {
		errs = append(errs, errors.New("data directory is required"))
	}
	if c.Pacing.ProfileDelay < 0 || c.Pacing.PageDelay < 0 {
		errs = append(errs, errors.New("pacing delays cannot be negative"))
	}
	if c.Retry.MaxAttempts < 0 {
		errs = append(errs, errors.New("max retry attempts cannot be negative"))
	}
	if c.Apify.ProfileBatch < 1 {
		errs = append(errs, errors.New("profile batch size must be at least 1"))
	}
	if c.Apify.CommentBatch < 1 {
		errs = append(errs, errors.New("comment batch size must be at least 1"))
	}
	if c.Reports.NoteworthyFollowerMin < 0 {
		errs = append(errs, errors.New("noteworthy follower threshold cannot be negative"))
	}
	if c.Reports.LargeFollowingMin < 0 {
		errs = append(errs, errors.New("large following threshold cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// RequireSessionCookies fails unless all three Instagram session cookies
// are present. Collect/Enrich commands on the api and export paths call
// this before touching the network.
func (c *Config) RequireSessionCookies() error {
	if c.Instagram.SessionID == "" || c.Instagram.CSRFToken == "" || c.Instagram.DSUserID == "" {
		return errors.New("missing Instagram session cookies: set IG_SESSION_ID, IG_CSRF_TOKEN and IG_DS_USER_ID " +
			"(browser DevTools > Application > Cookies > instagram.com)")
	}
	return nil
}

// RequireApifyToken fails unless the Apify API token is configured
func (c *Config) RequireApifyToken() error {
	if c.Apify.Token == "" {
		return errors.New("missing Apify token: set APIFY_TOKEN " +
			"(https://console.apify.com/account/integrations)")
	}
	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Flags carries command line overrides into Load
type Flags struct {
	DataDir  string
	LogLevel string
}

// merge applies command line flags onto the configuration
func (c *Config) merge(flags Flags) {
	if flags.DataDir != "" {
		c.DataDir = flags.DataDir
	}
	if flags.LogLevel != "" {
		c.Logging.Level = flags.LogLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags Flags) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igfollowers.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	config.LoadFromEnv()
	config.merge(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
