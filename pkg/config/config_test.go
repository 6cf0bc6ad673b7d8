package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 5000, cfg.Reports.NoteworthyFollowerMin)
	assert.Equal(t, 10000, cfg.Reports.LargeFollowingMin)
	assert.Contains(t, cfg.Reports.LocalKeywords, "queens")
	assert.Equal(t, 15*time.Second, cfg.Apify.PollInterval)
	assert.Equal(t, 50, cfg.Apify.CommentBatch)
	assert.Equal(t, 1000, cfg.Apify.ProfileBatch)
	assert.NotEmpty(t, cfg.Instagram.UserAgent)

	// Normalization maps ship with defaults so actor output is usable
	// without any configuration
	assert.NotEmpty(t, cfg.Apify.FollowerFields["handle"])
	assert.NotEmpty(t, cfg.Apify.CommenterFields["handle"])

	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IG_SESSION_ID", "env-session")
	t.Setenv("IG_CSRF_TOKEN", "env-csrf")
	t.Setenv("IG_DS_USER_ID", "env-user")
	t.Setenv("APIFY_TOKEN", "env-apify")
	t.Setenv("IGFOLLOWERS_DATA_DIR", "/env/data")
	t.Setenv("IGFOLLOWERS_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	cfg.LoadFromEnv()

	assert.Equal(t, "env-session", cfg.Instagram.SessionID)
	assert.Equal(t, "env-csrf", cfg.Instagram.CSRFToken)
	assert.Equal(t, "env-user", cfg.Instagram.DSUserID)
	assert.Equal(t, "env-apify", cfg.Apify.Token)
	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
data_dir: /custom/data
instagram:
  session_id: file-session
pacing:
  profile_delay: 2s
reports:
  noteworthy_follower_min: 1000
  local_keywords: ["brooklyn"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "/custom/data", cfg.DataDir)
	assert.Equal(t, "file-session", cfg.Instagram.SessionID)
	assert.Equal(t, 2*time.Second, cfg.Pacing.ProfileDelay)
	assert.Equal(t, 1000, cfg.Reports.NoteworthyFollowerMin)
	assert.Equal(t, []string{"brooklyn"}, cfg.Reports.LocalKeywords)

	// Untouched values keep their defaults
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unclosed"), 0644))

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromFile(path))
}

func TestLoadPrecedence(t *testing.T) {
	// Environment beats the file; flags beat everything
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: /from/file\nlogging:\n  level: warn\n"), 0644))

	t.Setenv("IGFOLLOWERS_DATA_DIR", "/from/env")

	cfg, err := Load(path, Flags{LogLevel: "debug"})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, false},
		{"negative profile delay", func(c *Config) { c.Pacing.ProfileDelay = -time.Second }, false},
		{"negative retry attempts", func(c *Config) { c.Retry.MaxAttempts = -1 }, false},
		{"negative noteworthy threshold", func(c *Config) { c.Reports.NoteworthyFollowerMin = -1 }, false},
		{"zero profile batch", func(c *Config) { c.Apify.ProfileBatch = 0 }, false},
		{"zero comment batch", func(c *Config) { c.Apify.CommentBatch = 0 }, false},
		{"negative comment batch", func(c *Config) { c.Apify.CommentBatch = -5 }, false},
		{"invalid log level", func(c *Config) { c.Logging.Level = "loud" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRequireSessionCookies(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireSessionCookies())

	cfg.Instagram.SessionID = "s"
	cfg.Instagram.CSRFToken = "c"
	assert.Error(t, cfg.RequireSessionCookies(), "ds_user_id still missing")

	cfg.Instagram.DSUserID = "d"
	assert.NoError(t, cfg.RequireSessionCookies())
}

func TestRequireApifyToken(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.RequireApifyToken())

	cfg.Apify.Token = "token"
	assert.NoError(t, cfg.RequireApifyToken())
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DataDir = "/saved/data"
	cfg.Reports.NoteworthyFollowerMin = 777
	require.NoError(t, cfg.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reloaded := DefaultConfig()
	require.NoError(t, reloaded.LoadFromFile(path))
	assert.Equal(t, "/saved/data", reloaded.DataDir)
	assert.Equal(t, 777, reloaded.Reports.NoteworthyFollowerMin)
}
