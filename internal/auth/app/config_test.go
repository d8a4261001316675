package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestLoadConfig_NoFile(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteauth.yaml")
	content := `
env: prod
http:
  port: 9000
  cookie:
    secure: true
  ratelimit:
    strict:
      requests: 3
      window: 1m
      burst: 1
site:
  url: https://blog.example.com
mail:
  transport: smtp
  from: ghost@example.com
  smtp:
    host: smtp.example.com
    port: 2525
ttl:
  reset: 30m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "prod", cfg.Env)
	require.Equal(t, 9000, cfg.HTTP.Port)
	require.True(t, cfg.HTTP.Cookie.Secure)
	require.Equal(t, "siteauth-session", cfg.HTTP.Cookie.Name, "unset keys keep their defaults")
	require.Equal(t, 3, cfg.HTTP.RateLimit.Strict.RequestsPerWindow)
	require.Equal(t, time.Minute, cfg.HTTP.RateLimit.Strict.Window)
	require.Equal(t, "https://blog.example.com", cfg.Site.URL)
	require.Equal(t, TransportSMTP, cfg.Mail.Transport)
	require.Equal(t, "smtp.example.com", cfg.Mail.SMTP.Host)
	require.Equal(t, 2525, cfg.Mail.SMTP.Port)
	require.Equal(t, 30*time.Minute, cfg.TTL.Reset)
	require.Equal(t, 7*24*time.Hour, cfg.TTL.Invite)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "siteauth.yaml")
	require.NoError(t, os.WriteFile(path, []byte("http:\n  port: 9000\n"), 0o600))

	t.Setenv("SITEAUTH_HTTP_PORT", "9100")
	t.Setenv("SITEAUTH_LOG_LEVEL", "debug")
	t.Setenv("SITEAUTH_TTL_INVITE", "48h")
	t.Setenv("SITEAUTH_DATABASE_PATH", "/var/lib/siteauth/site.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 9100, cfg.HTTP.Port)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, 48*time.Hour, cfg.TTL.Invite)
	require.Equal(t, "/var/lib/siteauth/site.db", cfg.Database.Path)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.HTTP.Port = 0 }},
		{"database", func(c *Config) { c.Database.Path = "" }},
		{"secrets", func(c *Config) { c.Secrets.Internal = "" }},
		{"relative site url", func(c *Config) { c.Site.URL = "/blog" }},
		{"unknown transport", func(c *Config) { c.Mail.Transport = "carrier-pigeon" }},
		{"smtp without host", func(c *Config) {
			c.Mail.Transport = TransportSMTP
			c.Mail.SMTP.Host = ""
		}},
		{"reset ttl", func(c *Config) { c.TTL.Reset = 0 }},
		{"housekeeping", func(c *Config) { c.Housekeeping.Interval = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
