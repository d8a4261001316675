package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	httpapi "github.com/aussiebroadwan/siteauth/internal/auth/http"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
)

// EnvPrefix is prepended to every environment override, e.g.
// SITEAUTH_HTTP_PORT=8081 sets http.port.
const EnvPrefix = "SITEAUTH_"

// Mail transports.
const (
	TransportLog  = "log"
	TransportSMTP = "smtp"
)

type Config struct {
	Env          string             `koanf:"env"` // dev, staging, prod
	Log          LogConfig          `koanf:"log"`
	HTTP         HTTPConfig         `koanf:"http"`
	Database     DatabaseConfig     `koanf:"database"`
	Secrets      SecretsConfig      `koanf:"secrets"`
	Site         SiteConfig         `koanf:"site"`
	Mail         MailConfig         `koanf:"mail"`
	TTL          TTLConfig          `koanf:"ttl"`
	Housekeeping HousekeepingConfig `koanf:"housekeeping"`
	Internal     InternalConfig     `koanf:"internal"`
}

type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

type HTTPConfig struct {
	Port      int                  `koanf:"port"`
	Shutdown  time.Duration        `koanf:"shutdown"` // graceful shutdown timeout
	Cookie    httpapi.CookieConfig `koanf:"cookie"`
	RateLimit RateLimitConfig      `koanf:"ratelimit"`
}

type RateLimitConfig struct {
	Strict   httpx.RateLimitConfig `koanf:"strict"`
	Moderate httpx.RateLimitConfig `koanf:"moderate"`
	Public   httpx.RateLimitConfig `koanf:"public"`
}

type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// SecretsConfig points at files holding process secrets. Missing files are
// generated on first start.
type SecretsConfig struct {
	Pepper   string `koanf:"pepper"`
	Internal string `koanf:"internal"`
}

type SiteConfig struct {
	URL string `koanf:"url"`
}

type MailConfig struct {
	From      string          `koanf:"from"`
	Transport string          `koanf:"transport"`
	SMTP      mail.SMTPConfig `koanf:"smtp"`
	Workers   int             `koanf:"workers"`
	Queue     int             `koanf:"queue"`
	Timeout   time.Duration   `koanf:"timeout"`
}

type TTLConfig struct {
	Reset   time.Duration `koanf:"reset"`
	Invite  time.Duration `koanf:"invite"`
	Session time.Duration `koanf:"session"`
}

type HousekeepingConfig struct {
	Interval time.Duration `koanf:"interval"`
}

// InternalConfig governs bearer tokens minted for automation.
type InternalConfig struct {
	Issuer   string        `koanf:"issuer"`
	TokenTTL time.Duration `koanf:"tokenttl"`
	Leeway   time.Duration `koanf:"leeway"`
}

// DefaultConfig returns a configuration suitable for a local install.
func DefaultConfig() Config {
	return Config{
		Env: "dev",
		Log: LogConfig{Level: "info", Format: "json"},
		HTTP: HTTPConfig{
			Port:     8080,
			Shutdown: 10 * time.Second,
			Cookie:   httpapi.CookieConfig{Name: httpapi.DefaultCookieName},
			RateLimit: RateLimitConfig{
				Strict:   httpx.StrictLimit,
				Moderate: httpx.ModerateLimit,
				Public:   httpx.PublicLimit,
			},
		},
		Database: DatabaseConfig{Path: "siteauth.db"},
		Secrets:  SecretsConfig{Pepper: "secrets/pepper", Internal: "secrets/internal"},
		Site:     SiteConfig{URL: "http://localhost:8080"},
		Mail: MailConfig{
			From:      "noreply@localhost",
			Transport: TransportLog,
			SMTP:      mail.SMTPConfig{Host: "localhost", Port: 25, TLS: mail.TLSOpportunistic},
			Workers:   4,
			Queue:     256,
			Timeout:   30 * time.Second,
		},
		TTL: TTLConfig{
			Reset:   60 * time.Minute,
			Invite:  7 * 24 * time.Hour,
			Session: 30 * 24 * time.Hour,
		},
		Housekeeping: HousekeepingConfig{Interval: time.Hour},
		Internal: InternalConfig{
			Issuer:   "siteauth",
			TokenTTL: 15 * time.Minute,
			Leeway:   30 * time.Second,
		},
	}
}

// LoadConfig layers the YAML file at path (optional) and SITEAUTH_*
// environment variables over DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// SITEAUTH_MAIL_SMTP_HOST -> mail.smtp.host
	transform := func(s string) string {
		s = strings.TrimPrefix(s, EnvPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "_", ".")
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", transform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port %d out of range", c.HTTP.Port))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Secrets.Pepper == "" || c.Secrets.Internal == "" {
		errs = append(errs, errors.New("secrets.pepper and secrets.internal are required"))
	}
	if u, err := url.Parse(c.Site.URL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("site.url %q must be an absolute URL", c.Site.URL))
	}
	switch c.Mail.Transport {
	case TransportLog:
	case TransportSMTP:
		if c.Mail.SMTP.Host == "" {
			errs = append(errs, errors.New("mail.smtp.host is required for the smtp transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("mail.transport %q is not one of log, smtp", c.Mail.Transport))
	}
	if c.TTL.Reset <= 0 || c.TTL.Invite <= 0 || c.TTL.Session <= 0 {
		errs = append(errs, errors.New("ttl values must be positive"))
	}
	if c.Housekeeping.Interval <= 0 {
		errs = append(errs, errors.New("housekeeping.interval must be positive"))
	}
	return errors.Join(errs...)
}

func (c Config) limits() httpapi.Limits {
	return httpapi.Limits{
		Strict:   c.HTTP.RateLimit.Strict,
		Moderate: c.HTTP.RateLimit.Moderate,
		Public:   c.HTTP.RateLimit.Public,
	}
}
