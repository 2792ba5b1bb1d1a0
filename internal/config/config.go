// Package config provides configuration management for the provisioning CLIs.
//
// It implements the disciplined Viper pattern where Viper stays contained
// in this package and the rest of the codebase receives explicit Config structs.
// Configuration sources are resolved in this order: flags > env > config file > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DefaultEndpoint is the public GraphQL gateway of the access-control platform.
const DefaultEndpoint = "https://app.harness.io/gateway/api/graphql"

// Config is the explicit configuration struct
// This is what the rest of the codebase sees
type Config struct {
	Endpoint           string
	AccountID          string
	APIKey             string
	InsecureSkipVerify bool
	Timeout            time.Duration
	Trace              bool
	ParallelLookups    bool
	// RateLimit caps outgoing requests per second. Zero disables the cap.
	RateLimit float64
}

// Init initializes viper with defaults and config file paths
func Init() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.AddConfigPath("$HOME/.harness-provisioner")
	viper.AddConfigPath(".")

	SetDefaults()

	// HARNESS_API_KEY, HARNESS_ACCOUNT_ID, ...
	viper.SetEnvPrefix("HARNESS")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Read config file (ignore if not found)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return nil
}

// SetDefaults registers the default value of every key.
func SetDefaults() {
	viper.SetDefault("endpoint", DefaultEndpoint)
	viper.SetDefault("account-id", "")
	viper.SetDefault("api-key", "")
	viper.SetDefault("insecure-skip-verify", false)
	viper.SetDefault("timeout", 30)
	viper.SetDefault("trace", false)
	viper.SetDefault("parallel-lookups", false)
	viper.SetDefault("rate-limit", 0)
}

// Load reads from all sources and returns explicit Config
func Load() (*Config, error) {
	cfg := &Config{
		Endpoint:           viper.GetString("endpoint"),
		AccountID:          viper.GetString("account-id"),
		APIKey:             viper.GetString("api-key"),
		InsecureSkipVerify: viper.GetBool("insecure-skip-verify"),
		Timeout:            time.Duration(viper.GetInt("timeout")) * time.Second,
		Trace:              viper.GetBool("trace"),
		ParallelLookups:    viper.GetBool("parallel-lookups"),
		RateLimit:          viper.GetFloat64("rate-limit"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures config is sane
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", c.Endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q (scheme must be http or https)", c.Endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q (missing host)", c.Endpoint)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout: %s (must be positive)", c.Timeout)
	}

	if c.RateLimit < 0 {
		return fmt.Errorf("invalid rate limit: %g (must not be negative)", c.RateLimit)
	}

	return nil
}

// DefaultConfigPath is the file Init reads from the home directory.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".harness-provisioner", "config.yaml"), nil
}

// Save writes cfg to path as YAML. The API key is never written; it comes
// from --api-key or HARNESS_API_KEY.
func Save(cfg *Config, path string) error {
	v := viper.New()
	v.Set("endpoint", cfg.Endpoint)
	v.Set("account-id", cfg.AccountID)
	v.Set("insecure-skip-verify", cfg.InsecureSkipVerify)
	v.Set("timeout", int(cfg.Timeout/time.Second))
	v.Set("trace", cfg.Trace)
	v.Set("parallel-lookups", cfg.ParallelLookups)
	v.Set("rate-limit", cfg.RateLimit)

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// URL returns the endpoint with the account scope applied as the
// accountId query parameter.
func (c *Config) URL() string {
	if c.AccountID == "" {
		return c.Endpoint
	}

	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return c.Endpoint
	}
	q := u.Query()
	q.Set("accountId", c.AccountID)
	u.RawQuery = q.Encode()
	return u.String()
}

// Display shows current config (for the config subcommand)
func Display() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = "(not found)"
	}

	return fmt.Sprintf(`Configuration:
  endpoint:             %s
  account-id:           %s
  api-key:              %s
  insecure-skip-verify: %t
  timeout:              %s
  trace:                %t
  parallel-lookups:     %t
  rate-limit:           %s

Sources:
  Config file:          %s
  Environment:          HARNESS_*
  Flags:                (per command)
`,
		cfg.Endpoint,
		orNone(cfg.AccountID),
		MaskSecret(cfg.APIKey),
		cfg.InsecureSkipVerify,
		cfg.Timeout,
		cfg.Trace,
		cfg.ParallelLookups,
		rateLimitString(cfg.RateLimit),
		configFile,
	), nil
}

// MaskSecret hides all but the last four characters of s.
func MaskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 4 {
		return "***"
	}
	return "***" + s[len(s)-4:]
}

func rateLimitString(r float64) string {
	if r == 0 {
		return "(unlimited)"
	}
	return fmt.Sprintf("%g req/s", r)
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
