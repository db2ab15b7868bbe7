package config

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/flagx"
)

// Config holds runtime settings for the gophauth CLI.
//
// Fields:
//   - ServerURL: base URL of the authentication API.
//   - RequestTimeout: bound of a single HTTP exchange.
//   - SplashDelay: minimum duration of session restoration at startup.
//   - CodeTTL: validity window shown for an email verification code.
//   - DBPath: SQLite file holding the persisted session.
//   - StoragePassphrase: when set, stored values are sealed with a key
//     derived from it.
type Config struct {
	ServerURL         string
	RequestTimeout    time.Duration
	SplashDelay       time.Duration
	CodeTTL           time.Duration
	DBPath            string
	StoragePassphrase string
	LogLevel          string
	LogFormat         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:5000"
	c.RequestTimeout = 10 * time.Second
	c.SplashDelay = 2 * time.Second
	c.CodeTTL = 10 * time.Minute
	c.DBPath = "gophauth.db"
	c.StoragePassphrase = ""
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and flags found in args (os.Args[1:] in production). Later sources take
// precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.StringFlag(args, "config", "c"); path != "" {
		if err := parseJson(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, flagx.StringFlag(args, "env", "e"), osLookup); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server url is empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.DBPath == "" {
		return fmt.Errorf("database path is empty")
	}
	return nil
}
