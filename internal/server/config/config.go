// Package config holds the settings of the development backend: defaults,
// an optional JSON overlay and command-line overrides applied by cmd/server.
package config

import "time"

// Config holds runtime settings of the backend.
//
// Fields:
//   - ListenAddr: bind address of the HTTP API.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - CodeValidityDuration: lifetime of an email verification code.
//   - MaxCodeAttempts: wrong codes accepted before replies turn into 429.
type Config struct {
	ListenAddr                   string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	CodeValidityDuration         time.Duration
	MaxCodeAttempts              int
	LogLevel                     string
	LogFormat                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret must be overridden outside local runs.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":5000"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 30 * 24 * time.Hour
	c.CodeValidityDuration = 10 * time.Minute
	c.MaxCodeAttempts = 5
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// LoadConfig returns defaults overlaid with the JSON file at path, if any.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if path == "" {
		return cfg, nil
	}
	if err := parseJson(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}
