package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// go through timex.Duration so the file may say "10s".
type JsonConfig struct {
	ServerURL         string         `json:"server_url"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	SplashDelay       timex.Duration `json:"splash_delay"`
	CodeTTL           timex.Duration `json:"code_ttl"`
	DBPath            string         `json:"db_path"`
	StoragePassphrase string         `json:"storage_passphrase"`
	LogLevel          string         `json:"log_level"`
	LogFormat         string         `json:"log_format"`
}

// parseJson overlays cfg with the non-zero values of the file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DBPath, jc.DBPath)
	setString(&cfg.StoragePassphrase, jc.StoragePassphrase)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.SplashDelay.Duration != 0 {
		cfg.SplashDelay = jc.SplashDelay.Duration
	}
	if jc.CodeTTL.Duration != 0 {
		cfg.CodeTTL = jc.CodeTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
