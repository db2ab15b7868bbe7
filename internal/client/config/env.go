package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "GOPHAUTH_"

type lookupFunc func(key string) (string, bool)

func osLookup(key string) (string, bool) { return os.LookupEnv(key) }

// parseEnv overlays cfg with GOPHAUTH_* variables. Values come from lookup
// first and from the dotenv file at envFile, if any, second.
func parseEnv(cfg *Config, envFile string, lookup lookupFunc) error {
	var fileVars map[string]string
	if envFile != "" {
		vars, err := godotenv.Read(envFile)
		if err != nil {
			return fmt.Errorf("read env file %s: %w", envFile, err)
		}
		fileVars = vars
	}

	get := func(name string) string {
		key := envPrefix + name
		if v, ok := lookup(key); ok {
			return v
		}
		return fileVars[key]
	}

	setString(&cfg.ServerURL, get("SERVER_URL"))
	setString(&cfg.DBPath, get("DB_PATH"))
	setString(&cfg.StoragePassphrase, get("STORAGE_PASSPHRASE"))
	setString(&cfg.LogLevel, get("LOG_LEVEL"))
	setString(&cfg.LogFormat, get("LOG_FORMAT"))

	for name, dst := range map[string]*time.Duration{
		"REQUEST_TIMEOUT": &cfg.RequestTimeout,
		"SPLASH_DELAY":    &cfg.SplashDelay,
		"CODE_TTL":        &cfg.CodeTTL,
	} {
		v := get(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}
	return nil
}
