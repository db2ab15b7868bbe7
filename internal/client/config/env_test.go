package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) lookupFunc {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func Test_parseEnv(t *testing.T) {
	t.Run("process environment", func(t *testing.T) {
		cfg := defaults()
		err := parseEnv(&cfg, "", mapLookup(map[string]string{
			"GOPHAUTH_SERVER_URL":         "http://env:1",
			"GOPHAUTH_REQUEST_TIMEOUT":    "1500ms",
			"GOPHAUTH_STORAGE_PASSPHRASE": "hunter2",
			"GOPHAUTH_LOG_FORMAT":         "json",
			"OTHER":                       "ignored",
		}))
		require.NoError(t, err)

		assert.Equal(t, "http://env:1", cfg.ServerURL)
		assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
		assert.Equal(t, "hunter2", cfg.StoragePassphrase)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, 2*time.Second, cfg.SplashDelay)
	})

	t.Run("dotenv file under process environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(
			"GOPHAUTH_DB_PATH=/tmp/file.db\nGOPHAUTH_SPLASH_DELAY=0s\nGOPHAUTH_LOG_LEVEL=debug\n"), 0o600))

		cfg := defaults()
		err := parseEnv(&cfg, path, mapLookup(map[string]string{"GOPHAUTH_LOG_LEVEL": "error"}))
		require.NoError(t, err)

		assert.Equal(t, "/tmp/file.db", cfg.DBPath)
		assert.Equal(t, time.Duration(0), cfg.SplashDelay)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("bad duration", func(t *testing.T) {
		cfg := defaults()
		err := parseEnv(&cfg, "", mapLookup(map[string]string{"GOPHAUTH_CODE_TTL": "soon"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GOPHAUTH_CODE_TTL")
	})
}
