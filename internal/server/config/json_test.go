package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadConfig_JSONOverlaysPresentFields(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"listen_addr":                    "127.0.0.1:9000",
		"access_token_validity_duration": "2s",
		"code_validity_duration":         int64(time.Minute),
		"max_code_attempts":              2,
	})

	c, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", c.ListenAddr)
	assert.Equal(t, 2*time.Second, c.AccessTokenValidityDuration)
	assert.Equal(t, time.Minute, c.CodeValidityDuration)
	assert.Equal(t, 2, c.MaxCodeAttempts)

	// untouched fields keep their defaults
	assert.Equal(t, "secretKey", c.SecretKey)
	assert.Equal(t, 30*24*time.Hour, c.RefreshTokenValidityDuration)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
