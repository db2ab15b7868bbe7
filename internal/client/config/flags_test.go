package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_parseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(*Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://127.0.0.1:9090", "-t", "20", "-d", "/var/lib/a.db"},
			want: func(c *Config) {
				c.ServerURL = "http://127.0.0.1:9090"
				c.RequestTimeout = 20 * time.Second
				c.DBPath = "/var/lib/a.db"
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"-c", "cfg.json", "-e", ".env", "-x", "-d=other.db"},
			want: func(c *Config) { c.DBPath = "other.db" },
		},
		{
			name:    "incorrect timeout",
			args:    []string{"-t", "abc"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(&cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			want := defaults()
			tt.want(&want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func Test_parseFlags_KeepsSubSecondTimeoutWhenUnset(t *testing.T) {
	cfg := defaults()
	cfg.RequestTimeout = 1500 * time.Millisecond
	require.NoError(t, parseFlags(&cfg, nil))
	assert.Equal(t, 1500*time.Millisecond, cfg.RequestTimeout)
}
