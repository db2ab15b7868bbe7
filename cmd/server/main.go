// Command server runs the development authentication backend.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
	"github.com/dmitrijs2005/gophauth/internal/server"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		addr        string
		secret      string
		accessTTL   time.Duration
		refreshTTL  time.Duration
		codeTTL     time.Duration
		maxAttempts int
		logLevel    string
		logFormat   string
	)

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the development authentication backend",
		Long: `server implements the /auth REST API in memory.

Verification codes and password reset tokens are logged instead of mailed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configPath)
			if err != nil {
				return err
			}

			f := cmd.Flags()
			if f.Changed("addr") {
				cfg.ListenAddr = addr
			}
			if f.Changed("secret") {
				cfg.SecretKey = secret
			}
			if f.Changed("access-ttl") {
				cfg.AccessTokenValidityDuration = accessTTL
			}
			if f.Changed("refresh-ttl") {
				cfg.RefreshTokenValidityDuration = refreshTTL
			}
			if f.Changed("code-ttl") {
				cfg.CodeValidityDuration = codeTTL
			}
			if f.Changed("max-code-attempts") {
				cfg.MaxCodeAttempts = maxAttempts
			}
			if f.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if f.Changed("log-format") {
				cfg.LogFormat = logFormat
			}

			if cfg.MaxCodeAttempts <= 0 {
				return fmt.Errorf("max-code-attempts must be positive, got %d", cfg.MaxCodeAttempts)
			}

			return server.NewApp(cfg, cmd.OutOrStdout()).Run(context.Background())
		},
	}

	f := cmd.Flags()
	f.StringVarP(&configPath, "config", "c", "", "JSON config file")
	f.StringVarP(&addr, "addr", "a", "", "address and port to listen on")
	f.StringVarP(&secret, "secret", "s", "", "HMAC secret for access tokens")
	f.DurationVarP(&accessTTL, "access-ttl", "t", 0, "access token validity")
	f.DurationVarP(&refreshTTL, "refresh-ttl", "r", 0, "refresh token validity")
	f.DurationVar(&codeTTL, "code-ttl", 0, "verification code validity")
	f.IntVar(&maxAttempts, "max-code-attempts", 0, "wrong codes accepted before 429")
	f.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	f.StringVar(&logFormat, "log-format", "", "text or json")

	return cmd
}
