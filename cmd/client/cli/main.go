// Command cli is the interactive gophauth client.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/buildinfo"
	"github.com/dmitrijs2005/gophauth/internal/client/auth"
	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/metrics"
	"github.com/dmitrijs2005/gophauth/internal/client/repositories/kv"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/filex"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	buildinfo.PrintBuildData(out)

	cfg, err := config.LoadConfig(args)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, errOut)

	if _, err := filex.EnsureParentDir(cfg.DBPath); err != nil {
		return err
	}
	db, err := kv.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open session database: %w", err)
	}
	defer db.Close()

	var repo kv.Repository = kv.NewSQLiteRepository(db)
	if cfg.StoragePassphrase != "" {
		sealed, err := kv.OpenSealed(ctx, repo, []byte(cfg.StoragePassphrase))
		if err != nil {
			return fmt.Errorf("unlock session database: %w", err)
		}
		repo = sealed
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	mgr := session.NewManager(repo, log, m)
	gw := client.NewGateway(cfg.ServerURL, mgr,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(log),
		client.WithMetrics(m),
	)

	splash := cfg.SplashDelay
	if splash == 0 {
		splash = -1
	}
	ctrl := auth.New(client.NewHTTPClient(gw), mgr, auth.Options{
		SplashDelay: splash,
		CodeTTL:     cfg.CodeTTL,
		Logger:      log,
	})

	return cli.NewApp(ctrl, mgr, in, out, log).WithStats(reg).Run(ctx)
}
