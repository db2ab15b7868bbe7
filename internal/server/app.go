// Package server wires the development authentication backend: the user
// service, its in-memory stores and the HTTP API. Verification codes and
// reset tokens are written to the log instead of being mailed.
package server

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/httpapi"
	"github.com/dmitrijs2005/gophauth/internal/server/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	api         *httpapi.Server
}

func NewApp(c *config.Config, out io.Writer) *App {
	logger := logging.New(c.LogLevel, c.LogFormat, out)

	sink := func(email, kind, value string) {
		logger.Info(context.Background(), "outgoing mail", "to", email, "kind", kind, "value", value)
	}

	us := users.NewService(users.NewMemoryRepository(), refreshtokens.NewMemoryRepository(), c, sink)

	return &App{
		config:      c,
		logger:      logger,
		userService: us,
		api:         httpapi.NewServer(c.ListenAddr, logger, us),
	}
}

// API exposes the HTTP server, mainly for fault injection in tests.
func (app *App) API() *httpapi.Server {
	return app.api
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	if err := app.api.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}
	return nil
}
