package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alkime/dictator/internal/config"
	"github.com/alkime/dictator/internal/logger"
	"github.com/alkime/dictator/internal/server"
)

// ServeCmd runs the HTTP authoring API until interrupted.
type ServeCmd struct {
	Port string `flag:"" optional:"" help:"Listen port (overrides DICTATOR_PORT)"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cfg *config.Config) error {
	if c.Port != "" {
		cfg.Port = c.Port
	}

	// Servers log JSON to stdout
	log := logger.SetupLogger(cfg)

	log.Info("Starting dictator server",
		"env", cfg.Env,
		"port", cfg.Port,
		"store", cfg.StoreDriver,
	)

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore(st)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(cfg, log, st).Run(ctx)
}
