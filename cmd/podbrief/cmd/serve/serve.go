package serve

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"podbrief/internal/app"
)

const janitorInterval = time.Hour

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API with the job workers, sweep and retention loops",
	RunE:  run,
}

func run(cmd *cobra.Command, args []string) error {
	cfg, logger, err := app.Bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve the API")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, cleanup, err := app.InitializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", zap.Error(err))
		return err
	}
	defer cleanup()

	loops, cancelLoops := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.Sweeper.Run(loops, cfg.Pipeline.SweepInterval)
	}()
	go func() {
		defer wg.Done()
		a.Janitor.Run(loops, janitorInterval)
	}()

	serveErr := make(chan error, 1)
	go func() { serveErr <- a.Server.ListenAndServe() }()

	select {
	case err = <-serveErr:
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if shutdownErr := a.Server.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	cancelLoops()
	wg.Wait()
	// cleanup drains the dispatcher before the store closes
	return err
}
