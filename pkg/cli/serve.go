package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vigia/pkg/cli/config"
	controller "github.com/secmon-lab/vigia/pkg/controller/http"
	"github.com/secmon-lab/vigia/pkg/service/notify"
	"github.com/secmon-lab/vigia/pkg/usecase"
	"github.com/secmon-lab/vigia/pkg/utils/async"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg    config.Server
		repoCfg      config.Repository
		lifecycleCfg config.Lifecycle
		catalogCfg   config.Catalog
	)

	flags := joinFlags(
		serverCfg.Flags(),
		repoCfg.Flags(),
		lifecycleCfg.Flags(),
		catalogCfg.Flags(),
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting vigia server",
				slog.Any("server", serverCfg),
				slog.Any("repository", repoCfg),
				slog.Any("lifecycle", lifecycleCfg),
				slog.Any("catalog", catalogCfg),
			)

			catalog, err := catalogCfg.Configure()
			if err != nil {
				return err
			}
			lifecycleConfig, err := lifecycleCfg.Configure()
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer repo.Close()

			referenceUC := usecase.NewReference(repo, catalog)
			if err := referenceUC.Seed(ctx); err != nil {
				return goerr.Wrap(err, "failed to seed reference data")
			}
			lifecycleUC := usecase.NewLifecycle(repo, notify.NewLog(), catalog, lifecycleConfig)

			server := controller.NewServer(ctx, serverCfg.Addr, lifecycleUC, referenceUC,
				controller.WithCORSOrigins(serverCfg.CORSOrigins...),
			)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server error")
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.Background(), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}
			if err := async.Wait(shutdownCtx); err != nil {
				logger.Warn("Pending notifications were not delivered", "error", err)
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
