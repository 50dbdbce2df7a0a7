package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/quatton/filesmanager/pkg/config"
	"github.com/quatton/filesmanager/pkg/fmapi"
	"github.com/quatton/filesmanager/pkg/fmapi/routes"
	"github.com/quatton/filesmanager/pkg/fmapi/services"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:     "run",
	Aliases: []string{"serve"},
	Short:   "Serve /status and /stats",
	Long: `Starts the HTTP server. Both stores are dialed in the background, so the
server comes up even when they are unreachable and reports them as down.`,
	RunE: run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.ValidateEnv()
	if err != nil {
		return err
	}

	cfg.Print(log.Printf)
	logger := newLogger(cmd, cfg)

	svcs := services.NewServices(cfg, logger)

	api := fmapi.NewApi()
	routes.RegisterAPI(api.Api, svcs)

	addr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: api.Router}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		logger.Info("OpenAPI docs", "path", "/docs")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			svcs.Close(context.Background())
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "err", err)
	}
	if err := svcs.Close(shutdownCtx); err != nil {
		logger.Error("closing stores failed", "err", err)
	}
	return nil
}
