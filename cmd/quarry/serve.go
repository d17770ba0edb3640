package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quarrydocs/quarry/internal/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the manager over HTTP",
	Long: `Start the HTTP API: POST /api/v1/execute runs requests, and
POST /webhooks/github validates the corpus on pull requests and pushes.
Set QUARRY_WEBHOOK_SECRET to require signed webhook deliveries.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Local .env is optional; real deployments set the environment.
		_ = godotenv.Load()

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		addr := serveAddr
		if addr == "" {
			addr = os.Getenv("QUARRY_ADDR")
		}
		if addr == "" {
			addr = ":8080"
		}

		m := newManager()
		api := httpapi.NewServer(m, os.Getenv("QUARRY_WEBHOOK_SECRET"), slog.Default())

		server := &http.Server{
			Addr:              addr,
			Handler:           api.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("http server listening", "addr", addr, "root", m.Root())
			errCh <- server.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				fatal("Server failed", err)
			}
		case <-ctx.Done():
			slog.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				fatal("Shutdown failed", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default QUARRY_ADDR or :8080)")
}
