package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/intertest/internal/server"
	"github.com/abhisek/intertest/internal/testgen"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the interview-test generator over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")

		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		// A request may walk the whole priority list.
		requestTimeout := time.Duration(len(rt.providers)+1) * rt.cfg.Timeout

		gen := testgen.New(rt.dispatcher, testgen.DefaultConfig())
		srv := server.New(server.Options{
			RequestTimeout: requestTimeout,
			AllowedOrigins: origins,
		}, gen, rt.providers, rt.logger)

		httpServer := &http.Server{
			Addr:         addr,
			Handler:      srv.Router(),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: requestTimeout + 15*time.Second,
			IdleTimeout:  60 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			rt.logger.WithField("addr", addr).Info("HTTP server starting")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return err
			}
		case <-ctx.Done():
		}

		rt.logger.Info("shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			rt.logger.WithError(err).Error("HTTP server shutdown error")
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "Listen address")
	serveCmd.Flags().StringSlice("cors-origin", nil, "Allowed CORS origins (default any)")
}
