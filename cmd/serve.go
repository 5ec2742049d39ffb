package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/khanhnv2901/secheaders/internal/api"
	"github.com/khanhnv2901/secheaders/internal/checker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the header analyzer as a REST API service",
	Annotations: map[string]string{logLevelAnnotation: "info"},
	RunE: func(cmd *cobra.Command, args []string) error {
		appCtx := getAppContext(cmd)
		cfg := appCtx.Config.Serve

		logger := zap.NewNop()
		if appCtx.Logger != nil {
			logger = appCtx.Logger.Desugar()
		}

		if !verbose {
			gin.SetMode(gin.ReleaseMode)
		}

		server := newAPIServer(appCtx, cfg, logger)
		defer server.Close()

		httpServer := &http.Server{
			Addr:         cfg.Addr,
			Handler:      server,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  120 * time.Second,
		}

		// Channel to listen for errors from the server
		serverErrors := make(chan error, 1)

		out := cmd.OutOrStdout()
		go func() {
			fmt.Fprintf(out, "%s API server listening on %s (%d catalog headers)\n", colorInfo("→"), cfg.Addr, appCtx.Catalog.Len())
			fmt.Fprintf(out, "%s Press Ctrl+C to gracefully shutdown\n", colorInfo("→"))
			serverErrors <- httpServer.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		// Block until we receive a signal or an error
		select {
		case err := <-serverErrors:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
		case sig := <-shutdown:
			fmt.Fprintf(out, "\n%s Received signal %v, initiating graceful shutdown...\n", colorInfo("→"), sig)

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(ctx); err != nil {
				// Force close if graceful shutdown fails
				if closeErr := httpServer.Close(); closeErr != nil {
					return fmt.Errorf("failed to gracefully shutdown server: %w (close error: %v)", err, closeErr)
				}
				return fmt.Errorf("failed to gracefully shutdown server: %w", err)
			}

			fmt.Fprintf(out, "%s Server shutdown complete\n", colorInfo("✓"))
		}

		return nil
	},
}

// newAPIServer wires the header checker into the HTTP API.
func newAPIServer(appCtx *AppContext, cfg ServeConfig, logger *zap.Logger) *api.Server {
	timeout := time.Duration(appCtx.Config.Analyze.TimeoutSecs) * time.Second
	chk := &checker.HeaderChecker{
		Resolver: newResolver(timeout, logger),
		Catalog:  appCtx.Catalog,
		Logger:   logger,
		Timeout:  timeout,
	}
	return api.NewServer(api.Config{
		Checker:     chk,
		Catalog:     appCtx.Catalog,
		AuthToken:   cfg.AuthToken,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&cliConfig.Serve.Addr, "addr", cliConfig.Serve.Addr, "Address for the API server")
	flags.StringVar(&cliConfig.Serve.AuthToken, "auth-token", "", "Optional shared secret for API requests")
	flags.DurationVar(&cliConfig.Serve.ShutdownTimeout, "shutdown-timeout", cliConfig.Serve.ShutdownTimeout, "Graceful shutdown timeout")
	flags.StringSliceVar(&cliConfig.Serve.CORSOrigins, "cors-origins", []string{}, "Allowed CORS origins (empty = allow all)")
	flags.IntVar(&cliConfig.Serve.RateLimit, "rate-limit", cliConfig.Serve.RateLimit, "Rate limit per IP (requests/second, 0 = disabled)")
	flags.IntVar(&cliConfig.Serve.RateBurst, "rate-burst", cliConfig.Serve.RateBurst, "Rate limit burst size")
}
