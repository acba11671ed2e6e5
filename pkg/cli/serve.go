package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Akul0725/sqlchat/pkg/adapters/datasource"
	"github.com/Akul0725/sqlchat/pkg/handlers"
	"github.com/Akul0725/sqlchat/pkg/mcp"
	"github.com/Akul0725/sqlchat/pkg/mcp/tools"
	"github.com/Akul0725/sqlchat/pkg/middleware"
	"github.com/Akul0725/sqlchat/pkg/session"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(version string, root *rootFlags, opts options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat API, the MCP endpoint and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, version, root, opts)
			if err != nil {
				return err
			}
			defer a.close()

			handler, err := newHTTPHandler(a)
			if err != nil {
				return err
			}

			listener, err := net.Listen("tcp", a.cfg.ListenAddr())
			if err != nil {
				return fmt.Errorf("listen on %s: %w", a.cfg.ListenAddr(), err)
			}
			return serve(ctx, listener, handler, a.logger)
		},
	}
}

// newHTTPHandler builds the routes served by `sqlchat serve`.
func newHTTPHandler(a *app) (http.Handler, error) {
	store, err := session.NewStore(a.cfg.Session, a.logger)
	if err != nil {
		return nil, err
	}

	hosts := datasource.NewHostPolicy(a.cfg.Database.AllowedHosts)
	if hosts.Restricted() {
		a.logger.Info("Database hosts restricted", zap.Strings("allowed_hosts", hosts.Hosts()))
	} else {
		a.logger.Warn("DATABASE_ALLOWED_HOSTS not set, clients may point the server at any database host")
	}

	mux := http.NewServeMux()

	handlers.NewHealthHandler(a.cfg, a.llm.GetModel(), a.logger).RegisterRoutes(mux)
	handlers.NewChatHandler(a.pipeline, store, hosts, a.logger).RegisterRoutes(mux)
	handlers.NewSessionHandler(store, hosts, a.logger).RegisterRoutes(mux)

	mcpServer := mcp.NewServer("sqlchat", a.cfg.Version, a.logger)
	mcpServer.RegisterTools(a.pipeline, tools.HealthInfo{
		Version: a.cfg.Version,
		Model:   a.llm.GetModel(),
		Hosts:   hosts,
	})
	handlers.NewMCPHandler(mcpServer, a.logger).RegisterRoutes(mux)

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestLogger(a.logger)(mux), nil
}

// serve runs the HTTP server on listener until ctx is cancelled, then drains
// in-flight requests.
func serve(ctx context.Context, listener net.Listener, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting sqlchat", zap.String("addr", listener.Addr().String()))
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	<-errCh
	return nil
}
