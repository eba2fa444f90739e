package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valuechain/pkg/api"
)

// shutdownTimeout bounds how long serve waits for in-flight requests.
const shutdownTimeout = 10 * time.Second

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr    string   // listen address; empty uses server.addr from config
	backend string   // store backend; empty uses store.backend from config
	origins []string // CORS origins; empty uses server.cors_origins
}

// serveCommand creates the serve command, which exposes the configured
// store over the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve documents over HTTP",
		Long: `Serve the documents of the configured store over a JSON HTTP API.

Each request loads one document, applies one change and saves it back.
Requests for the same document are handled one at a time.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.backend, "store", "", "store backend: file, redis, mongo, memory (default from config)")
	cmd.Flags().StringSliceVar(&opts.origins, "cors-origin", nil, "allowed CORS origin (repeatable)")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	logger := loggerFromContext(ctx)

	addr := opts.addr
	if addr == "" {
		addr = c.cfg.Server.Addr
	}
	origins := opts.origins
	if len(origins) == 0 {
		origins = c.cfg.Server.CORSOrigins
	}

	st, err := c.openStore(ctx, opts.backend)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := &http.Server{
		Addr: addr,
		Handler: api.New(api.Config{
			Store:       st,
			StrictColor: c.cfg.Editor.StrictColor,
			CORSOrigins: origins,
			Middleware:  []func(http.Handler) http.Handler{requestLogger(logger)},
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	printSuccess("Listening on %s", StyleLink.Render("http://"+displayAddr(addr)))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start).Round(time.Microsecond),
				"request_id", chimiddleware.GetReqID(r.Context()),
			}
			if status >= http.StatusInternalServerError {
				logger.Error("HTTP request", fields...)
				return
			}
			logger.Info("HTTP request", fields...)
		})
	}
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
