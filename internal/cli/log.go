package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/valuechain/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs completion of an operation with the elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Pushed acme (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx, or log.Default() if none
// is attached.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Observability Hooks
// =============================================================================

// logHooks reports editor, store and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l.WithPrefix("hooks")}
	observability.SetEditorHooks(h)
	observability.SetStoreHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnMutation(_ context.Context, op string, nodes, edges int) {
	h.logger.Debug("mutation", "op", op, "nodes", nodes, "edges", edges)
}

func (h logHooks) OnImport(_ context.Context, nodes, droppedEdges, skippedNodes int, err error) {
	if err != nil {
		h.logger.Debug("import failed", "err", err)
		return
	}
	h.logger.Debug("import", "nodes", nodes, "dropped_edges", droppedEdges, "skipped_nodes", skippedNodes)
}

func (h logHooks) OnLoad(_ context.Context, backend, id string, d time.Duration, err error) {
	h.logger.Debug("store load", "backend", backend, "id", id, "took", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnSave(_ context.Context, backend, id string, size int, d time.Duration, err error) {
	h.logger.Debug("store save", "backend", backend, "id", id, "bytes", size, "took", d.Round(time.Microsecond), "err", err)
}

func (h logHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h logHooks) OnResponse(context.Context, string, string, int, time.Duration) {
	// Responses are logged by the serve command's request logger.
}
