// Package cli implements the umlsvg command-line interface.
//
// The commands load a diagram document, compute link geometry through
// package pipeline and either write the result (render), print it (inspect),
// check the document (validate), let the user move boxes interactively
// (nudge) or serve renders over HTTP (serve).
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// registers log-backed observability hooks. Loggers are passed through
// context.Context so helpers can report progress without extra parameters.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
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

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time, rounded to the millisecond.
// Example output: "Rendered 4 boxes, 3 links (12ms)"
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

// logHooks writes pipeline and server events at debug level.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnLoadStart(_ context.Context, source string) {
	h.logger.Debug("load start", "source", source)
}

func (h *logHooks) OnLoadComplete(_ context.Context, source string, boxes, links int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("load complete", "source", source, "boxes", boxes, "links", links, "duration", d)
}

func (h *logHooks) OnResolve(_ context.Context, missing, skipped int) {
	h.logger.Debug("resolved links", "missing_ids", missing, "skipped", skipped)
}

func (h *logHooks) OnLayout(_ context.Context, links, labels int, d time.Duration) {
	h.logger.Debug("layout", "links", links, "labels", labels, "duration", d)
}

func (h *logHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *logHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render complete", "formats", formats, "duration", d, "err", err)
}

func (h *logHooks) OnRequest(_ context.Context, id, method, path string) {
	h.logger.Debug("request", "id", id, "method", method, "path", path)
}

func (h *logHooks) OnResponse(_ context.Context, id string, status int, d time.Duration) {
	h.logger.Debug("response", "id", id, "status", status, "duration", d)
}
