package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide JSON logger. Log records carry the
// trace/span IDs of the active span so log lines can be joined with traces.
func NewLogger(env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewTraceHandler(handler)).With(
		slog.String("service", "accounts-api"),
	)
}
