package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON to stdout, debug in dev, with
// trace/span ids stamped on every record that carries a span context.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// credentials never reach the log stream, whatever the call site passed
			switch a.Key {
			case "password", "password_hash", "token", "cookie":
				return slog.String(a.Key, "[redacted]")
			}
			return a
		},
	})

	return slog.New(NewTraceHandler(handler)).With("service", ServiceName)
}
