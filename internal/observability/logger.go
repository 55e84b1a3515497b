package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger tagged with the service name. Records
// logged with a context carry the span ids and the acting user's actor_id.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env, service)
}

func newLogger(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewContextHandler(handler)).With("service", service, "env", env)
}
