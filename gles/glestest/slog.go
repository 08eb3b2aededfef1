package glestest

import (
	"context"
	"log/slog"
)

// Handler returns a slog.Handler that appends every record's message to
// log as "log <message>", so logged lifecycle steps interleave with the
// fake GL trail. All levels are enabled.
func Handler(log *Log) slog.Handler {
	return handler{log: log}
}

type handler struct {
	log *Log
}

func (h handler) Enabled(context.Context, slog.Level) bool { return true }

func (h handler) Handle(_ context.Context, r slog.Record) error {
	h.log.Add("log %s", r.Message)
	return nil
}

func (h handler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h handler) WithGroup(string) slog.Handler      { return h }
