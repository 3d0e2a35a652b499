package log

import (
	"context"
	"log/slog"
	"strings"
)

// SlogAdapter writes trace events to an slog.Logger. Successful operations
// are logged at Debug, rejections at Warn.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session", event.SessionID),
		slog.String("op", event.Operation.String()),
		slog.String("outcome", event.Outcome.String()),
	}
	if event.Catalog != "" {
		attrs = append(attrs, slog.String("catalog", event.Catalog))
	}
	if event.Input != "" {
		attrs = append(attrs, slog.String("input", event.Input))
	}
	if event.Code != "" {
		attrs = append(attrs, slog.String("code", event.Code))
	}
	if s := event.Selection; s != nil {
		attrs = append(attrs,
			slog.String("robot_type", s.RobotType),
			slog.String("robot_variant", s.RobotVariant),
			slog.String("gripper", s.Gripper),
			slog.String("protocols", strings.Join(s.Protocols, ",")),
			slog.String("addons", strings.Join(s.Addons, ",")),
		)
	}
	if event.Duration > 0 {
		attrs = append(attrs, slog.Duration("duration", event.Duration))
	}

	level := slog.LevelDebug
	if event.Error != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("error_kind", event.Error.Kind),
			slog.String("error", event.Error.Message),
		)
	}

	a.logger.LogAttrs(context.Background(), level, "speccode", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
