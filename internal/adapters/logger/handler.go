package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/tally/internal/ui/output"
	"go.trai.ch/tally/internal/ui/style"
)

// PrettyHandler is a slog.Handler producing human-readable, colored output.
// The Leveler is consulted per record, so a shared slog.LevelVar can raise
// or lower verbosity after construction.
type PrettyHandler struct {
	out   *termenv.Output
	level slog.Leveler
	attrs []slog.Attr
	group string
}

// NewPrettyHandler creates a PrettyHandler writing to w.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	if w == nil {
		w = os.Stderr
	}

	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}

	return &PrettyHandler{
		out:   output.New(w),
		level: level,
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats and outputs the log record.
//
//nolint:gocritic // slog.Handler interface requires slog.Record by value
func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	msg := levelMark(r.Level) + r.Message
	if attrs := h.renderAttrs(r); attrs != "" {
		msg += " " + attrs
	}

	styled := h.out.String(msg).Foreground(levelColor(r.Level))
	if r.Level < slog.LevelInfo {
		styled = styled.Faint()
	}

	_, err := h.out.WriteString(styled.String() + "\n")
	return err
}

// renderAttrs flattens handler-level and record-level attributes into one
// space-separated key=value string.
func (h *PrettyHandler) renderAttrs(r slog.Record) string {
	if len(h.attrs) == 0 && r.NumAttrs() == 0 {
		return ""
	}

	var sb strings.Builder
	write := func(attr slog.Attr) bool {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		if h.group != "" {
			sb.WriteString(h.group)
			sb.WriteByte('.')
		}
		sb.WriteString(attr.Key)
		sb.WriteByte('=')
		sb.WriteString(attr.Value.String())
		return true
	}

	for _, attr := range h.attrs {
		write(attr)
	}
	r.Attrs(write)
	return sb.String()
}

// WithAttrs returns a new Handler with the given attributes appended.
func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := h.clone()
	c.attrs = append(c.attrs, attrs...)
	return c
}

// WithGroup returns a new Handler with the given group name.
func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	c := h.clone()
	c.group = name
	return c
}

func (h *PrettyHandler) clone() *PrettyHandler {
	c := *h
	c.attrs = slices.Clone(h.attrs)
	return &c
}

func levelMark(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return style.Cross + " "
	case level >= slog.LevelWarn:
		return style.Warning + " "
	default:
		return ""
	}
}

func levelColor(level slog.Level) termenv.Color {
	switch {
	case level >= slog.LevelError:
		return termenv.RGBColor(string(style.Red))
	case level >= slog.LevelWarn:
		return termenv.RGBColor(string(style.Yellow))
	default:
		return termenv.RGBColor(string(style.Slate))
	}
}
