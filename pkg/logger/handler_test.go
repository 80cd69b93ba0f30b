package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type brokenHandler struct{ slog.Handler }

func (brokenHandler) Handle(context.Context, slog.Record) error { return errors.New("broken") }

func TestFanoutHandler(t *testing.T) {
	t.Parallel()

	var infoBuf, errBuf bytes.Buffer
	info := slog.NewJSONHandler(&infoBuf, &slog.HandlerOptions{Level: slog.LevelInfo})
	errOnly := slog.NewJSONHandler(&errBuf, &slog.HandlerOptions{Level: slog.LevelError})
	broken := brokenHandler{Handler: slog.NewJSONHandler(&bytes.Buffer{}, nil)}

	h := newFanoutHandler(broken, info, errOnly)
	require.True(t, h.Enabled(context.Background(), slog.LevelInfo))

	rec := slog.NewRecord(time.Now(), slog.LevelInfo, "info record", 0)
	err := h.Handle(context.Background(), rec)
	require.EqualError(t, err, "broken")
	require.Contains(t, infoBuf.String(), "info record")
	require.Zero(t, errBuf.Len())

	grouped := h.WithGroup("g").WithAttrs([]slog.Attr{slog.String("k", "v")})
	rec = slog.NewRecord(time.Now(), slog.LevelError, "error record", 0)
	_ = grouped.Handle(context.Background(), rec)
	require.Contains(t, errBuf.String(), `"g":{"k":"v"}`)
}
