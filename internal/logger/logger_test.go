package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiHandler_FansOut(t *testing.T) {
	var debug, warn bytes.Buffer
	h := NewMultiHandler(
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warn, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)
	log := slog.New(h).With("component", "daemon")

	log.Debug("sweep skipped")
	log.Warn("sweep slow", "seconds", 3)

	assert.Contains(t, debug.String(), "sweep skipped")
	assert.Contains(t, debug.String(), "sweep slow")
	assert.NotContains(t, warn.String(), "sweep skipped")
	assert.Contains(t, warn.String(), "component=daemon")
	assert.Contains(t, warn.String(), "seconds=3")

	assert.True(t, h.Enabled(context.Background(), slog.LevelDebug))
}

func TestMultiHandler_Groups(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(NewMultiHandler(slog.NewTextHandler(&buf, nil))).WithGroup("http")
	log.Info("request", "status", 200)
	assert.Contains(t, buf.String(), "http.status=200")
}
