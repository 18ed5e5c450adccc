package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiHandlerRespectsEachLevel(t *testing.T) {
	var info, errs bytes.Buffer
	logger := slog.New(NewMultiHandler(
		slog.NewJSONHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewJSONHandler(&errs, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	logger.Info("client soft-deleted", "op", "client.soft_delete")
	logger.Error("hard delete failed", "op", "client.hard_delete")

	assert.Contains(t, info.String(), "client soft-deleted")
	assert.Contains(t, info.String(), "hard delete failed")
	assert.NotContains(t, errs.String(), "client soft-deleted")
	assert.Contains(t, errs.String(), "hard delete failed")
}

func TestMultiHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewMultiHandler(slog.NewJSONHandler(&buf, nil))).With("request_id", "abc")
	logger.Info("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "abc", line["request_id"])
}

func TestToSystemLogLiftsLifecycleAttrs(t *testing.T) {
	record := slog.NewRecord(time.Now(), slog.LevelError, "order create failed", 0)
	record.AddAttrs(
		slog.String("op", "order.create"),
		slog.String("entity_id", "c-1"),
		slog.String("profile_id", "p-1"),
		slog.Any("error", errors.New("store unavailable")),
		slog.Int("items", 3),
	)

	entry := toSystemLog(record, []slog.Attr{slog.String("request_id", "r-1")})
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "order.create", entry.Op)
	assert.Equal(t, "c-1", entry.EntityID)
	assert.Equal(t, "r-1", entry.RequestID)
	require.NotNil(t, entry.ProfileID)
	assert.Equal(t, "p-1", *entry.ProfileID)
	assert.Equal(t, "store unavailable", entry.Error)

	var extra map[string]any
	require.NoError(t, json.Unmarshal(entry.Extra, &extra))
	assert.EqualValues(t, 3, extra["items"])
}

func TestPGHandlerOnlyHandlesErrors(t *testing.T) {
	h := &PGHandler{}
	assert.False(t, h.Enabled(context.Background(), slog.LevelWarn))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

type failingHandler struct{ slog.Handler }

func (failingHandler) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestMultiHandlerKeepsGoingWhenASinkFails(t *testing.T) {
	var buf bytes.Buffer
	h := NewMultiHandler(
		failingHandler{Handler: slog.NewJSONHandler(io.Discard, nil)},
		nil,
		slog.NewJSONHandler(&buf, nil),
	)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "boom", 0))
	assert.EqualError(t, err, "sink down")
	assert.Contains(t, buf.String(), "boom")
}

func TestStartCleanupDisabledForZeroRetention(t *testing.T) {
	scheduler, err := StartCleanup(nil, 0)
	require.NoError(t, err)
	assert.Nil(t, scheduler)
}
