package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/serroba/link-lifecycle/internal/analytics/store"
	"github.com/serroba/link-lifecycle/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_SaveActivity(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := store.NewLog(zap.New(core))

	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{level: shortener.LevelInfo, want: zapcore.InfoLevel},
		{level: shortener.LevelWarn, want: zapcore.WarnLevel},
		{level: shortener.LevelError, want: zapcore.ErrorLevel},
		{level: "", want: zapcore.InfoLevel},
	}

	for _, tt := range tests {
		err := log.SaveActivity(context.Background(), &shortener.Activity{
			Timestamp: time.Now(),
			Kind:      shortener.KindLinkCreated,
			Message:   "URL shortened successfully",
			Level:     tt.level,
		})
		require.NoError(t, err)
	}

	entries := logs.All()
	require.Len(t, entries, len(tests))

	for i, tt := range tests {
		assert.Equal(t, tt.want, entries[i].Level)
		assert.Equal(t, "URL shortened successfully", entries[i].Message)
		assert.Equal(t, shortener.KindLinkCreated, entries[i].ContextMap()["kind"])
	}
}
