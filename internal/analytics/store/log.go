package store

import (
	"context"

	"github.com/serroba/link-lifecycle/internal/shortener"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log writes activities to the logger at their own level.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log-only activity store.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) SaveActivity(_ context.Context, activity *shortener.Activity) error {
	l.logger.Log(levelOf(activity.Level), activity.Message,
		zap.String("kind", activity.Kind),
		zap.Time("timestamp", activity.Timestamp),
		zap.Any("data", activity.Data),
	)

	return nil
}

func levelOf(level string) zapcore.Level {
	switch level {
	case shortener.LevelWarn:
		return zapcore.WarnLevel
	case shortener.LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
