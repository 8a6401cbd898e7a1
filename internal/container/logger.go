package container

import (
	"os"

	"github.com/samber/do"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LoggerPackage provides the shared *zap.Logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		return NewLogger(opts.LogFormat, opts.LogFile), nil
	})
}

// NewLogger builds a logger writing to stdout in the given format and, when file is set, JSON
// lines to a size-rotated file.
func NewLogger(format, file string) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	var encoder zapcore.Encoder
	if format == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)}

	if file != "" {
		rotating := zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
		})
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), rotating, level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller())
}
