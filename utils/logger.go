package utils

import (
	"fmt"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

var globalLogger atomic.Pointer[zap.Logger]

// NewLogger builds a zap logger writing to stderr. format is "json" for
// production and "console" for a terminal; level is any zap level name.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl := zap.NewAtomicLevel()
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	var encoder zapcore.Encoder
	switch format {
	case FormatConsole:
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	case FormatJSON, "":
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), lvl)
	return zap.New(core, zap.AddStacktrace(zap.ErrorLevel)).Named("jobfill"), nil
}

// SetLogger installs l as the process-wide logger.
func SetLogger(l *zap.Logger) {
	globalLogger.Store(l)
	zap.ReplaceGlobals(l)
}

// Logger returns the process-wide logger, or a no-op logger before
// SetLogger is called.
func Logger() *zap.Logger {
	if l := globalLogger.Load(); l != nil {
		return l
	}
	return zap.NewNop()
}

func LogInfo(message string, fields ...zap.Field) {
	Logger().Info(message, fields...)
}

func LogWarn(message string, fields ...zap.Field) {
	Logger().Warn(message, fields...)
}

func LogError(message string, err error, fields ...zap.Field) {
	Logger().Error(message, append(fields, zap.Error(err))...)
}

func LogDebug(message string, fields ...zap.Field) {
	Logger().Debug(message, fields...)
}
