// Package observability builds the process logger and the HTTP request
// logging middleware.
package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// Level parses a level name, falling back to info when it is empty or unknown.
func Level(name string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}
	return level
}

// EncoderConfig is the JSON layout shared by every logger in the service.
func EncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		NameKey:    "logger",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		EncodeDuration: zapcore.MillisDurationEncoder,
		CallerKey:      "caller",
		EncodeCaller:   zapcore.ShortCallerEncoder,
		StacktraceKey:  "stacktrace",
	}
}

// NewLogger constructs a JSON logger whose level comes from LOG_LEVEL.
func NewLogger() (*zap.Logger, error) {
	cfg := zap.Config{
		Level:             Level(os.Getenv("LOG_LEVEL")),
		Encoding:          "json",
		EncoderConfig:     EncoderConfig(),
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: true,
	}
	return cfg.Build()
}
