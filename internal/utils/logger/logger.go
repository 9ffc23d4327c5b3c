package logger

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dwarvesf/ape-bridge-backend/internal/types/environments"
)

// Logger wraps zap with string-map fields. Messages follow "[Func][Step] text".
type Logger struct {
	wrappedLogger *zap.Logger
}

var configs = map[environments.Environment]func() zap.Config{
	environments.Development: newDevelopmentLoggerConfig,
	environments.Test:        newTestLoggerConfig,
	environments.Staging:     newStagingLoggerConfig,
	environments.Production:  newProductionLoggerConfig,
}

// New builds the logger for env; unknown environments get the production config.
func New(env environments.Environment) *Logger {
	newConfig, ok := configs[env]
	if !ok {
		newConfig = newProductionLoggerConfig
	}

	zapLogger, err := newConfig().Build()
	if err != nil {
		panic(err)
	}

	return NewFromZap(zapLogger)
}

// NewFromZap wraps an existing zap logger, e.g. one backed by an observer core in tests.
func NewFromZap(zapLogger *zap.Logger) *Logger {
	return &Logger{
		wrappedLogger: zapLogger,
	}
}

// With returns a child logger that adds fields to every entry.
func (l *Logger) With(fields map[string]string) *Logger {
	return &Logger{
		wrappedLogger: l.wrappedLogger.With(transformStrMapToFields(fields)...),
	}
}

func (l *Logger) Debug(msg string, inputFields ...map[string]string) {
	l.log(zapcore.DebugLevel, msg, inputFields)
}

func (l *Logger) Info(msg string, inputFields ...map[string]string) {
	l.log(zapcore.InfoLevel, msg, inputFields)
}

func (l *Logger) Warn(msg string, inputFields ...map[string]string) {
	l.log(zapcore.WarnLevel, msg, inputFields)
}

func (l *Logger) Error(msg string, inputFields ...map[string]string) {
	l.log(zapcore.ErrorLevel, msg, inputFields)
}

// Fatal logs and exits the process.
func (l *Logger) Fatal(msg string, inputFields ...map[string]string) {
	l.log(zapcore.FatalLevel, msg, inputFields)
}

// Sync flushes buffered entries; call before exit.
func (l *Logger) Sync() error {
	return l.wrappedLogger.Sync()
}

func (l *Logger) log(level zapcore.Level, msg string, inputFields []map[string]string) {
	ce := l.wrappedLogger.Check(level, msg)
	if ce == nil {
		return
	}

	var fields []zap.Field
	if len(inputFields) > 0 {
		fields = transformStrMapToFields(inputFields[0])
	}
	ce.Write(fields...)
}

// transformStrMapToFields emits fields in key order so entries are stable.
func transformStrMapToFields(strMap map[string]string) []zap.Field {
	keys := make([]string, 0, len(strMap))
	for k := range strMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, zap.String(k, strMap[k]))
	}
	return fields
}
