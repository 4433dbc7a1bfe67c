package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger implements Logger on top of a zap core.
type ZapLogger struct {
	log *zap.Logger
}

var _ Logger = (*ZapLogger)(nil)

// New builds a zap-backed logger. env "production" selects the JSON encoder,
// anything else the development console encoder. level accepts the usual
// debug/info/warn/error strings.
func New(level, env string) (*ZapLogger, error) {
	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(env), "production") {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &ZapLogger{log: log}, nil
}

// Sync flushes buffered log entries; call on shutdown.
func (z *ZapLogger) Sync() error {
	return z.log.Sync()
}

func (z *ZapLogger) DebugObj(msg, event string, fields map[string]any) {
	z.log.Debug(msg, toZapFields(event, fields)...)
}

func (z *ZapLogger) InfoObj(msg, event string, fields map[string]any) {
	z.log.Info(msg, toZapFields(event, fields)...)
}

func (z *ZapLogger) WarnObj(msg, event string, fields map[string]any) {
	z.log.Warn(msg, toZapFields(event, fields)...)
}

func (z *ZapLogger) ErrorObj(msg, event string, fields map[string]any) {
	z.log.Error(msg, toZapFields(event, fields)...)
}

// toZapFields flattens the field map into zap fields with the event tag
// first. Keys are sorted so log lines stay byte-stable for identical input.
func toZapFields(event string, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+1)
	out = append(out, zap.String("event", event))

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		out = append(out, zap.Any(k, fields[k]))
	}
	return out
}
