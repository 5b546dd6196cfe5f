// Package logging builds the single zap logger shared by every worker in
// the differential engine, following the teacher's structured-correlation
// style (internal/wal's per-event zap.L().With(...) chains).
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap logger unless debug is set, in which
// case it uses the more verbose development encoder.
func New(debug bool) (*zap.Logger, error) {
	if debug {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}
	return zap.NewProduction()
}

// Values groups a set of zap.Fields under a single named object field, so a
// worker can attach a whole batch of context without flattening it into the
// top-level log line. Kept from the teacher's internal/logutil helper.
func Values(name string, fields ...zap.Field) zap.Field {
	return zap.Object(name, zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for _, f := range fields {
			f.AddTo(enc)
		}
		return nil
	}))
}
