package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON zap logger tagged with the service name.
// Debug mode keeps JSON output but lowers the level to debug.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.InitialFields = map[string]any{"service": "regattaapi"}
	return cfg.Build()
}

// Race returns a child logger carrying the race and regatta ids.
func Race(l *zap.Logger, regattaID, raceID int) *zap.Logger {
	return l.With(zap.Int("regatta_id", regattaID), zap.Int("race_id", raceID))
}
