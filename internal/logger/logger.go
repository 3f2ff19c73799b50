package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FieldSession is the structured log field key for the screening session id.
	FieldSession = "session_id"
	// FieldCandidate is the structured log field key for the candidate id.
	FieldCandidate = "candidate_id"
)

func New(json bool, debug bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	encoding := "console"

	if json {
		encoding = "json"
	}

	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.Config{
		Encoding:         encoding,
		Level:            zap.NewAtomicLevelAt(level),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey: "step",

			LevelKey:    "level",
			EncodeLevel: zapcore.LowercaseLevelEncoder,

			TimeKey:    "time",
			EncodeTime: zapcore.RFC3339TimeEncoder,

			CallerKey:    "caller",
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	defer logger.Sync()

	return logger, nil
}

// WithCandidate attaches the candidate id to the logger, defaulting to a
// no-op logger when nil to avoid panics in optional logging paths.
func WithCandidate(logger *zap.Logger, candidateID string) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	candidateID = strings.TrimSpace(candidateID)
	if candidateID == "" {
		return logger
	}

	return logger.With(zap.String(FieldCandidate, candidateID))
}
