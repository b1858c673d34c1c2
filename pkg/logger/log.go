package logger

import "go.uber.org/zap"

// NewLogger builds the application logger: console encoding on stdout,
// debug level. Callers inject the instance; nothing here is global.
func NewLogger() *zap.Logger {
	cfg := zap.Config{
		Encoding:         "console",
		Level:            zap.NewAtomicLevelAt(zap.DebugLevel),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
		EncoderConfig:    zap.NewProductionEncoderConfig(),
	}

	log, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return log
}
