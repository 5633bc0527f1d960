package logger

import (
	"go.uber.org/zap"
)

// Log is a no-op until Init is called, so library code and tests can log
// without wiring a logger first.
var Log = zap.NewNop().Sugar()

func Init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize zap logger: " + err.Error())
	}
	Log = logger.Sugar()
}

// Sync flushes buffered log entries, for use on shutdown.
func Sync() {
	_ = Log.Sync()
}
