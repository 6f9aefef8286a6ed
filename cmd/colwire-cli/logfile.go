package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// openVerboseLogger builds the zap.Logger used when -v is set: stderr by
// default, or a rotating file sink when -log-file names one.
func openVerboseLogger(path string) (*zap.Logger, error) {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())

	var sink zapcore.WriteSyncer
	if path == "" {
		sink = zapcore.Lock(os.Stderr)
	} else {
		// lumberjack.Logger is already safe for concurrent use, so it
		// doesn't need zapcore.Lock.
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   path,
			MaxSize:    5, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	core := zapcore.NewCore(encoder, sink, zapcore.DebugLevel)
	return zap.New(core, zap.Development()), nil
}
