package main

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// =============================================================================
// Logging
// =============================================================================

// logFileName returns the name of the log file for a run started at start,
// e.g. organise-photos-20200517_14h03m22.log.
func logFileName(start time.Time) string {
	return fmt.Sprintf("organise-photos-%s.log", start.Format("20060102_15h04m05"))
}

// newRunLogger returns a logger that writes to console and appends to a
// log file in dir named after the run start time, with console and JSON
// encoders respectively. The returned func flushes the logger and closes the
// file; it must be called once the run is over.
func newRunLogger(dir string, start time.Time, console io.Writer) (*zap.Logger, func(), error) {
	path := filepath.Join(dir, logFileName(start))
	fileOut, closeFile, err := zap.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file %s: %w", path, err)
	}

	consoleOut := zapcore.Lock(zapcore.AddSync(console))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = func(ts time.Time, encoder zapcore.PrimitiveArrayEncoder) {
		encoder.AppendString(ts.Format("2006/01/02 15:04:05.000"))
	}
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(encCfg)

	fileEncCfg := zap.NewProductionEncoderConfig()
	fileEncCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	jsonEncoder := zapcore.NewJSONEncoder(fileEncCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(consoleEncoder, consoleOut, zap.InfoLevel),
		zapcore.NewCore(jsonEncoder, fileOut, zap.InfoLevel),
	)
	logger := zap.New(core, zap.AddStacktrace(zap.ErrorLevel))

	return logger, func() {
		_ = logger.Sync()
		closeFile()
	}, nil
}
