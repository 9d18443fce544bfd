// Package logging builds the logr.Logger used across sissim, backed by zap.
//
// Diagnostics go to stderr so stdout carries only the report. Verbose output
// is requested per call site with V(DEBUG):
//
//	logger.V(logging.DEBUG).Info("solve finished", "steps", n)
package logging

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels for logger.V().
const (
	INFO  = 0
	DEBUG = 1
)

// NewLogger returns a console logger writing to stderr. verbose enables DEBUG.
func NewLogger(verbose bool) logr.Logger {
	return NewLoggerTo(os.Stderr, verbose)
}

func NewLoggerTo(w io.Writer, verbose bool) logr.Logger {
	level := zapcore.Level(-INFO)
	if verbose {
		level = zapcore.Level(-DEBUG)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		zap.NewAtomicLevelAt(level),
	)
	return zapr.NewLogger(zap.New(core))
}

// NewTestLogger returns a logger that writes DEBUG output to the given writer,
// or discards everything when w is nil.
func NewTestLogger(w io.Writer) logr.Logger {
	if w == nil {
		return logr.Discard()
	}
	return NewLoggerTo(w, true)
}
