package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nativeui-go/nativeui/pkg/log"
)

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (must be debug, info, warn, or error)", s)
	}
}

// loggers bundles the diagnostics and protocol loggers of one run.
type loggers struct {
	slog     *slog.Logger
	zap      *zap.Logger
	protocol log.Logger
	file     *log.FileLogger
}

// setupLogging builds the loggers for cfg. Diagnostics go to w. Protocol
// events go to the -protocol-log file and, at debug level, to the console.
func setupLogging(cfg Config, w io.Writer) (*loggers, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	l := &loggers{}
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.LogFormat {
	case "json":
		l.slog = slog.New(slog.NewJSONHandler(w, opts))
	default:
		l.slog = slog.New(slog.NewTextHandler(w, opts))
	}

	var console log.Logger
	if cfg.LogFormat == "zap" {
		l.zap = newZapLogger(w, level)
		console = log.NewZapAdapter(l.zap)
	} else if level <= slog.LevelDebug {
		console = log.NewSlogAdapter(l.slog)
	}

	if cfg.ProtocolLog != "" {
		l.file, err = log.NewFileLogger(cfg.ProtocolLog)
		if err != nil {
			return nil, fmt.Errorf("open protocol log: %w", err)
		}
	}

	var file log.Logger
	if l.file != nil {
		file = l.file
	}
	if multi := log.NewMultiLogger(console, file); multi.Len() > 0 {
		l.protocol = multi
	}
	return l, nil
}

// newZapLogger creates a console zap logger writing to w at level.
func newZapLogger(w io.Writer, level slog.Level) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zapLevel(level))
	return zap.New(core)
}

func zapLevel(level slog.Level) zapcore.Level {
	switch {
	case level <= slog.LevelDebug:
		return zapcore.DebugLevel
	case level <= slog.LevelInfo:
		return zapcore.InfoLevel
	case level <= slog.LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

// Close flushes and closes the protocol log.
func (l *loggers) Close() error {
	if l.zap != nil {
		_ = l.zap.Sync()
	}
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
