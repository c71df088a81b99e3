// Package logger builds the process-wide zap logger.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu    sync.RWMutex
	sugar = zap.NewNop().Sugar()
)

// Conf holds logger configuration.
type Conf struct {
	Output     string // stdout | file
	Path       string
	Filename   string
	Level      string
	JSON       bool
	RotateSize int // MB
	RotateNum  int
	KeepDays   int
}

// New builds a logger from conf and installs it as the global logger.
func New(conf Conf) (*zap.Logger, error) {
	var writer zapcore.WriteSyncer
	switch conf.Output {
	case "file":
		if conf.Path == "" {
			return nil, fmt.Errorf("log path is required when output is 'file'")
		}
		writer = zapcore.AddSync(fileWriter(conf))
	default:
		writer = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(encoder(conf.JSON), writer, ParseLevel(conf.Level))
	l := zap.New(core, zap.AddCaller())

	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()

	return l, nil
}

// L returns the global sugared logger. It is a no-op logger until New is called.
func L() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

// Set replaces the global logger. Tests use it to capture output.
func Set(l *zap.Logger) {
	mu.Lock()
	sugar = l.Sugar()
	mu.Unlock()
}

// ParseLevel maps a textual level to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoder(json bool) zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "time"
	cfg.MessageKey = "msg"
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder
	cfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	if json {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

func fileWriter(conf Conf) *lumberjack.Logger {
	name := conf.Filename
	if name == "" {
		name = "projecthub.log"
	}
	size, backups, age := conf.RotateSize, conf.RotateNum, conf.KeepDays
	if size <= 0 {
		size = 100
	}
	if backups <= 0 {
		backups = 10
	}
	if age <= 0 {
		age = 7
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(conf.Path, name),
		MaxSize:    size,
		MaxBackups: backups,
		MaxAge:     age,
		Compress:   true,
	}
}
