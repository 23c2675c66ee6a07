package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/haydenhayden/projectzen/consts"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type loggerKeyType string

const (
	loggerKey = loggerKeyType("logger")

	memoryLogLines = 2000
)

var (
	rootLogger *zap.Logger
	memory     *memoryLogs
	lock       sync.RWMutex
)

// Options control the sinks of the root logger.
type Options struct {
	Level       string
	File        string
	LogglyToken string
}

func init() {
	lock.Lock()
	defer lock.Unlock()
	rootLogger = zap.New(consoleCore(zapcore.InfoLevel))
}

// Configure replaces the root logger. Dev mode logs everything to the console and
// keeps the latest lines in memory, production logs JSON to stderr.
func Configure(o Options) error {
	devmode := consts.IsDevMode()
	level := parseLevel(o.Level, devmode)

	var encoder zapcore.Encoder
	if devmode {
		encoder = zapcore.NewJSONEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	var cores []zapcore.Core
	var mem *memoryLogs
	if devmode {
		cores = append(cores, consoleCore(level))
		mem = NewMemoryLogger(memoryLogLines).(*memoryLogs)
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(mem), level))
	} else {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level))
	}
	if o.File != "" {
		logfile, err := os.OpenFile(o.File, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(logfile), level))
	}
	if o.LogglyToken != "" {
		loggly := NewLogglySink(o.LogglyToken)
		cores = append(cores, zapcore.NewCore(NewLogglyEncoder(), loggly, level))
	}

	lock.Lock()
	rootLogger = zap.New(zapcore.NewTee(cores...))
	memory = mem
	lock.Unlock()

	root().With(zap.Bool("devmode", devmode), zap.Stringer("level", level)).Info("Logging initialized")
	return nil
}

func consoleCore(level zapcore.LevelEnabler) zapcore.Core {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
}

func parseLevel(s string, devmode bool) zapcore.Level {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil || s == "" {
		if devmode {
			return zapcore.DebugLevel
		}
		return zapcore.InfoLevel
	}
	return level
}

func root() *zap.Logger {
	lock.RLock()
	defer lock.RUnlock()
	return rootLogger
}

// Dump writes the lines kept in memory, newest first when reverse is set.
// Nothing is written unless the logger runs in dev mode.
func Dump(w io.Writer, reverse bool) error {
	lock.RLock()
	mem := memory
	lock.RUnlock()
	if mem == nil {
		return nil
	}
	return mem.Export(w, reverse)
}

// Sync flushes the root logger.
func Sync() {
	_ = root().Sync()
}

// From returns the logger of the current context, if no logger is available, returns the root logger
func From(ctx context.Context) *zap.Logger {
	l := ctx.Value(loggerKey)
	if l == nil {
		return root()
	}
	return l.(*zap.Logger)
}

func SubFrom(ctx context.Context, name string) (*zap.Logger, context.Context) {
	logger := From(ctx).Named(name)
	return logger, Context(ctx, logger)
}

func Context(ctx context.Context, logger *zap.Logger) context.Context {
	if logger == nil {
		logger = root()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

func FromWithNameAndFields(ctx context.Context, name string, fields ...zapcore.Field) (*zap.Logger, context.Context) {
	logger := From(ctx).With(fields...).Named(name)
	ctx = Context(ctx, logger)
	return logger, ctx
}

func FromWithFields(ctx context.Context, fields ...zapcore.Field) (*zap.Logger, context.Context) {
	logger := From(ctx).With(fields...)
	ctx = Context(ctx, logger)
	return logger, ctx
}
