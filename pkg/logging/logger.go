// Copyright (c) 2024 The Gnet Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging provides the diagnostics channel of pktscan,
// it sets up a default logger (powered by go.uber.org/zap) writing to stderr,
// and allows users to replace it with their own by implementing the `Logger`
// interface and passing it to `pktscan.WithLogger`.
//
// The environment variable `PKTSCAN_LOGGING_LEVEL` determines which zap logger level will be applied for logging,
// it accepts either a level name (debug, info, warn, error) or its integer value.
// The environment variable `PKTSCAN_LOGGING_FILE` is set to a local file path when you want to print logs into local file.
package logging

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Flusher is the callback function which flushes any buffered log entries to the underlying writer.
// It is usually called before the process exits.
type Flusher = func() error

var (
	mu                  sync.RWMutex
	defaultLogger       Logger
	defaultLoggingLevel Level
	defaultFlusher      Flusher
)

// Level is the alias of zapcore.Level.
type Level = zapcore.Level

const (
	// DebugLevel logs are typically voluminous, and are usually disabled in
	// production.
	DebugLevel = zapcore.DebugLevel
	// InfoLevel is the default logging priority.
	InfoLevel = zapcore.InfoLevel
	// WarnLevel logs are more important than Info, but don't need individual
	// human review.
	WarnLevel = zapcore.WarnLevel
	// ErrorLevel logs are high-priority. If an application is running smoothly,
	// it shouldn't generate any error-level logs.
	ErrorLevel = zapcore.ErrorLevel
	// FatalLevel logs a message, then calls os.Exit(1).
	FatalLevel = zapcore.FatalLevel
)

func init() {
	if lvl := os.Getenv("PKTSCAN_LOGGING_LEVEL"); len(lvl) > 0 {
		loggingLevel, err := ParseLevel(lvl)
		if err != nil {
			panic("invalid PKTSCAN_LOGGING_LEVEL, " + err.Error())
		}
		defaultLoggingLevel = loggingLevel
	}

	// Initializes the inside default logger of pktscan.
	if fileName := os.Getenv("PKTSCAN_LOGGING_FILE"); len(fileName) > 0 {
		var err error
		defaultLogger, defaultFlusher, err = CreateLoggerAsLocalFile(fileName, defaultLoggingLevel)
		if err != nil {
			panic("invalid PKTSCAN_LOGGING_FILE, " + err.Error())
		}
	} else {
		defaultLogger, defaultFlusher = CreateLoggerAsWriter(os.Stderr, defaultLoggingLevel)
	}
}

// ParseLevel parses a level name such as "warn" or its integer zap value such as "1".
func ParseLevel(s string) (Level, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 8); err == nil {
		lvl := Level(n)
		if lvl < DebugLevel || lvl > FatalLevel {
			return InfoLevel, errors.New("logging level out of range: " + s)
		}
		return lvl, nil
	}
	var lvl Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return InfoLevel, err
	}
	return lvl, nil
}

type prefixEncoder struct {
	zapcore.Encoder

	prefix  string
	bufPool buffer.Pool
}

func (e *prefixEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := e.bufPool.Get()

	buf.AppendString(e.prefix)
	buf.AppendString(" ")

	logEntry, err := e.Encoder.EncodeEntry(entry, fields)
	if err != nil {
		return nil, err
	}

	_, err = buf.Write(logEntry.Bytes())
	logEntry.Free()
	if err != nil {
		return nil, err
	}

	return buf, nil
}

func newEncoder(base zapcore.EncoderConfig) zapcore.Encoder {
	base.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	base.EncodeLevel = zapcore.CapitalLevelEncoder
	return &prefixEncoder{
		Encoder: zapcore.NewConsoleEncoder(base),
		prefix:  "[pktscan]",
		bufPool: buffer.NewPool(),
	}
}

// CreateLoggerAsWriter sets up a console logger writing to w, usually os.Stderr.
func CreateLoggerAsWriter(w io.Writer, logLevel Level) (Logger, Flusher) {
	core := zapcore.NewCore(newEncoder(zap.NewDevelopmentEncoderConfig()), zapcore.Lock(zapcore.AddSync(w)), logLevel)
	zapLogger := zap.New(core, zap.AddStacktrace(FatalLevel))
	return zapLogger.Sugar(), zapLogger.Sync
}

// CreateLoggerAsLocalFile sets up the logger by local file path, the file is rotated by lumberjack.
func CreateLoggerAsLocalFile(localFilePath string, logLevel Level) (logger Logger, flush Flusher, err error) {
	if len(localFilePath) == 0 {
		return nil, nil, errors.New("invalid local logger path")
	}

	// lumberjack.Logger is already safe for concurrent use, so we don't need to lock it.
	lumberJackLogger := &lumberjack.Logger{
		Filename:   localFilePath,
		MaxSize:    100, // megabytes
		MaxBackups: 2,
		MaxAge:     15, // days
	}

	levelEnabler := zap.LevelEnablerFunc(func(level Level) bool {
		return level >= logLevel
	})
	core := zapcore.NewCore(newEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(lumberJackLogger), levelEnabler)
	zapLogger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(ErrorLevel))
	logger = zapLogger.Sugar()
	flush = func() error {
		_ = zapLogger.Sync()
		return lumberJackLogger.Close()
	}
	return
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return zap.NewNop().Sugar()
}

// GetDefaultLogger returns the default logger.
func GetDefaultLogger() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return defaultLogger
}

// GetDefaultFlusher returns the default flusher.
func GetDefaultFlusher() Flusher {
	mu.RLock()
	defer mu.RUnlock()
	return defaultFlusher
}

// SetDefaultLoggerAndFlusher replaces the default logger and its flusher.
// The previous flusher is not called, flush it first if it holds anything.
func SetDefaultLoggerAndFlusher(logger Logger, flusher Flusher) {
	mu.Lock()
	defaultLogger, defaultFlusher = logger, flusher
	mu.Unlock()
}

// LogLevel tells what the default logging level is.
func LogLevel() string {
	return defaultLoggingLevel.String()
}

// Cleanup flushes the default logger, it is meant to be called before the process exits.
func Cleanup() {
	if flush := GetDefaultFlusher(); flush != nil {
		_ = flush()
	}
}

// Debugf logs messages at DEBUG level.
func Debugf(format string, args ...interface{}) {
	GetDefaultLogger().Debugf(format, args...)
}

// Errorf logs messages at ERROR level.
func Errorf(format string, args ...interface{}) {
	GetDefaultLogger().Errorf(format, args...)
}

// Logger is used for logging formatted messages.
type Logger interface {
	// Debugf logs messages at DEBUG level.
	Debugf(format string, args ...interface{})
	// Infof logs messages at INFO level.
	Infof(format string, args ...interface{})
	// Warnf logs messages at WARN level.
	Warnf(format string, args ...interface{})
	// Errorf logs messages at ERROR level.
	Errorf(format string, args ...interface{})
	// Fatalf logs messages at FATAL level.
	Fatalf(format string, args ...interface{})
}
