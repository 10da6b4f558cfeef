// Copyright 2018 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging builds the zap loggers used by the command line tools.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func normaliseWriters(writers ...zapcore.WriteSyncer) zapcore.WriteSyncer {
	if len(writers) == 1 {
		return writers[0]
	}
	return zapcore.NewMultiWriteSyncer(writers...)
}

func encoderConfig(levelEncoder zapcore.LevelEncoder) zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "ts",
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// NewJSONLogger creates a `zap.SugaredLogger` configured for JSON output to `writers`
func NewJSONLogger(level zapcore.Level, writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	enc := zapcore.NewJSONEncoder(encoderConfig(zapcore.LowercaseLevelEncoder))
	return zap.New(zapcore.NewCore(enc, normaliseWriters(writers...), level)).Sugar()
}

// NewConsoleLogger creates a `zap.SugaredLogger` configured for human-readable output to `writers`.
// Levels are coloured only when every writer is a terminal.
func NewConsoleLogger(level zapcore.Level, writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	levelEncoder := zapcore.LowercaseLevelEncoder
	if allTerminals(writers) {
		levelEncoder = zapcore.LowercaseColorLevelEncoder
	}
	enc := zapcore.NewConsoleEncoder(encoderConfig(levelEncoder))
	return zap.New(zapcore.NewCore(enc, normaliseWriters(writers...), level)).Sugar()
}

func allTerminals(writers []zapcore.WriteSyncer) bool {
	if len(writers) == 0 {
		return false
	}
	for _, w := range writers {
		f, ok := w.(*os.File)
		if !ok || !isCharacterDevice(f) {
			return false
		}
	}
	return true
}

// isCharacterDevice reports whether f is a terminal
func isCharacterDevice(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice != 0
}

// New picks the logger for the command line flags: debug output when verbose, JSON when json is
// set and the console format otherwise.
func New(verbose, json bool, writers ...zapcore.WriteSyncer) *zap.SugaredLogger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	if json {
		return NewJSONLogger(level, writers...)
	}
	return NewConsoleLogger(level, writers...)
}
