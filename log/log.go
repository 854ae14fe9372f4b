// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the small leveled-logging interface used across the
// swfabc module, backed by go.uber.org/zap's sugared logger.
package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level identifies the severity of a log entry.
type Level int8

// Log levels, lowest to highest severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// Logger is the minimal structured-logging surface the abc and swf packages
// depend on. It is satisfied by *Helper and by anything wrapping a
// third-party logger with the same verbs.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Helper filters log entries below Level before forwarding them to the
// wrapped zap.SugaredLogger. It mirrors the Logger/Filter/Helper split
// callers of this module already expect from saferwall/pe's log package.
type Helper struct {
	sugar *zap.SugaredLogger
	level Level
}

// NewHelper wraps a zap logger with a severity filter. Entries below level
// are dropped; the zero Level is LevelDebug, which forwards everything.
func NewHelper(sugar *zap.SugaredLogger, level Level) *Helper {
	return &Helper{sugar: sugar, level: level}
}

// NewStdHelper builds a Helper writing to stderr at the given level, for
// callers that don't want to construct their own zap.Logger.
func NewStdHelper(level Level) *Helper {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(os.Stderr), zapZapLevel(level))
	return &Helper{sugar: zap.New(core).Sugar(), level: level}
}

func zapZapLevel(l Level) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelInfo:
		return zapcore.InfoLevel
	case LevelWarn:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}

func (h *Helper) Debugf(format string, args ...interface{}) {
	if h == nil || h.level > LevelDebug {
		return
	}
	h.sugar.Debugf(format, args...)
}

func (h *Helper) Infof(format string, args ...interface{}) {
	if h == nil || h.level > LevelInfo {
		return
	}
	h.sugar.Infof(format, args...)
}

func (h *Helper) Warnf(format string, args ...interface{}) {
	if h == nil || h.level > LevelWarn {
		return
	}
	h.sugar.Warnf(format, args...)
}

func (h *Helper) Errorf(format string, args ...interface{}) {
	if h == nil || h.level > LevelError {
		return
	}
	h.sugar.Errorf(format, args...)
}
