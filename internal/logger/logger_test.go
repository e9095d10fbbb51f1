package logger

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Log == nil {
		t.Fatal("Log should never be nil")
	}
	Log.Info("logging before Init must not panic")
}

func TestInitWithLevel(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	InitWithLevel("warn")

	if Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info should be disabled at warn level")
	}
	if !Log.Core().Enabled(zapcore.ErrorLevel) {
		t.Error("error should be enabled at warn level")
	}
}

func TestInitWithUnknownLevelFallsBackToInfo(t *testing.T) {
	prev := Log
	defer func() { Log = prev }()

	InitWithLevel("chatty")

	if !Log.Core().Enabled(zapcore.InfoLevel) {
		t.Error("unknown level should fall back to info")
	}
	if Log.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug should stay disabled")
	}
}
