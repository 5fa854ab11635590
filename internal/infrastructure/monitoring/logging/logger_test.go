package logging

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFieldConstructors(t *testing.T) {
	if f := String("k", "v"); f.Key != "k" || f.Value != "v" {
		t.Error("String constructor mismatch")
	}
	if f := Err(nil); f.Value != "<nil>" {
		t.Error("Err(nil) must carry <nil>")
	}
	if f := Err(errors.New("boom")); f.Key != "error" || f.Value != "boom" {
		t.Error("Err constructor mismatch")
	}
}

func TestZapLoggerEmitsFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core)

	l.Info("classification complete",
		String("code", "6109100012"),
		Float64("confidence", 72.5),
		Int("candidates", 9),
		Duration("took", 40*time.Millisecond),
	)

	entries := observed.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "classification complete" {
		t.Errorf("unexpected message: %s", e.Message)
	}
	fields := e.ContextMap()
	if fields["code"] != "6109100012" {
		t.Errorf("code field missing: %v", fields)
	}
	if fields["confidence"] != 72.5 {
		t.Errorf("confidence field missing: %v", fields)
	}
}

func TestWithAddsPersistentFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).With(String("request_id", "req-1"))

	l.Warn("semantic search degraded")
	l.Info("fell back to keyword path")

	for _, e := range observed.All() {
		if e.ContextMap()["request_id"] != "req-1" {
			t.Errorf("entry %q missing persistent field", e.Message)
		}
	}
}

func TestNamed(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	l := NewLoggerFromCore(core).Named("classify")
	l.Info("x")
	if observed.All()[0].LoggerName != "classify" {
		t.Errorf("unexpected logger name: %s", observed.All()[0].LoggerName)
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if parseLevel("nonsense") != zapcore.InfoLevel {
		t.Error("unknown level must default to info")
	}
	if parseLevel("debug") != zapcore.DebugLevel {
		t.Error("debug level not parsed")
	}
}

func TestNopLoggerIsSilent(t *testing.T) {
	l := NewNopLogger()
	// Must not panic and With/Named must keep returning the nop instance.
	l.With(String("a", "b")).Named("x").Info("discarded")
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	core, observed := observer.New(zapcore.DebugLevel)
	SetDefault(NewLoggerFromCore(core))
	Default().Info("via default")
	if len(observed.All()) != 1 {
		t.Error("default logger not replaced")
	}

	SetDefault(nil) // must be ignored
	Default().Info("still works")
	if len(observed.All()) != 2 {
		t.Error("SetDefault(nil) must be a no-op")
	}
}
