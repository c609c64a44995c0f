package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
)

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:  "invalid-level",
		Format: "json",
		Output: "stdout",
	}
	l := New(cfg, "test")
	if l == nil {
		t.Fatal("expected logger to be created even with invalid level")
	}
}

func TestNewFromEnv(t *testing.T) {
	os.Setenv("LOG_LEVEL", "debug")
	os.Setenv("LOG_FORMAT", "json")
	defer os.Unsetenv("LOG_LEVEL")
	defer os.Unsetenv("LOG_FORMAT")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, line)
	}
	return m
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf)

	l.Info("bean created", Fields("bean", "memberService"))

	m := decodeLine(t, &buf)
	if m["message"] != "bean created" {
		t.Errorf("expected message 'bean created', got %v", m["message"])
	}
	if m["bean"] != "memberService" {
		t.Errorf("expected bean=memberService, got %v", m["bean"])
	}
}

func TestNewWithWriterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "warn", Format: "json"}, "svc", &buf)

	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected debug/info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected warn message to be written")
	}
}

func TestWithBean(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf).
		WithBean("myLogger", "request")

	l.Debug("constructed")

	m := decodeLine(t, &buf)
	if m[FieldBean] != "myLogger" {
		t.Errorf("expected bean=myLogger, got %v", m[FieldBean])
	}
	if m[FieldScope] != "request" {
		t.Errorf("expected scope=request, got %v", m[FieldScope])
	}
}

func TestWithContextScopeAndRequest(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf)

	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithScopeID(ctx, "scope-1")
	l.WithContext(ctx).Info("scoped")

	m := decodeLine(t, &buf)
	if m[FieldRequestID] != "req-1" {
		t.Errorf("expected request_id=req-1, got %v", m[FieldRequestID])
	}
	if m[FieldScopeID] != "scope-1" {
		t.Errorf("expected scope_id=scope-1, got %v", m[FieldScopeID])
	}
}

func TestWithComponent(t *testing.T) {
	l := NewDefault("test")
	cl := l.WithComponent("container")
	if cl == nil {
		t.Fatal("expected non-nil logger")
	}
	if cl.service != "test" {
		t.Errorf("service should be preserved, got %q", cl.service)
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&Config{Level: "debug", Format: "json"}, "svc", &buf)
	l.WithError(errors.New("boom")).Error("failed")

	m := decodeLine(t, &buf)
	if m["error"] != "boom" {
		t.Errorf("expected error=boom, got %v", m["error"])
	}
}

func TestNop(t *testing.T) {
	// Must not panic or write anywhere.
	Nop().Error("ignored", Fields("k", "v"))
}

func TestInit(t *testing.T) {
	cfg := Config{
		Level:  "info",
		Format: "console",
		Output: "stdout",
	}
	Init(&cfg)
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}
	if !cfg.Timestamp {
		t.Error("expected Init to apply defaults to the config")
	}
}

func TestGetGlobalLoggerDefault(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("expected default global logger to be created")
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(&Config{Level: "debug", Format: "console", Output: "stdout"})
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	WithComponent("x").Info("component msg")
	WithContext(context.Background()).Info("context msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stdout" {
		t.Errorf("expected output 'stdout', got %q", cfg.Output)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json"}, false},
		{"pretty", Config{Level: "debug", Format: "pretty"}, false},
		{"bad level", Config{Level: "loud", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
}

func TestGetUnregistered(t *testing.T) {
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "skipped", "dangling")
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields: %v", m)
	}
	if len(m) != 2 {
		t.Errorf("expected non-string keys and dangling values to be dropped, got %v", m)
	}
}

func TestErrorFields(t *testing.T) {
	m := ErrorFields("destroy", errors.New("close failed"))
	if m[FieldOperation] != "destroy" || m[FieldError] != "close failed" {
		t.Errorf("unexpected fields: %v", m)
	}
}

func TestNames(t *testing.T) {
	Register("zz-names-test", Nop())
	Register("aa-names-test", Nop())

	names := Names()
	var a, z = -1, -1
	for i, n := range names {
		switch n {
		case "aa-names-test":
			a = i
		case "zz-names-test":
			z = i
		}
	}
	if a < 0 || z < 0 {
		t.Fatalf("expected both names to be registered, got %v", names)
	}
	if a > z {
		t.Errorf("expected sorted names, got %v", names)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "debug"},
		{"warn", "warn"},
		{"bogus", "info"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewWithWriter(&Config{Level: tt.level, Format: "json"}, "svc", &buf)
			if got := l.WithComponent("x").Level().String(); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
