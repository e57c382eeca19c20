package logger

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestNewVariants(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"json", Config{Level: "debug", Format: "json", Output: "stdout"}},
		{"console", Config{Level: "info", Format: "console", Output: "stdout", NoColor: true}},
		{"pretty", Config{Level: "info", Format: "pretty", Output: "stdout"}},
		{"stderr", Config{Level: "info", Format: "json", Output: "stderr"}},
		{"bad level falls back", Config{Level: "chatty", Format: "json", Output: "stdout"}},
		{"caller enabled", Config{Level: "info", Format: "json", Output: "stdout", Caller: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			l := New(&tc.cfg, "stt-test")
			if l == nil {
				t.Fatal("New returned nil")
			}
			if l.service != "stt-test" {
				t.Errorf("service = %q, want stt-test", l.service)
			}
		})
	}
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("sttd")
	if l == nil {
		t.Fatal("NewDefault returned nil")
	}
	if l.service != "sttd" {
		t.Errorf("service = %q, want sttd", l.service)
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	if l := NewFromEnv("env-svc"); l == nil {
		t.Fatal("NewFromEnv returned nil")
	}
}

func TestDerivedLoggers(t *testing.T) {
	base := NewDefault("sttd")

	for name, derived := range map[string]*Logger{
		"component": base.WithComponent("transcription"),
		"fields":    base.WithFields(map[string]interface{}{"model_size": "tiny"}),
		"error":     base.WithError(fmt.Errorf("model load failed")),
	} {
		if derived == nil {
			t.Fatalf("%s: derived logger is nil", name)
		}
		if derived.service != base.service {
			t.Errorf("%s: service = %q, want %q", name, derived.service, base.service)
		}
	}
}

func TestWithContext(t *testing.T) {
	l := NewDefault("sttd")

	ctx := ContextWithRequestID(context.Background(), "req-789")
	if got := l.WithContext(ctx); got == l {
		t.Error("request ID present: want a derived logger, got the receiver")
	}
	if got := l.WithContext(context.Background()); got != l {
		t.Error("no request ID: want the receiver back")
	}
}

func TestInitSetsGlobalFromConfig(t *testing.T) {
	Init(Config{Level: "debug", Format: "console", Output: "stdout", ServiceName: "sttd"})

	gl := GetGlobalLogger()
	if gl == nil {
		t.Fatal("Init left the global logger nil")
	}
	if gl.service != "sttd" {
		t.Errorf("service = %q, want sttd", gl.service)
	}
}

func TestGlobalLoggerLifecycle(t *testing.T) {
	globalLogger = nil
	if GetGlobalLogger() == nil {
		t.Fatal("GetGlobalLogger did not lazily build a default")
	}

	custom := NewDefault("custom")
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("SetGlobalLogger did not take effect")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	Init(Config{Level: "debug", Format: "console", Output: "stdout"})
	Debug("queued upload")
	Info("transcription finished")
	Warn("model not yet loaded")
	Error("backend unreachable")
}

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" {
		t.Errorf("defaults = %q/%q/%q, want info/console/stdout", cfg.Level, cfg.Format, cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("Timestamp should default to true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"json", Config{Level: "info", Format: "json"}, false},
		{"console", Config{Level: "debug", Format: "console"}, false},
		{"bad level", Config{Level: "chatty", Format: "json"}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegistry(t *testing.T) {
	l := NewDefault("custom-component")
	Register("transcription", l)

	if got := Get("transcription"); got != l {
		t.Error("Get did not return the registered logger")
	}

	// Unregistered names fall back to a component-tagged global logger.
	if got := Get("never-registered"); got == nil {
		t.Fatal("Get returned nil for an unregistered name")
	}
}

func TestRegisterDefaults(t *testing.T) {
	Init(Config{Level: "info", Format: "json", Output: "stdout"})
	RegisterDefaults("api", "transcription", "translation")

	for _, name := range []string{"api", "transcription", "translation"} {
		if Get(name) == nil {
			t.Errorf("Get(%q) = nil after RegisterDefaults", name)
		}
	}
}

func TestFields(t *testing.T) {
	tests := []struct {
		name  string
		input []interface{}
		want  map[string]interface{}
	}{
		{
			"pairs",
			[]interface{}{"op", "transcribe", "segments", 42},
			map[string]interface{}{"op": "transcribe", "segments": 42},
		},
		{
			"trailing key dropped",
			[]interface{}{"op", "transcribe", "dangling"},
			map[string]interface{}{"op": "transcribe"},
		},
		{
			"non-string key skipped",
			[]interface{}{123, "value", "key", "val"},
			map[string]interface{}{"key": "val"},
		},
		{"empty", nil, map[string]interface{}{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Fields(tc.input...)
			if len(got) != len(tc.want) {
				t.Fatalf("Fields produced %d entries, want %d", len(got), len(tc.want))
			}
			for k, v := range tc.want {
				if got[k] != v {
					t.Errorf("Fields[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestErrorFields(t *testing.T) {
	fields := ErrorFields("load-model", fmt.Errorf("model file missing"))

	if fields[FieldOperation] != "load-model" {
		t.Errorf("operation = %v, want load-model", fields[FieldOperation])
	}
	if fields[FieldError] != "model file missing" {
		t.Errorf("error = %v, want 'model file missing'", fields[FieldError])
	}
}

func TestDurationFields(t *testing.T) {
	fields := DurationFields("transcribe", 150*time.Millisecond)

	if fields[FieldOperation] != "transcribe" {
		t.Errorf("operation = %v, want transcribe", fields[FieldOperation])
	}
	if fields[FieldDuration] != int64(150) {
		t.Errorf("duration = %v, want 150", fields[FieldDuration])
	}
}

func TestMergeWithError(t *testing.T) {
	err := fmt.Errorf("decode failed")

	merged := MergeWithError(map[string]interface{}{"op": "transcribe"}, err)
	if merged[FieldError] != "decode failed" {
		t.Errorf("error field = %v, want 'decode failed'", merged[FieldError])
	}
	if merged["op"] != "transcribe" {
		t.Error("existing fields were lost during merge")
	}

	fromNil := MergeWithError(nil, err)
	if fromNil[FieldError] != "decode failed" {
		t.Errorf("nil map: error field = %v, want 'decode failed'", fromNil[FieldError])
	}
}
