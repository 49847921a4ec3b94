package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	for _, env := range []string{"development", "production", "test"} {
		l := New(env, "")
		if l == nil || l.GetZerolog() == nil {
			t.Fatalf("Expected logger for env %s", env)
		}
	}
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		env, level string
		want       zerolog.Level
	}{
		{env: "development", level: "", want: zerolog.DebugLevel},
		{env: "production", level: "", want: zerolog.InfoLevel},
		{env: "production", level: "WARN", want: zerolog.WarnLevel},
		{env: "development", level: "error", want: zerolog.ErrorLevel},
		{env: "production", level: "nonsense", want: zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := resolveLevel(tt.env, tt.level); got != tt.want {
			t.Errorf("resolveLevel(%q, %q) = %s, want %s", tt.env, tt.level, got, tt.want)
		}
	}
}

func TestInfo_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production", "")

	l.Info("land record stored", Fields{"land_record_id": "abc", "nondhs": 3})

	entry := decode(t, &buf)
	if entry["message"] != "land record stored" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
	if entry["land_record_id"] != "abc" {
		t.Errorf("Expected land_record_id field, got %v", entry["land_record_id"])
	}
	if entry["nondhs"] != float64(3) {
		t.Errorf("Expected nondhs field 3, got %v", entry["nondhs"])
	}
	if entry["level"] != "info" {
		t.Errorf("Expected info level, got %v", entry["level"])
	}
}

func TestDebug_FilteredInProduction(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production", "")

	l.Debug("hidden", nil)

	if buf.Len() != 0 {
		t.Errorf("Expected no output at info level, got %q", buf.String())
	}
}

func TestError_IncludesError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production", "")

	l.Error("insert failed", errors.New("connection reset"), Fields{"table": "nondhs"})

	entry := decode(t, &buf)
	if entry["error"] != "connection reset" {
		t.Errorf("Expected error field, got %v", entry["error"])
	}
	if entry["table"] != "nondhs" {
		t.Errorf("Expected table field, got %v", entry["table"])
	}
}

func TestChildLoggers(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter(&buf, "production", "")

	l.WithRequestID("req-1").WithUpload("up-9").With(Fields{"village": "Rampura"}).Warn("skipped", nil)

	output := buf.String()
	for _, want := range []string{`"request_id":"req-1"`, `"upload_id":"up-9"`, `"village":"Rampura"`, `"level":"warn"`} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %s in %s", want, output)
		}
	}
}

func TestNop(t *testing.T) {
	l := Nop()
	l.Info("nothing", Fields{"a": 1})
	l.Error("nothing", errors.New("x"), nil)
}
