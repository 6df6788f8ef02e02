package sysutil

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func preserveLogging(t *testing.T) {
	t.Helper()
	origLevel, origLogger := zerolog.GlobalLevel(), log.Logger
	t.Cleanup(func() {
		zerolog.SetGlobalLevel(origLevel)
		log.Logger = origLogger
	})
}

func TestSetLogLevel_AllVariants(t *testing.T) {
	preserveLogging(t)

	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"  DeBuG  ", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"unknown", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		SetLogLevel(tc.in)
		if got := zerolog.GlobalLevel(); got != tc.want {
			t.Fatalf("SetLogLevel(%q) -> %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestSetupLogger_JSONWithComponent(t *testing.T) {
	preserveLogging(t)
	var buf bytes.Buffer

	SetupLogger(&buf, "warn", false, "dispatch")
	log.Info().Msg("dropped")
	log.Warn().Str("sent_date", "2025-03-15").Msg("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line at warn level, got %d: %q", len(lines), buf.String())
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &m); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if m["component"] != "dispatch" || m["message"] != "kept" || m["sent_date"] != "2025-03-15" {
		t.Fatalf("unexpected fields: %v", m)
	}
	if _, ok := m["time"]; !ok {
		t.Fatal("missing timestamp")
	}
}

func TestSetupLogger_Pretty(t *testing.T) {
	preserveLogging(t)
	var buf bytes.Buffer

	SetupLogger(&buf, "info", true, "")
	log.Info().Msg("server listening")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("pretty output should not be JSON: %q", out)
	}
	if !strings.Contains(out, "server listening") || strings.Contains(out, "component") {
		t.Fatalf("unexpected console output: %q", out)
	}
}
