package log

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
)

func captureStderr(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stderr
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stderr = w

	f()

	w.Close()
	os.Stderr = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func TestConsoleMessages(t *testing.T) {
	tests := []struct {
		name   string
		print  func(string, ...interface{})
		prefix string
	}{
		{"error", ErrorMsg, "[!] Error: "},
		{"warn", WarnMsg, "[-] Warning: "},
		{"info", InfoMsg, "[+] "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			output := captureStderr(t, func() { tc.print("tag %d\n", 42) })
			if !strings.Contains(output, tc.prefix+"tag 42") {
				t.Errorf("output = %q, want it to contain %q", output, tc.prefix+"tag 42")
			}
		})
	}
}

func TestConsoleMessagesToWriter(t *testing.T) {
	tests := []struct {
		name   string
		print  func(io.Writer, string, ...interface{})
		prefix string
	}{
		{"error", ErrorTo, "[!] Error: "},
		{"warn", WarnTo, "[-] Warning: "},
		{"info", InfoTo, "[+] "},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			tc.print(&buf, "tag %d\n", 7)
			if !strings.Contains(buf.String(), tc.prefix+"tag 7") {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tc.prefix+"tag 7")
			}
		})
	}
}

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{Level: "warn", Format: "json"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	l.Info("tagtype.fetch.ok", "count", 3)
	l.Warn("tagtype.refresh.failed", "error", "boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1: %q", len(lines), buf.String())
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["msg"] != "tagtype.refresh.failed" || rec["error"] != "boom" {
		t.Errorf("record = %v", rec)
	}
	if ts, _ := rec["time"].(string); !strings.HasSuffix(ts, "Z") {
		t.Errorf("time = %q, want UTC", ts)
	}
}

func TestNewText(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	l.Debug("hidden")
	l.Info("shown", "id", 1)
	if out := buf.String(); strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown id=1") {
		t.Errorf("output = %q", out)
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, Config{Level: "loud"}); err == nil {
		t.Error("New() with unknown level should fail")
	}
	if _, err := New(&bytes.Buffer{}, Config{Format: "xml"}); err == nil {
		t.Error("New() with unknown format should fail")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tc := range tests {
		got, err := ParseLevel(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}
