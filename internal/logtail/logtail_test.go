package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"partial (5)", 5, expectedAll[5:]},
		{"partial (3)", 3, expectedAll[7:]},
		{"exactly all (10)", 10, expectedAll},
		{"more than exists (20)", 20, expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read() = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	ts := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  Entry
	}{
		{
			name:  "console with logger and fields",
			input: "2026-10-15T09:30:00.000Z\twarn\trefresh\tfetch failed\t{\"kind\": \"offline\"}",
			want:  Entry{Time: ts, Level: "warn", Logger: "refresh", Message: "fetch failed", Fields: `{"kind": "offline"}`},
		},
		{
			name:  "console without logger",
			input: "2026-10-15T09:30:00.000Z\tinfo\tskytrack started",
			want:  Entry{Time: ts, Level: "info", Message: "skytrack started"},
		},
		{
			name:  "console unnamed with fields",
			input: "2026-10-15T09:30:00.000Z\tinfo\tskytrack started\t{\"headless\": true}",
			want:  Entry{Time: ts, Level: "info", Message: "skytrack started", Fields: `{"headless": true}`},
		},
		{
			name:  "console with caller",
			input: "2026-10-15T09:30:00.000Z\tdebug\topensky-client\topensky/netlog.go:41\trequest",
			want:  Entry{Time: ts, Level: "debug", Logger: "opensky-client", Message: "request"},
		},
		{
			name:  "json",
			input: `{"level":"error","time":"2026-10-15T09:30:00.000Z","logger":"flight-store","msg":"cache write failed","key":"cached_flights"}`,
			want:  Entry{Time: ts, Level: "error", Logger: "flight-store", Message: "cache write failed", Fields: `{"key":"cached_flights"}`},
		},
		{
			name:  "plain text",
			input: "panic: something odd",
			want:  Entry{Message: "panic: something odd"},
		},
		{
			name:  "broken json",
			input: `{"level":`,
			want:  Entry{Message: `{"level":`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !got.Time.Equal(tt.want.Time) {
				t.Fatalf("Time = %v, want %v", got.Time, tt.want.Time)
			}
			got.Time, tt.want.Time = time.Time{}, time.Time{}
			if got != tt.want {
				t.Fatalf("Parse() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTailSkipsBlankLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "skytrack.log")
	content := "2026-10-15T09:30:00.000Z\tinfo\tfirst\n\n2026-10-15T09:30:01.000Z\terror\trefresh\tsecond\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := Tail(logPath, 10)
	if err != nil {
		t.Fatalf("Tail() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Tail() returned %d entries, want 2", len(entries))
	}
	if entries[1].Level != "error" || entries[1].Logger != "refresh" || entries[1].Message != "second" {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}
