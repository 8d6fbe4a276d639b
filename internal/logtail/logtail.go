package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Entry is one log line split into the fields the logger writes.
// Lines that do not parse keep only Message.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  string // trailing structured fields, as written
}

// Read returns at most maxLines from the end of the file at path. A missing
// file is not an error.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		count++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	if count < maxLines {
		return append([]string(nil), ring[:count]...), nil
	}
	lines := make([]string, 0, maxLines)
	lines = append(lines, ring[next:]...)
	lines = append(lines, ring[:next]...)
	return lines, nil
}

// Tail reads the last maxLines lines and parses each one.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse splits a console ("time\tlevel\tname\tmsg\tfields") or JSON log line.
func Parse(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "{") {
		if e, ok := parseJSON(trimmed); ok {
			return e
		}
	}
	return parseConsole(line)
}

func parseJSON(line string) (Entry, bool) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, false
	}
	e := Entry{
		Level:   stringField(raw, "level"),
		Logger:  stringField(raw, "logger"),
		Message: stringField(raw, "msg"),
		Time:    parseTime(stringField(raw, "time")),
	}
	for _, k := range []string{"level", "logger", "msg", "time", "caller", "stacktrace"} {
		delete(raw, k)
	}
	if len(raw) > 0 {
		if b, err := json.Marshal(raw); err == nil {
			e.Fields = string(b)
		}
	}
	return e, true
}

func parseConsole(line string) Entry {
	parts := strings.Split(line, "\t")
	if len(parts) < 3 {
		return Entry{Message: line}
	}
	ts := parseTime(parts[0])
	if ts.IsZero() {
		return Entry{Message: line}
	}
	e := Entry{Time: ts, Level: parts[1]}
	rest := parts[2:]
	// The logger name column is absent for unnamed loggers.
	if len(rest) > 1 && !looksLikeCaller(rest[0]) && !strings.HasPrefix(rest[1], "{") {
		e.Logger = rest[0]
		rest = rest[1:]
	}
	// Caller column, present at debug level.
	if len(rest) > 1 && looksLikeCaller(rest[0]) {
		rest = rest[1:]
	}
	e.Message = rest[0]
	if len(rest) > 1 {
		e.Fields = strings.Join(rest[1:], " ")
	}
	return e
}

func looksLikeCaller(s string) bool {
	return strings.LastIndex(s, ".go:") > 0 && !strings.Contains(s, " ")
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func parseTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
