// Package logtail reads the end of skytrack's log file for the TUI log view.
//
// # Reading Log Files
//
// Read keeps a ring buffer of the last maxLines lines, so memory stays
// O(maxLines) however large the file has grown. Lines come back oldest
// first. A missing file yields no lines and no error; the logger creates
// the file lazily.
//
// # Parsing
//
// Parse understands both encodings internal/logger can write:
//
//	2026-10-15T09:30:00.000Z	warn	refresh	fetch failed	{"kind": "offline"}
//	{"level":"warn","time":"...","logger":"refresh","msg":"fetch failed","kind":"offline"}
//
// The caller column written at debug level is dropped. Lines in neither
// shape (panics, partial writes) keep their text in Entry.Message.
//
// Example usage:
//
//	entries, err := logtail.Tail(cfg.TUILogPath(), 200)
//	if err != nil {
//		return err
//	}
//	for _, e := range entries {
//		fmt.Println(e.Level, e.Logger, e.Message)
//	}
package logtail
