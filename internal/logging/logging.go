// Package logging writes one JSON object per line, the format used by every
// component of the service (HTTP access logs, migrations, tracing setup, write-behind outcomes).
package logging

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"
)

// Logger is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
	loc *time.Location
}

// New returns a Logger writing to w with timestamps in loc.
func New(w io.Writer, loc *time.Location) *Logger {
	if loc == nil {
		loc = time.UTC
	}
	return &Logger{enc: json.NewEncoder(w), loc: loc}
}

// Default logs to stdout in UTC.
func Default() *Logger {
	return New(os.Stdout, time.UTC)
}

// Log writes fields as one line. "ts" is always set; "level" defaults to
// "error" when status is "error" and to "info" otherwise.
func (l *Logger) Log(fields map[string]any) {
	entry := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		entry[k] = v
	}
	entry["ts"] = time.Now().In(l.loc).Format(time.RFC3339Nano)
	if _, ok := entry["level"]; !ok {
		if entry["status"] == "error" {
			entry["level"] = "error"
		} else {
			entry["level"] = "info"
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.enc.Encode(entry)
}

// Info logs msg with extra fields at info level.
func (l *Logger) Info(msg string, fields map[string]any) {
	l.Log(with(fields, map[string]any{"level": "info", "msg": msg}))
}

// Error logs msg and err at error level.
func (l *Logger) Error(msg string, err error, fields map[string]any) {
	extra := map[string]any{"level": "error", "msg": msg}
	if err != nil {
		extra["error"] = err.Error()
	}
	l.Log(with(fields, extra))
}

func with(fields, extra map[string]any) map[string]any {
	out := make(map[string]any, len(fields)+len(extra))
	for k, v := range fields {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
