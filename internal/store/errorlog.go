package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// ErrorLog is the append-only file of stringified persistence failures,
// kept as a JSON array so harnesses can consume it directly.
type ErrorLog struct {
	mu      sync.Mutex
	path    string
	entries []string
}

func NewErrorLog(path string) (*ErrorLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	l := &ErrorLog{path: path}

	// Carry over entries from a previous run
	data, err := os.ReadFile(path)
	if err == nil {
		_ = json.Unmarshal(data, &l.entries)
	}

	return l, nil
}

// Append records a failure and flushes the log to disk. The file is small
// at benchmark scale, so each append rewrites it whole.
func (l *ErrorLog) Append(msg string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, msg)

	data, err := json.Marshal(l.entries)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}

// Entries returns a copy of the recorded failures.
func (l *ErrorLog) Entries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}
