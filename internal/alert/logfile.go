package alert

import (
	"fmt"
	"os"
)

// LogFile is the append-only plain-text deals log: one multi-line record per
// surfaced alert, never rewritten or truncated during a run.
type LogFile struct {
	path string
}

func NewLogFile(path string) *LogFile {
	return &LogFile{path: path}
}

// Append writes one alert record to the end of the log.
func (f *LogFile) Append(a *Alert) error {
	file, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open alert log %s: %w", f.path, err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, "%s\n", a); err != nil {
		return fmt.Errorf("failed to append to alert log %s: %w", f.path, err)
	}
	return nil
}
