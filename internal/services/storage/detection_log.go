package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// PersistenceError reports that a detection could not be appended to the log.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("detection log %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// DetectionLog appends one line per accepted detection to a text file.
// The file is opened and closed on every Record call; no handle is kept.
type DetectionLog struct {
	path string
}

// NewDetectionLog prepares the log's parent directory. The file itself is
// created on the first Record.
func NewDetectionLog(path string) (*DetectionLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &PersistenceError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	return &DetectionLog{path: path}, nil
}

// Path returns the log file location.
func (l *DetectionLog) Path() string {
	return l.path
}

// Record appends "{category}: {severity}\n".
func (l *DetectionLog) Record(category, severity string) (err error) {
	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return &PersistenceError{Op: "open", Path: l.path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = &PersistenceError{Op: "close", Path: l.path, Err: closeErr}
		}
	}()

	if _, err := fmt.Fprintf(file, "%s: %s\n", category, severity); err != nil {
		return &PersistenceError{Op: "write", Path: l.path, Err: err}
	}
	return nil
}
