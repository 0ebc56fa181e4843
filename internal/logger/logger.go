package logger

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"camwatch/internal/config"

	"github.com/lmittmann/tint"
)

// Logger provides leveled logging (info/warning/error) to files and the console.
type Logger struct {
	console *slog.Logger
	files   map[slog.Level]*slog.Logger
	handles []*os.File
	logDir  string
	mu      sync.Mutex
}

// levelFiles names the file each level is written to inside the log directory.
var levelFiles = map[slog.Level]string{
	slog.LevelInfo:  "info.log",
	slog.LevelWarn:  "warning.log",
	slog.LevelError: "error.log",
}

// NewLogger creates a Logger writing to stderr and to the configured log directory.
func NewLogger(config *config.Config) *Logger {
	logger, err := New(config.LogDirectory, os.Stderr)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

// New creates a Logger and ensures the log directory exists.
func New(logDir string, console io.Writer) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{
		console: slog.New(tint.NewHandler(console, &tint.Options{
			Level:      slog.LevelInfo,
			TimeFormat: "15:04:05",
		})),
		files:  make(map[slog.Level]*slog.Logger),
		logDir: logDir,
	}

	for level, name := range levelFiles {
		file, err := l.openLogFile(filepath.Join(logDir, name))
		if err != nil {
			l.Close()
			return nil, err
		}
		l.handles = append(l.handles, file)
		l.files[level] = slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level}))
	}

	return l, nil
}

// openLogFile opens or creates a log file for appending.
func (l *Logger) openLogFile(filename string) (*os.File, error) {
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filename, err)
	}
	return file, nil
}

func (l *Logger) write(level slog.Level, format string, v ...interface{}) {
	msg := fmt.Sprintf(format, v...)

	l.mu.Lock()
	defer l.mu.Unlock()

	ctx := context.Background()
	l.console.Log(ctx, level, msg)
	if file, ok := l.files[level]; ok {
		file.Log(ctx, level, msg)
	}
}

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.write(slog.LevelInfo, format, v...)
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.write(slog.LevelWarn, format, v...)
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.write(slog.LevelError, format, v...)
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	filePath := filepath.Join(l.logDir, fileName)
	if err := os.Truncate(filePath, 0); err != nil {
		return fmt.Errorf("failed to clear %s: %w", fileName, err)
	}
	return nil
}

// Close releases the level files.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, file := range l.handles {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.handles = nil
	l.files = map[slog.Level]*slog.Logger{}
	return firstErr
}
