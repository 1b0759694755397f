// Package logger provides structured logging for opsdeck
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	globalLogger *Logger
	once         sync.Once
	mu           sync.Mutex
)

// Level represents logging level
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
	FatalLevel
)

// charmLevel maps a Level onto charmbracelet/log's scale.
func (l Level) charmLevel() log.Level {
	switch l {
	case DebugLevel:
		return log.DebugLevel
	case WarnLevel:
		return log.WarnLevel
	case ErrorLevel:
		return log.ErrorLevel
	case FatalLevel:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}

// Logger wraps charmbracelet/log
type Logger struct {
	logger *log.Logger
	level  Level
}

// Config holds logger configuration
type Config struct {
	Level      string
	File       string
	MaxSize    int // MB
	MaxBackups int
	Console    bool
}

// DefaultConfig returns default logger configuration. Console output goes to
// stderr so command output on stdout stays clean.
func DefaultConfig() Config {
	return Config{
		Level:      "warn",
		MaxSize:    10,
		MaxBackups: 5,
		Console:    true,
	}
}

// Initialize initializes the global logger once
func Initialize(cfg Config) error {
	var initErr error
	once.Do(func() {
		var l *Logger
		l, initErr = New(cfg)
		if initErr == nil {
			mu.Lock()
			globalLogger = l
			mu.Unlock()
		}
	})
	return initErr
}

// New creates a logger from cfg without touching the global instance
func New(cfg Config) (*Logger, error) {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, os.Stderr)
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		fileWriter, err := newRotatingWriter(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		writers = append(writers, fileWriter)
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	level := ParseLevel(cfg.Level)
	l := log.NewWithOptions(writer, log.Options{
		Level:           level.charmLevel(),
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	return &Logger{logger: l, level: level}, nil
}

// NewWriter returns a logger writing to w, used by tests
func NewWriter(w io.Writer, level Level) *Logger {
	l := log.NewWithOptions(w, log.Options{Level: level.charmLevel()})
	return &Logger{logger: l, level: level}
}

// Get returns the global logger instance
func Get() *Logger {
	mu.Lock()
	l := globalLogger
	mu.Unlock()
	if l == nil {
		_ = Initialize(DefaultConfig())
		mu.Lock()
		l = globalLogger
		mu.Unlock()
	}
	if l == nil {
		return NewWriter(io.Discard, InfoLevel)
	}
	return l
}

// Debug logs debug message
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.logger.Debug(msg, keyvals...)
}

// Info logs info message
func (l *Logger) Info(msg string, keyvals ...any) {
	l.logger.Info(msg, keyvals...)
}

// Warn logs warning message
func (l *Logger) Warn(msg string, keyvals ...any) {
	l.logger.Warn(msg, keyvals...)
}

// Error logs error message
func (l *Logger) Error(msg string, keyvals ...any) {
	l.logger.Error(msg, keyvals...)
}

// With returns logger with prefix
func (l *Logger) With(prefix string) *Logger {
	return &Logger{
		logger: l.logger.WithPrefix(prefix),
		level:  l.level,
	}
}

// SetLevel sets logging level
func (l *Logger) SetLevel(level Level) {
	l.level = level
	l.logger.SetLevel(level.charmLevel())
}

// Level returns the current level
func (l *Logger) Level() Level {
	return l.level
}

// Debug logs debug message using global logger
func Debug(msg string, keyvals ...any) {
	Get().Debug(msg, keyvals...)
}

// Info logs info message using global logger
func Info(msg string, keyvals ...any) {
	Get().Info(msg, keyvals...)
}

// Warn logs warning message using global logger
func Warn(msg string, keyvals ...any) {
	Get().Warn(msg, keyvals...)
}

// Error logs error message using global logger
func Error(msg string, keyvals ...any) {
	Get().Error(msg, keyvals...)
}

// With returns global logger with prefix
func With(prefix string) *Logger {
	return Get().With(prefix)
}

// ParseLevel parses level string to Level
func ParseLevel(level string) Level {
	switch level {
	case "debug":
		return DebugLevel
	case "info":
		return InfoLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	case "fatal":
		return FatalLevel
	default:
		return InfoLevel
	}
}

// rotatingWriter rotates the log file once it grows past maxSize megabytes
type rotatingWriter struct {
	mu         sync.Mutex
	filename   string
	maxSize    int
	maxBackups int
	file       *os.File
	size       int64
}

func newRotatingWriter(cfg Config) (*rotatingWriter, error) {
	rw := &rotatingWriter{
		filename:   cfg.File,
		maxSize:    cfg.MaxSize,
		maxBackups: cfg.MaxBackups,
	}
	if rw.maxSize <= 0 {
		rw.maxSize = 10
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *rotatingWriter) open() error {
	if info, err := os.Stat(rw.filename); err == nil {
		rw.size = info.Size()
	} else {
		rw.size = 0
	}

	file, err := os.OpenFile(rw.filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	rw.file = file
	return nil
}

// Write implements io.Writer
func (rw *rotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.size+int64(len(p)) > int64(rw.maxSize)*1024*1024 {
		if err := rw.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := rw.file.Write(p)
	rw.size += int64(n)
	return n, err
}

// rotate shifts name.N to name.N+1, dropping the oldest backup
func (rw *rotatingWriter) rotate() error {
	if rw.file != nil {
		rw.file.Close()
	}

	_ = os.Remove(fmt.Sprintf("%s.%d", rw.filename, rw.maxBackups))
	for i := rw.maxBackups - 1; i > 0; i-- {
		_ = os.Rename(fmt.Sprintf("%s.%d", rw.filename, i), fmt.Sprintf("%s.%d", rw.filename, i+1))
	}
	if rw.maxBackups > 0 {
		_ = os.Rename(rw.filename, rw.filename+".1")
	} else {
		_ = os.Remove(rw.filename)
	}

	return rw.open()
}
