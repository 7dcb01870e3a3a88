package logger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// MaxLogLines caps the log file size; older lines are dropped on rotation.
const MaxLogLines = 5000

// LogLevel represents the logging level
type LogLevel int

const (
	LogLevelTrace LogLevel = iota
	LogLevelDebug
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelTrace:
		return "TRACE"
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a string into a LogLevel, defaulting to info.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToUpper(s) {
	case "TRACE":
		return LogLevelTrace
	case "DEBUG":
		return LogLevelDebug
	case "INFO":
		return LogLevelInfo
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// FileLogger is a leveled logger writing to a single file whose line count
// is kept under MaxLogLines.
type FileLogger struct {
	mu        sync.Mutex
	file      *os.File
	lineCount int
	level     LogLevel
}

var (
	globalLogger  *FileLogger
	defaultLogger = &FileLogger{file: os.Stderr, level: LogLevelInfo}
)

// New creates a FileLogger appending to the given file and installs it as
// the global logger used by the package-level functions.
func New(file *os.File, level LogLevel) *FileLogger {
	fl := &FileLogger{file: file, level: level}
	fl.lineCount = countLines(file)
	globalLogger = fl
	return fl
}

func countLines(f *os.File) int {
	if _, err := f.Seek(0, 0); err != nil {
		return 0
	}
	scanner := bufio.NewScanner(f)
	count := 0
	for scanner.Scan() {
		count++
	}
	f.Seek(0, 2)
	return count
}

// SetLevel sets the logging level
func (fl *FileLogger) SetLevel(level LogLevel) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	fl.level = level
}

func (fl *FileLogger) log(level LogLevel, format string, v ...any) {
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if level < fl.level {
		return
	}

	line := fmt.Sprintf("%s [%s] %s\n",
		time.Now().Format("2006/01/02 15:04:05"), level, fmt.Sprintf(format, v...))
	if _, err := fl.file.WriteString(line); err != nil {
		return
	}

	fl.lineCount += strings.Count(line, "\n")
	if fl.lineCount > MaxLogLines {
		fl.rotate()
	}
}

// rotate trims the file to its most recent MaxLogLines lines. Caller holds
// the mutex.
func (fl *FileLogger) rotate() {
	if _, err := fl.file.Seek(0, 0); err != nil {
		return
	}
	scanner := bufio.NewScanner(fl.file)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) > MaxLogLines {
		lines = lines[len(lines)-MaxLogLines:]
	}

	fl.file.Truncate(0)
	fl.file.Seek(0, 0)
	for _, line := range lines {
		fl.file.WriteString(line + "\n")
	}
	fl.lineCount = len(lines)
}

// Write implements io.Writer so the standard log package can be pointed at
// the file logger.
func (fl *FileLogger) Write(p []byte) (n int, err error) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	n, err = fl.file.Write(p)
	if err != nil {
		return n, err
	}
	fl.lineCount += strings.Count(string(p), "\n")
	if fl.lineCount > MaxLogLines {
		fl.rotate()
	}
	return n, err
}

// Close closes the underlying file
func (fl *FileLogger) Close() error {
	return fl.file.Close()
}

func (fl *FileLogger) Trace(format string, v ...any) { fl.log(LogLevelTrace, format, v...) }
func (fl *FileLogger) Debug(format string, v ...any) { fl.log(LogLevelDebug, format, v...) }
func (fl *FileLogger) Info(format string, v ...any)  { fl.log(LogLevelInfo, format, v...) }
func (fl *FileLogger) Warn(format string, v ...any)  { fl.log(LogLevelWarn, format, v...) }
func (fl *FileLogger) Error(format string, v ...any) { fl.log(LogLevelError, format, v...) }

func current() *FileLogger {
	if globalLogger != nil {
		return globalLogger
	}
	return defaultLogger
}

// Package-level logging functions using the global logger (or stderr before
// it is initialized).

func Debug(format string, v ...any) { current().Debug(format, v...) }
func Info(format string, v ...any)  { current().Info(format, v...) }
func Warn(format string, v ...any)  { current().Warn(format, v...) }
func Error(format string, v ...any) { current().Error(format, v...) }

var noopFunc = func() {}

// Span returns a function that logs the operation's duration when called.
// Returns a no-op when TRACE is disabled.
// Usage: defer logger.Span("operation")()
func Span(name string) func() {
	fl := current()
	fl.mu.Lock()
	enabled := fl.level <= LogLevelTrace
	fl.mu.Unlock()
	if !enabled {
		return noopFunc
	}
	start := time.Now()
	return func() {
		fl.Trace("%s: %v", name, time.Since(start))
	}
}
