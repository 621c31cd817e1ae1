// Package logging provides the structured logger used across the tool.
// Logs go to stderr so report output on stdout stays machine-readable.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"
)

// Level is the severity of a log message.
type Level string

const (
	DebugLevel Level = "debug"
	InfoLevel  Level = "info"
	WarnLevel  Level = "warn"
	ErrorLevel Level = "error"
)

var levelPriority = map[Level]int{
	DebugLevel: 0,
	InfoLevel:  1,
	WarnLevel:  2,
	ErrorLevel: 3,
}

// Format selects the log output format.
type Format string

const (
	JSONFormat  Format = "json"
	HumanFormat Format = "human"
)

// Fields carries structured key/value context for one message.
type Fields map[string]any

// Config holds logger configuration.
type Config struct {
	Format Format
	Level  Level
	Output io.Writer // defaults to stderr
}

// Logger is a leveled structured logger.
type Logger struct {
	config Config
	writer io.Writer
}

// New creates a logger with the given configuration.
func New(config Config) *Logger {
	writer := config.Output
	if writer == nil {
		writer = os.Stderr
	}
	return &Logger{config: config, writer: writer}
}

// Discard returns a logger that drops everything; handy in tests.
func Discard() *Logger {
	return New(Config{Level: ErrorLevel, Output: io.Discard})
}

type entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
}

func (l *Logger) enabled(level Level) bool {
	return levelPriority[level] >= levelPriority[l.config.Level]
}

func (l *Logger) log(level Level, message string, fields Fields) {
	if !l.enabled(level) {
		return
	}
	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}
	if l.config.Format == JSONFormat {
		data, err := json.Marshal(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to marshal log entry: %v\n", err)
			return
		}
		fmt.Fprintln(l.writer, string(data))
		return
	}

	fmt.Fprintf(l.writer, "%s [%s] %s", e.Timestamp, e.Level, e.Message)
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Fprint(l.writer, " |")
		for _, k := range keys {
			fmt.Fprintf(l.writer, " %s=%v", k, fields[k])
		}
	}
	fmt.Fprintln(l.writer)
}

// Debug logs at debug level.
func (l *Logger) Debug(message string, fields Fields) { l.log(DebugLevel, message, fields) }

// Info logs at info level.
func (l *Logger) Info(message string, fields Fields) { l.log(InfoLevel, message, fields) }

// Warn logs at warn level.
func (l *Logger) Warn(message string, fields Fields) { l.log(WarnLevel, message, fields) }

// Error logs at error level.
func (l *Logger) Error(message string, fields Fields) { l.log(ErrorLevel, message, fields) }
