package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

type jsonLogger struct {
	prefixes []string
	metadata map[string]interface{}
	logLevel LogLevel
	out      io.Writer
	mu       *sync.Mutex
}

var _ Logger = (*jsonLogger)(nil)

func (c *jsonLogger) clone() *jsonLogger {
	prefixes := make([]string, len(c.prefixes))
	copy(prefixes, c.prefixes)
	metadata := make(map[string]interface{}, len(c.metadata))
	for k, v := range c.metadata {
		metadata[k] = v
	}
	return &jsonLogger{
		prefixes: prefixes,
		metadata: metadata,
		logLevel: c.logLevel,
		out:      c.out,
		mu:       c.mu,
	}
}

func (c *jsonLogger) WithPrefix(prefix string) Logger {
	l := c.clone()
	if !slices.Contains(l.prefixes, prefix) {
		l.prefixes = append(l.prefixes, prefix)
	}
	return l
}

func (c *jsonLogger) With(metadata map[string]interface{}) Logger {
	l := c.clone()
	for k, v := range metadata {
		l.metadata[k] = v
	}
	return l
}

func (c *jsonLogger) log(level LogLevel, severity string, msg string, args ...interface{}) {
	if level < c.logLevel {
		return
	}
	record := make(map[string]interface{}, len(c.metadata)+3)
	for k, v := range c.metadata {
		record[k] = v
	}
	message := fmt.Sprintf(msg, args...)
	if len(c.prefixes) > 0 {
		message = strings.Join(c.prefixes, " ") + " " + message
	}
	record["severity"] = severity
	record["message"] = message
	record["timestamp"] = time.Now().Format(time.RFC3339Nano)
	buf, err := json.Marshal(record)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.out.Write(append(buf, '\n'))
	c.mu.Unlock()
}

func (c *jsonLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, "TRACE", msg, args...)
}

func (c *jsonLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, "DEBUG", msg, args...)
}

func (c *jsonLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, "INFO", msg, args...)
}

func (c *jsonLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, "WARNING", msg, args...)
}

func (c *jsonLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, "ERROR", msg, args...)
}

// NewJSONLogger returns a new Logger which emits one JSON record per line,
// suitable for log aggregation pipelines. If no level is given, the level
// comes from GetLevelFromEnv.
func NewJSONLogger(levels ...LogLevel) Logger {
	level := GetLevelFromEnv()
	if len(levels) > 0 {
		level = levels[0]
	}
	return &jsonLogger{
		metadata: make(map[string]interface{}),
		logLevel: level,
		out:      os.Stderr,
		mu:       &sync.Mutex{},
	}
}

// NewJSONLoggerWithWriter returns a JSON Logger writing to the given writer,
// useful for capturing output in tests.
func NewJSONLoggerWithWriter(out io.Writer, level LogLevel) Logger {
	return &jsonLogger{
		metadata: make(map[string]interface{}),
		logLevel: level,
		out:      out,
		mu:       &sync.Mutex{},
	}
}
