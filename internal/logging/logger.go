// Package logging builds the logrus logger shared by the board, the CLI and
// the HTTP API.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// SystemName is the event source written on every line.
const SystemName = "kanban"

// Options configures the logger.
type Options struct {
	// File is the log file path. Empty means stderr.
	File string
	// Level is a logrus level name ("info", "debug", ...). Empty means info.
	Level string
	// ReportCaller adds file:line of the logging call.
	ReportCaller bool
}

// CustomFormatter writes one line per entry:
// "Date: ..., Time: ..., Event Source: ..., Event Type: ..., Event ID: ..., Message: ...".
type CustomFormatter struct {
	SystemName string
}

// Format renders a log entry.
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", entry.Time.Format("2006-01-02"), entry.Time.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))
	b.WriteString(fmt.Sprintf("Event ID: %s, ", uuid.New().String()))
	b.WriteString(fmt.Sprintf("Message: %s", entry.Message))

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(fmt.Sprintf(", %s=%v", k, entry.Data[k]))
		}
	}

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(", Location: %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

// New creates a logger. When opts.File is set, output goes to a rotating
// file managed by lumberjack.
func New(opts Options) (*logrus.Logger, error) {
	logger := logrus.New()

	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		level = parsed
	}
	logger.SetLevel(level)
	logger.SetFormatter(&CustomFormatter{SystemName: SystemName})
	logger.SetReportCaller(opts.ReportCaller)

	if opts.File == "" {
		logger.SetOutput(os.Stderr)
		return logger, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	logger.SetOutput(&lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	})
	logger.Debugf("Event ID: LOGGER_INITIALIZED, Description: output to %s", opts.File)
	return logger, nil
}

// Discard returns a logger that drops everything. Used by tests and as the
// fallback when no logger is supplied.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
