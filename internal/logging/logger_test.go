package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&CustomFormatter{SystemName: "kanban"})

	logger.WithField("task", "abc").Warn("Event ID: TASK_MOVE_REJECTED, Description: cycle")

	line := buf.String()
	for _, want := range []string{
		"Event Source: kanban",
		"Event Type: WARNING",
		"Event ID: ",
		"Message: Event ID: TASK_MOVE_REJECTED",
		"task=abc",
	} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
	if !strings.HasSuffix(line, "\n") {
		t.Error("expected trailing newline")
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "kanban.log")
	logger, err := New(Options{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "Message: hello") {
		t.Errorf("log file missing message: %q", data)
	}
}

func TestNew_BadLevel(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
