package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "info.log")

	log, f, err := New(path, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.WithField("date", "2021-11-01").Info("Fetching the flight details")
	log.Debug("hidden at info level")
	if err := f.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "Fetching the flight details") || !strings.Contains(out, "date=2021-11-01") {
		t.Errorf("log file missing entry: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Error("debug entry written at info level")
	}
}

func TestNewDebugLevel(t *testing.T) {
	log, f, err := New("", true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if f != nil {
		t.Error("expected no log file for empty path")
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("level = %v, want debug", log.GetLevel())
	}
}
