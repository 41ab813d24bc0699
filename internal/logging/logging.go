// Package logging sets up the run log shared by every step of a fetch.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stdout and, when path is non-empty, to a
// freshly truncated log file at path. The returned file, if any, must be
// closed by the caller.
func New(path string, debug bool) (*logrus.Logger, *os.File, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}

	if path == "" {
		log.SetOutput(os.Stdout)
		return log, nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating log file: %w", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, f))
	return log, f, nil
}
