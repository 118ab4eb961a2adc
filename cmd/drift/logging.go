package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

const (
	logDir      = "logs"
	logFileName = "drift.log"
)

// setupLogging returns a file-backed debug logger when debug is set
// The terminal belongs to tcell, so without debug every message is discarded
func setupLogging(debug bool) (*log.Logger, *os.File) {
	if !debug {
		return log.New(io.Discard), nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return log.New(io.Discard), nil
	}

	logPath := filepath.Join(logDir, logFileName)
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return log.New(io.Discard), nil
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           log.DebugLevel,
	})
	return logger, f
}
