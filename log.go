package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
)

func getLogFilePath() (string, error) {
	dir, err := gap.NewScope(gap.User, appName).CacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appName+".log"), nil
}

// setupLog sends all logging to a file in the user cache dir; the TUI owns
// the terminal.
func setupLog() (func() error, error) {
	log.SetOutput(io.Discard)

	logFile, err := getLogFilePath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
		// log disabled
		return func() error { return nil }, nil
	}
	f, err := os.OpenFile(logFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	log.SetLevel(log.InfoLevel)
	return f.Close, nil
}
