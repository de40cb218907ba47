// Package logging builds the slog loggers used by download tools: one
// that writes to a log file and, optionally, mirrors records to stderr.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Config controls the logger built by New.
type Config struct {
	// Path of the log file. Records are appended to existing content.
	Path  string
	Level slog.Leveler
	// WithConsole also writes every record to Console.
	WithConsole bool
	// Console defaults to os.Stderr.
	Console io.Writer
}

// New opens the log file and returns a text logger over it along with a
// function that closes the file.
func New(cfg Config) (*slog.Logger, func() error, error) {
	if cfg.Path == "" {
		return nil, nil, errors.New("log file path must not be empty")
	}

	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}

	var w io.Writer = f
	if cfg.WithConsole {
		console := cfg.Console
		if console == nil {
			console = os.Stderr
		}
		w = io.MultiWriter(f, console)
	}

	level := cfg.Level
	if level == nil {
		level = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))

	return logger, f.Close, nil
}
