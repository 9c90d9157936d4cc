package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the projects directory does not exist.
	ErrNotFound = errors.New("claude code projects directory not found")
	// ErrNoData is returned when discovery finds no log files at all.
	ErrNoData = errors.New("no JSONL files found in claude code projects directory")
	// ErrIO marks a log file that could not be opened or read.
	ErrIO = errors.New("cannot read log file")
)

// ParseError describes a single line that could not be decoded
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse line %d in %s: %v", e.Line, e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
