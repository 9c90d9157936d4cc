package parser

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zhaobenny/claude-token-counter/internal/model"
)

const readBufferSize = 64 * 1024

// FileResult is the outcome of parsing one JSONL file
type FileResult struct {
	Usage        model.AggregatedUsage
	Lines        int // non-blank lines examined
	SkippedLines int // lines that failed to decode
}

// Report is the merged outcome of parsing every discovered file
type Report struct {
	Usage        model.AggregatedUsage
	Files        int
	FailedFiles  int
	SkippedLines int
}

// errNotObject is returned for lines that hold valid JSON other than an object
var errNotObject = errors.New("line is not a JSON object")

// ParseLine decodes a single JSONL line into a log entry
func ParseLine(line []byte) (model.LogEntry, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return model.LogEntry{}, errNotObject
	}

	var entry model.LogEntry
	if err := json.Unmarshal(line, &entry); err != nil {
		return model.LogEntry{}, err
	}
	return entry, nil
}

// ParseFile parses a single JSONL file and aggregates its usage.
// Malformed lines are logged and skipped; only open and read failures are returned.
func ParseFile(path string, logger *slog.Logger) (FileResult, error) {
	logger = orDefault(logger)

	file, err := os.Open(path)
	if err != nil {
		return FileResult{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	// bufio.Reader rather than Scanner: session logs can carry lines of several MB.
	reader := bufio.NewReaderSize(file, readBufferSize)
	var result FileResult

	for lineNum := 1; ; lineNum++ {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return FileResult{}, fmt.Errorf("%w: reading %s at line %d: %w", ErrIO, path, lineNum, readErr)
		}

		if line = bytes.TrimSpace(line); len(line) > 0 {
			result.Lines++
			entry, err := ParseLine(line)
			if err != nil {
				result.SkippedLines++
				logger.Warn("skipping malformed line", "error", &ParseError{Path: path, Line: lineNum, Err: err})
			} else if usage, ok := entry.UsageOf(); ok {
				result.Usage.Add(usage)
			}
		}

		if readErr != nil {
			break
		}
	}

	return result, nil
}

// ParseAllFiles parses every JSONL file under root and merges the results.
// A file that cannot be read is logged and left out of the total.
func ParseAllFiles(root string, logger *slog.Logger) (Report, error) {
	logger = orDefault(logger)

	files, err := FindUsageFiles(root, logger)
	if err != nil {
		return Report{}, err
	}
	if len(files) == 0 {
		return Report{}, fmt.Errorf("%w (searched %s)", ErrNoData, root)
	}

	return aggregate(files, logger), nil
}

func aggregate(files []string, logger *slog.Logger) Report {
	report := Report{Files: len(files)}
	for _, path := range files {
		result, err := ParseFile(path, logger)
		if err != nil {
			logger.Warn("failed to parse file", "file", path, "error", err)
			report.FailedFiles++
			continue
		}
		report.Usage.Merge(result.Usage)
		report.SkippedLines += result.SkippedLines
	}

	logger.Debug("parsed usage files",
		"files", report.Files,
		"failed", report.FailedFiles,
		"skipped_lines", report.SkippedLines,
		"messages", report.Usage.MessageCount)

	return report
}
