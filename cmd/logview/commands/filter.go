package commands

import (
	"fmt"
	"io"

	"github.com/logview-io/logview-go/pkg/log"
)

// FilterOptions specifies filtering criteria for the filter command.
type FilterOptions struct {
	Output      string
	RecordingID string
	Source      string
	Level       string
	TimeStart   string
	TimeEnd     string
}

// BuildFilter converts command-line options into a log.Filter.
func BuildFilter(recordingID, source, level, timeStart, timeEnd string) (log.Filter, error) {
	filter := log.Filter{
		RecordingID:  recordingID,
		SourcePrefix: source,
	}

	var err error
	if filter.MinLevel, err = ParseLevelFlag(level); err != nil {
		return log.Filter{}, err
	}
	if filter.TimeStart, err = ParseTimeFlag(timeStart); err != nil {
		return log.Filter{}, fmt.Errorf("invalid time-start: %w", err)
	}
	if filter.TimeEnd, err = ParseTimeFlag(timeEnd); err != nil {
		return log.Filter{}, fmt.Errorf("invalid time-end: %w", err)
	}
	return filter, nil
}

// RunFilter filters the log file and writes matching events to a new file.
// A summary line is written to w.
func RunFilter(path string, opts FilterOptions, w io.Writer) error {
	if opts.Output == "" {
		return fmt.Errorf("output file required")
	}

	filter, err := BuildFilter(opts.RecordingID, opts.Source, opts.Level, opts.TimeStart, opts.TimeEnd)
	if err != nil {
		return err
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Close()
			return fmt.Errorf("failed to read event: %w", err)
		}

		logger.Log(event)
		count++
	}

	if err := logger.Close(); err != nil {
		return fmt.Errorf("failed to close output: %w", err)
	}
	if dropped := logger.Dropped(); dropped > 0 {
		return fmt.Errorf("failed to write %d of %d events", dropped, count)
	}

	fmt.Fprintf(w, "Filtered %d events to %s\n", count, opts.Output)
	return nil
}
