// Package commands implements the logview CLI commands.
package commands

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: time LEVEL source: text
	fmt.Fprintf(w, "%s %-5s %s: %s", event.Time.Format(), event.Level, orDash(event.Source), event.Text)
	if event.Span != nil {
		fmt.Fprintf(w, " (took %s)", event.Span.ExactString())
	}
	fmt.Fprintln(w)

	if len(event.Fields) == 0 {
		return
	}

	keys := make([]string, 0, len(event.Fields))
	for k := range event.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %v\n", k, event.Fields[k])
	}
}

// ParseLevelFlag parses a -level flag value.
func ParseLevelFlag(s string) (*log.Level, error) {
	if s == "" {
		return nil, nil
	}
	l, err := log.ParseLevel(s)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ParseTimeFlag parses a nanosecond count given on the command line.
func ParseTimeFlag(s string) (*logtime.Time, error) {
	if s == "" {
		return nil, nil
	}
	ns, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: expected nanoseconds since epoch", s)
	}
	t := logtime.FromNanos(ns)
	return &t, nil
}

// RunView reads the log file and writes formatted events to output.
func RunView(path string, filter log.Filter, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event)
	}
}
