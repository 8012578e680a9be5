package commands

import (
	"fmt"
	"io"
	"slices"

	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
)

// Stats holds aggregate statistics about a log file.
type Stats struct {
	TotalEvents    int
	EventsByLevel  map[log.Level]int
	EventsBySource map[string]int
	Recordings     map[string]int
	TimeRange      logtime.Range
	TotalSpan      logtime.Duration
	LongestSpan    *log.Event
}

// CollectStats reads every event in the log file.
func CollectStats(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLevel:  make(map[log.Level]int),
		EventsBySource: make(map[string]int),
		Recordings:     make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		// Track time range
		if stats.TotalEvents == 0 {
			stats.TimeRange = logtime.NewRange(event.Time, event.Time)
		} else {
			if event.Time.Before(stats.TimeRange.Min) {
				stats.TimeRange.Min = event.Time
			}
			if event.Time.After(stats.TimeRange.Max) {
				stats.TimeRange.Max = event.Time
			}
		}

		stats.TotalEvents++
		stats.EventsByLevel[event.Level]++
		stats.EventsBySource[orDash(event.Source)]++
		if event.RecordingID != "" {
			stats.Recordings[event.RecordingID]++
		}

		if event.Span != nil {
			stats.TotalSpan = stats.TotalSpan.Add(*event.Span)
			if stats.LongestSpan == nil || event.Span.Compare(*stats.LongestSpan.Span) > 0 {
				e := event
				stats.LongestSpan = &e
			}
		}
	}

	return stats, nil
}

// RunStats analyzes the log file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats, err := CollectStats(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== Log Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "First Event: %s\n", stats.TimeRange.Min.Format())
		fmt.Fprintf(w, "Last Event:  %s\n", stats.TimeRange.Max.Format())
		fmt.Fprintf(w, "Span:        %s\n", stats.TimeRange.Span().ExactString())
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Level:")
	for _, level := range log.Levels {
		if count := stats.EventsByLevel[level]; count > 0 {
			fmt.Fprintf(w, "  %-8s %d\n", level.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	if len(stats.EventsBySource) > 0 {
		fmt.Fprintln(w, "Events by Source:")
		sources := make([]string, 0, len(stats.EventsBySource))
		for s := range stats.EventsBySource {
			sources = append(sources, s)
		}
		slices.Sort(sources)
		for _, s := range sources {
			fmt.Fprintf(w, "  %-24s %d\n", s, stats.EventsBySource[s])
		}
		fmt.Fprintln(w)
	}

	if len(stats.Recordings) > 0 {
		fmt.Fprintf(w, "Recordings: %d\n", len(stats.Recordings))
	}

	if stats.LongestSpan != nil {
		fmt.Fprintf(w, "Total Span:   %s\n", stats.TotalSpan.ExactString())
		fmt.Fprintf(w, "Longest Span: %s (%s: %s)\n",
			stats.LongestSpan.Span.ExactString(),
			orDash(stats.LongestSpan.Source),
			stats.LongestSpan.Text)
	}
}
