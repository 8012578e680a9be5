package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/logview-io/logview-go/pkg/log"
)

// exportRecord is the JSON shape of an exported event. Time and span are
// carried both raw and rendered.
type exportRecord struct {
	ID          string         `json:"id"`
	RecordingID string         `json:"recording_id,omitempty"`
	TimeNanos   int64          `json:"time_ns"`
	Time        string         `json:"time"`
	Level       string         `json:"level"`
	Source      string         `json:"source,omitempty"`
	Text        string         `json:"text"`
	SpanNanos   *int64         `json:"span_ns,omitempty"`
	Span        string         `json:"span,omitempty"`
	Fields      map[string]any `json:"fields,omitempty"`
}

func newExportRecord(event log.Event) exportRecord {
	rec := exportRecord{
		ID:          event.ID,
		RecordingID: event.RecordingID,
		TimeNanos:   event.Time.NanosSinceEpoch(),
		Time:        event.Time.Format(),
		Level:       event.Level.String(),
		Source:      event.Source,
		Text:        event.Text,
		Fields:      event.Fields,
	}
	if event.Span != nil {
		ns := event.Span.Nanos()
		rec.SpanNanos = &ns
		rec.Span = event.Span.ExactString()
	}
	return rec
}

// RunExport exports the log file to the specified format.
func RunExport(path, format, output string) error {
	reader, err := log.NewReader(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	// Determine output writer
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(newExportRecord(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)

	header := []string{"time_ns", "time", "level", "source", "text", "span", "recording_id", "id"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		span := ""
		if event.Span != nil {
			span = event.Span.ExactString()
		}

		row := []string{
			strconv.FormatInt(event.Time.NanosSinceEpoch(), 10),
			event.Time.Format(),
			event.Level.String(),
			event.Source,
			event.Text,
			span,
			event.RecordingID,
			event.ID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
