package commands

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/logview-io/logview-go/pkg/discovery"
)

// findServers is replaced in tests.
var findServers = discovery.FindAll

// RunDiscover browses for log servers for timeout and lists them.
func RunDiscover(ctx context.Context, timeout time.Duration, w io.Writer) error {
	services, err := findServers(ctx, timeout)
	if err != nil {
		return fmt.Errorf("discovery failed: %w", err)
	}

	if len(services) == 0 {
		fmt.Fprintln(w, "No log servers found")
		return nil
	}

	fmt.Fprintf(w, "%-32s %-28s %-10s %s\n", "INSTANCE", "URL", "APP", "RECORDING")
	for _, s := range services {
		fmt.Fprintf(w, "%-32s %-28s %-10s %s\n", s.InstanceName, s.URL(), orDash(s.App), orDash(shortID(s.RecordingID)))
	}
	return nil
}

// shortID returns the first 8 characters of an ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
