package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/logview-io/logview-go/pkg/logtime"
)

// RunFmt renders a nanosecond count as a time or a duration.
func RunFmt(kind, value string, w io.Writer) error {
	ns, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid value %q: expected an integer nanosecond count", value)
	}

	switch kind {
	case "time", "t":
		t := logtime.FromNanos(ns)
		kindLabel := "relative"
		if t.IsAbsolute() {
			kindLabel = "absolute"
		}
		fmt.Fprintf(w, "%s (%s)\n", t.Format(), kindLabel)
	case "duration", "d":
		fmt.Fprintln(w, logtime.DurationFromNanos(ns).ExactString())
	default:
		return fmt.Errorf("unknown kind: %s (supported: time, duration)", kind)
	}
	return nil
}
