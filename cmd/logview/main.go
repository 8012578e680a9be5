// Command logview streams, replays and inspects log recordings.
//
// Recordings are CBOR event streams written by log.FileLogger. A running
// application (or "logview serve") streams events to viewers over TCP and
// can advertise itself over mDNS.
//
// Usage:
//
//	logview <command> [flags] [args]
//
// Commands:
//
//	connect   Connect to a log server and print its events
//	serve     Replay a recording to connected viewers
//	discover  List log servers on the local network
//	view      View a recording in human-readable format
//	filter    Filter a recording and write to a new file
//	stats     Show statistics about a recording
//	export    Export a recording to JSON or CSV format
//	fmt       Render a nanosecond count as a time or duration
//
// Examples:
//
//	# Watch a running application
//	logview connect tcp://buildhost:9876
//
//	# Pick servers interactively
//	logview connect -interactive
//
//	# Replay a recording in real time and advertise it
//	logview serve -replay-rate 1 -advertise run.lvr
//
//	# Only warnings and errors from the network stack
//	logview view -level warn -source app/net run.lvr
//
//	# Render a duration
//	logview fmt duration 90061500000000
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/logview-io/logview-go/cmd/logview/commands"
	"github.com/logview-io/logview-go/pkg/discovery"
	lvlog "github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/transport"
)

const usage = `logview - Log Viewer

Usage:
  logview <command> [flags] [args]

Commands:
  connect   Connect to a log server and print its events
  serve     Replay a recording to connected viewers
  discover  List log servers on the local network
  view      View a recording in human-readable format
  filter    Filter a recording and write to a new file
  stats     Show statistics about a recording
  export    Export a recording to JSON or CSV format
  fmt       Render a nanosecond count as a time or duration

Use "logview <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "connect":
		runConnect(args)
	case "serve":
		runServe(args)
	case "discover":
		runDiscover(args)
	case "view":
		runView(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "export":
		runExport(args)
	case "fmt":
		runFmt(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// setupLogging configures the stdlib logger's flags and returns a
// structured logger writing to stderr at the given level.
func setupLogging(level string) *slog.Logger {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug", "trace":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
	case "warn", "error":
		log.SetFlags(log.Ltime)
	}

	l, err := lvlog.ParseLevel(level)
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvlog.SlogLevel(l)}))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal: %v", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runConnect(args []string) {
	fs := flag.NewFlagSet("connect", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview connect - Connect to a log server and print its events

Usage:
  logview connect [flags] [tcp://host:port]

In interactive mode, enter a server URL at the prompt to (re)connect.

Flags:
`)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML viewer configuration file")
	interactive := fs.Bool("interactive", false, "Read server URLs from a prompt")
	level := fs.String("level", "", "Minimum event level (trace, debug, info, warn, error)")
	source := fs.String("source", "", "Filter by source prefix")
	recording := fs.String("recording", "", "Filter by recording ID")
	limit := fs.Int("limit", 0, "Stop after this many events (0 = no limit)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	var cfg commands.ConnectConfig
	if *configPath != "" {
		var err error
		if cfg, err = commands.LoadConnectConfig(*configPath); err != nil {
			fail(err)
		}
	}

	// Flags override the config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "interactive":
			cfg.Interactive = *interactive
		case "level":
			cfg.Level = *level
		case "source":
			cfg.Source = *source
		case "recording":
			cfg.Recording = *recording
		case "limit":
			cfg.Limit = *limit
		}
	})
	if fs.NArg() > 0 {
		cfg.URL = fs.Arg(0)
	}

	ctx, cancel := signalContext()
	defer cancel()

	var err error
	if cfg.Interactive {
		err = commands.RunInteractive(ctx, cfg)
	} else {
		err = commands.RunConnect(ctx, cfg, os.Stdout)
	}
	if err != nil {
		fail(err)
	}
}

func runServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview serve - Replay a recording to connected viewers

Usage:
  logview serve [flags] <file.lvr>

Flags:
`)
		fs.PrintDefaults()
	}

	addr := fs.String("addr", fmt.Sprintf(":%d", transport.DefaultPort), "Listen address")
	rate := fs.Float64("replay-rate", 0, "Replay speed (1 = real time, 0 = as fast as possible)")
	backlog := fs.Int("backlog", 1000, "Recent events replayed to late viewers")
	advertise := fs.Bool("advertise", false, "Advertise the server over mDNS")
	name := fs.String("name", "", "mDNS instance name (default: logview-<hostname>)")
	echo := fs.Bool("echo", false, "Also write replayed events to stderr")
	exit := fs.Bool("exit", false, "Exit once the recording has been replayed")
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *rate < 0 {
		fail(fmt.Errorf("replay-rate must not be negative"))
	}

	logger := setupLogging(*logLevel)

	ctx, cancel := signalContext()
	defer cancel()

	opts := commands.ServeOptions{
		Address:    *addr,
		ReplayRate: *rate,
		Backlog:    *backlog,
		Advertise:  *advertise,
		Name:       *name,
		Echo:       *echo,
		Exit:       *exit,
	}
	if err := commands.RunServe(ctx, path, opts, logger); err != nil {
		fail(err)
	}
}

func runDiscover(args []string) {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview discover - List log servers on the local network

Usage:
  logview discover [flags]

Flags:
`)
		fs.PrintDefaults()
	}

	timeout := fs.Duration("timeout", discovery.BrowseTimeout, "How long to browse")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := commands.RunDiscover(ctx, *timeout, os.Stdout); err != nil {
		fail(err)
	}
}

// addFilterFlags registers the event filter flags shared by view and filter.
func addFilterFlags(fs *flag.FlagSet) func() (lvlog.Filter, error) {
	recording := fs.String("recording", "", "Filter by recording ID")
	source := fs.String("source", "", "Filter by source prefix")
	level := fs.String("level", "", "Minimum level (trace, debug, info, warn, error)")
	timeStart := fs.String("time-start", "", "Filter by start time (nanoseconds since epoch, inclusive)")
	timeEnd := fs.String("time-end", "", "Filter by end time (nanoseconds since epoch, exclusive)")

	return func() (lvlog.Filter, error) {
		return commands.BuildFilter(*recording, *source, *level, *timeStart, *timeEnd)
	}
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview view - View a recording in human-readable format

Usage:
  logview view [flags] <file.lvr>

Flags:
`)
		fs.PrintDefaults()
	}

	filterFlags := addFilterFlags(fs)

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter, err := filterFlags()
	if err != nil {
		fail(err)
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview filter - Filter a recording and write to a new file

Usage:
  logview filter [flags] <file.lvr>

Flags:
`)
		fs.PrintDefaults()
	}

	output := fs.String("o", "", "Output file (required)")
	recording := fs.String("recording", "", "Filter by recording ID")
	source := fs.String("source", "", "Filter by source prefix")
	level := fs.String("level", "", "Minimum level (trace, debug, info, warn, error)")
	timeStart := fs.String("time-start", "", "Filter by start time (nanoseconds since epoch, inclusive)")
	timeEnd := fs.String("time-end", "", "Filter by end time (nanoseconds since epoch, exclusive)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	opts := commands.FilterOptions{
		Output:      *output,
		RecordingID: *recording,
		Source:      *source,
		Level:       *level,
		TimeStart:   *timeStart,
		TimeEnd:     *timeEnd,
	}

	if err := commands.RunFilter(path, opts, os.Stdout); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview stats - Show statistics about a recording

Usage:
  logview stats <file.lvr>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview export - Export a recording to JSON or CSV format

Usage:
  logview export [flags] <file.lvr>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFmt(args []string) {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `logview fmt - Render a nanosecond count as a time or duration

Usage:
  logview fmt time <nanoseconds>
  logview fmt duration <nanoseconds>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	if fs.NArg() != 2 {
		fs.Usage()
		os.Exit(1)
	}

	if err := commands.RunFmt(fs.Arg(0), fs.Arg(1), os.Stdout); err != nil {
		fail(err)
	}
}
