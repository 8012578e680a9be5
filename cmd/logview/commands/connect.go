package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/transport"
)

// RunConnect streams events from the server at cfg.URL to w until the
// server closes, cfg.Limit events have been shown, or ctx is cancelled.
func RunConnect(ctx context.Context, cfg ConnectConfig, w io.Writer) error {
	if cfg.URL == "" {
		return fmt.Errorf("server URL required")
	}

	filter, err := cfg.Filter()
	if err != nil {
		return err
	}

	conn, err := dialViewer(ctx, cfg, filter, w)
	if err != nil {
		return err
	}

	select {
	case <-conn.Done():
	case <-ctx.Done():
		conn.Close()
		<-conn.Done()
	}
	return viewerErr(conn.Err())
}

// dialViewer connects to cfg.URL and writes each matching event to w.
func dialViewer(ctx context.Context, cfg ConnectConfig, filter log.Filter, w io.Writer) (*transport.Connection, error) {
	shown := 0
	handler := func(event log.Event) transport.ControlFlow {
		if !filter.Matches(event) {
			return transport.Continue
		}
		formatEvent(w, event)
		shown++
		if cfg.Limit > 0 && shown >= cfg.Limit {
			return transport.Break
		}
		return transport.Continue
	}

	conn, err := transport.DialWithConfig(ctx, cfg.URL, handler, cfg.clientConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URL, err)
	}
	return conn, nil
}

// viewerErr hides the error of a viewer stopped by its user.
func viewerErr(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// RunInteractive runs a viewer that takes server URLs from a prompt.
// Entering a new URL drops the current connection and connects to it.
func RunInteractive(ctx context.Context, cfg ConnectConfig) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "logview> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	s := newSession(cfg, rl.Stdout())
	return s.run(ctx, rl.Readline)
}

// session is the state of an interactive viewer.
type session struct {
	config ConnectConfig
	out    io.Writer
	conn   *transport.Connection
}

func newSession(cfg ConnectConfig, out io.Writer) *session {
	return &session{config: cfg, out: out}
}

// run reads commands until the input ends, "quit" is entered, or ctx is
// cancelled.
func (s *session) run(ctx context.Context, readLine func() (string, error)) error {
	defer s.disconnect()

	s.printHelp()
	if s.config.URL != "" {
		s.connect(ctx, s.config.URL)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := readLine()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := fields[0], fields[1:]; cmd {
		case "help", "?":
			s.printHelp()
		case "status":
			s.printStatus()
		case "close", "disconnect":
			s.disconnect()
		case "level":
			s.setFilter(ctx, func(c *ConnectConfig) { c.Level = firstArg(args) })
		case "source":
			s.setFilter(ctx, func(c *ConnectConfig) { c.Source = firstArg(args) })
		case "quit", "exit":
			fmt.Fprintln(s.out, "Exiting...")
			return nil
		default:
			if len(args) > 0 {
				fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
				continue
			}
			s.connect(ctx, cmd)
		}
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// connect replaces the current connection with one to url.
func (s *session) connect(ctx context.Context, url string) {
	if _, err := transport.ParseAddress(url); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	filter, err := s.config.Filter()
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}

	s.disconnect()
	s.config.URL = url

	conn, err := dialViewer(ctx, s.config, filter, s.out)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.conn = conn
	fmt.Fprintf(s.out, "Connected to %s\n", conn.Addr())

	go func() {
		<-conn.Done()
		if err := viewerErr(conn.Err()); err != nil {
			fmt.Fprintf(s.out, "Disconnected from %s: %v\n", conn.Addr(), err)
		}
	}()
}

// disconnect closes the current connection and waits for its handler to
// finish.
func (s *session) disconnect() {
	if s.conn == nil {
		return
	}
	s.conn.Close()
	<-s.conn.Done()
	fmt.Fprintf(s.out, "Disconnected from %s (%d events)\n", s.conn.Addr(), s.conn.Received())
	s.conn = nil
}

// setFilter applies a filter change and reconnects so it takes effect.
func (s *session) setFilter(ctx context.Context, update func(*ConnectConfig)) {
	next := s.config
	update(&next)
	if _, err := next.Filter(); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	s.config = next
	fmt.Fprintf(s.out, "Filter: level=%s source=%s\n", orAny(next.Level), orAny(next.Source))

	if s.conn != nil {
		s.connect(ctx, s.config.URL)
	}
}

func orAny(s string) string {
	if s == "" {
		return "any"
	}
	return s
}

func (s *session) printStatus() {
	if s.conn == nil {
		fmt.Fprintln(s.out, "Not connected")
		return
	}
	fmt.Fprintf(s.out, "Server:   %s (%s)\n", s.conn.Addr(), s.conn.State())
	fmt.Fprintf(s.out, "Received: %d\n", s.conn.Received())
	fmt.Fprintf(s.out, "Latency:  %s\n", s.conn.Latency().ExactString())
}

func (s *session) printHelp() {
	fmt.Fprintln(s.out, `
Viewer Commands:
  <url>            - Connect to a server (host:port or tcp://host:port)
  status           - Show connection status
  level [level]    - Set minimum level (empty clears)
  source [prefix]  - Set source prefix filter (empty clears)
  close            - Disconnect from the server
  help             - Show this help
  quit             - Exit`)
}
