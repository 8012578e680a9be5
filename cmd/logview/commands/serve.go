package commands

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/logview-io/logview-go/pkg/discovery"
	"github.com/logview-io/logview-go/pkg/log"
	"github.com/logview-io/logview-go/pkg/logtime"
	"github.com/logview-io/logview-go/pkg/transport"
)

// ServeOptions configures the serve command.
type ServeOptions struct {
	// Address to listen on (default ":9876").
	Address string

	// ReplayRate scales the gaps between recorded events. 1 replays in
	// real time, 2 twice as fast. Zero sends everything at once.
	ReplayRate float64

	// Backlog is the number of recent events replayed to late viewers.
	Backlog int

	// Advertise publishes the server over mDNS under Name.
	Advertise bool
	Name      string

	// Echo also writes replayed events to the operational log.
	Echo bool

	// Exit returns once the recording has been replayed instead of
	// serving until ctx is cancelled.
	Exit bool

	// Ready is called with the listen address once the server accepts
	// viewers.
	Ready func(addr net.Addr)
}

// RunServe replays a recording to every connected viewer.
func RunServe(ctx context.Context, path string, opts ServeOptions, logger *slog.Logger) error {
	events, err := log.ReadAll(path, log.Filter{})
	if err != nil {
		return err
	}

	if opts.Address == "" {
		opts.Address = fmt.Sprintf(":%d", transport.DefaultPort)
	}

	server := transport.NewServer(transport.ServerConfig{
		Address: opts.Address,
		Backlog: opts.Backlog,
		OnConnect: func(conn *transport.ServerConn) {
			logger.Info("viewer connected", "conn", conn.ConnID(), "remote", conn.RemoteAddr().String())
		},
		OnDisconnect: func(conn *transport.ServerConn) {
			logger.Info("viewer disconnected", "conn", conn.ConnID(), "dropped", conn.Dropped())
		},
		OnError: func(conn *transport.ServerConn, err error) {
			if conn != nil {
				logger.Warn("viewer error", "conn", conn.ConnID(), "error", err)
				return
			}
			logger.Warn("server error", "error", err)
		},
	})
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer server.Stop()
	logger.Info("serving recording", "path", path, "addr", server.Addr().String(), "events", len(events))

	if opts.Advertise {
		ad, err := advertise(opts, server.Addr(), recordingOf(events))
		if err != nil {
			return err
		}
		defer ad.Stop()
		logger.Info("advertising", "instance", ad.Info().InstanceName, "recording", ad.Info().RecordingID)
	}

	if opts.Ready != nil {
		opts.Ready(server.Addr())
	}

	var sink log.Logger = server
	if opts.Echo {
		sink = log.NewMultiLogger(server, log.NewSlogAdapter(logger))
	}

	start := time.Now()
	if err := replay(ctx, events, opts.ReplayRate, sink); err != nil {
		logger.Info("replay interrupted", "error", err)
		return nil
	}
	if len(events) > 0 {
		recorded := logtime.NewRange(events[0].Time, events[len(events)-1].Time)
		logger.Info("replay complete",
			"events", len(events),
			"recorded", recorded.Span().ExactString(),
			"took", logtime.DurationFromStd(time.Since(start)).ExactString())
	}

	if opts.Exit {
		return nil
	}
	<-ctx.Done()
	return nil
}

// replay sends events to sink, sleeping between them according to rate.
// It returns ctx.Err() if cancelled.
func replay(ctx context.Context, events []log.Event, rate float64, sink log.Logger) error {
	for i, event := range events {
		if rate > 0 && i > 0 {
			if wait := replayDelay(events[i-1].Time, event.Time, rate); wait > 0 {
				timer := time.NewTimer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return ctx.Err()
				case <-timer.C:
				}
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sink.Log(event)
	}
	return nil
}

// replayDelay returns the wait between two recorded times at rate.
// Out-of-order events are sent without waiting.
func replayDelay(prev, next logtime.Time, rate float64) time.Duration {
	gap := next.Sub(prev)
	if gap.Compare(logtime.Duration{}) <= 0 {
		return 0
	}
	return time.Duration(gap.Seconds() / rate * float64(time.Second))
}

// recordingOf returns the recording ID of the first event that has one.
func recordingOf(events []log.Event) string {
	for _, e := range events {
		if e.RecordingID != "" {
			return e.RecordingID
		}
	}
	return uuid.New().String()
}

func advertise(opts ServeOptions, addr net.Addr, recordingID string) (*discovery.Advertisement, error) {
	name := opts.Name
	if name == "" {
		host, err := os.Hostname()
		if err != nil {
			host = "logview"
		}
		name = "logview-" + host
	}

	var port uint16
	if tcp, ok := addr.(*net.TCPAddr); ok {
		port = uint16(tcp.Port)
	}

	return discovery.Advertise(discovery.ServiceInfo{
		InstanceName: name,
		Port:         port,
		RecordingID:  recordingID,
		App:          "logview",
	})
}
