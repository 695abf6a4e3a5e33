// Package chat implements a minimal multi-client text relay: one event loop
// polls every connection for readiness, frames separator-delimited messages
// out of per-client ring buffers, and fans each message out to every other
// connected client.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"chatrelay/internal/config"
	"chatrelay/pkg/netpoll"
	"chatrelay/pkg/sock"
)

// welcomeMessage greets every accepted connection.
const welcomeMessage = "Welcome to Simple Chat! Use /nick <nick> to set your nick.\n"

// fullNotice is written before closing a connection whose descriptor does
// not fit the registry's slot table.
const fullNotice = "Chat is full, try again later.\n"

// Poller reports which of the watched descriptors are ready to read. It
// hides the multiplexing primitive so the mechanism can be swapped without
// touching framing or command logic. Implementations must leave all chat
// state mutation to the calling goroutine.
type Poller interface {
	Wait(fds []int, timeout time.Duration) ([]int, error)
}

// Server drives the relay: accept, read, frame, dispatch. Every piece of
// chat state is owned by the goroutine running Run; the type is not safe
// for concurrent use and deliberately carries no locks.
type Server struct {
	cfg    *config.Config
	log    *slog.Logger
	poller Poller

	registry *Registry
	framer   *Framer
	stats    *statsReporter

	readBuf  []byte
	interest []int

	// boundPort is published once Run has a listener, so tests running
	// the loop on an ephemeral port can learn where to dial.
	boundPort atomic.Int32
}

// NewServer wires a relay from configuration. No listener exists until Run.
func NewServer(cfg *config.Config, log *slog.Logger) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		poller:   netpoll.New(),
		registry: NewRegistry(cfg.Limits.MaxClients, cfg.Limits.InboxSize),
		framer:   NewFramer(cfg.SeparatorByte()),
		stats:    newStatsReporter(log, cfg.StatsInterval()),
		readBuf:  make([]byte, cfg.Limits.InboxSize),
		interest: make([]int, 0, cfg.Limits.MaxClients+1),
	}
}

// Registry exposes the client table, mainly for tests asserting on
// registration state.
func (s *Server) Registry() *Registry { return s.registry }

// BoundPort returns the port the running loop is listening on, or zero
// before Run has created its listener.
func (s *Server) BoundPort() int { return int(s.boundPort.Load()) }

// Run listens on the configured port and drives the event loop until ctx is
// cancelled or the readiness primitive fails; it never returns nil. Each
// iteration rebuilds the interest set from the listener and every occupied
// slot, waits at most the configured poll timeout, then handles accepts and
// reads inline. A timeout runs the housekeeping hook and nothing else.
func (s *Server) Run(ctx context.Context) error {
	ln, err := sock.Listen(s.cfg.Listen.Port)
	if err != nil {
		return fmt.Errorf("chat: create listener: %w", err)
	}
	defer ln.Close()

	s.boundPort.Store(int32(ln.Port()))
	s.log.Info("listening",
		"port", ln.Port(),
		"max_clients", s.cfg.Limits.MaxClients,
		"inbox_size", s.cfg.Limits.InboxSize)

	timeout := s.cfg.PollTimeout()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		s.interest = append(s.interest[:0], ln.Fd())
		s.interest = s.registry.appendIDs(s.interest)

		ready, err := s.poller.Wait(s.interest, timeout)
		if err != nil {
			return fmt.Errorf("chat: wait for readiness: %w", err)
		}
		if len(ready) == 0 {
			s.stats.housekeeping(s.registry.Count())
			continue
		}

		for _, fd := range ready {
			if fd == ln.Fd() {
				s.acceptClient(ln)
				continue
			}
			// A slot emptied earlier in this iteration simply no
			// longer matches.
			if c := s.registry.Get(fd); c != nil {
				s.readClient(c)
			}
		}
	}
}

// acceptClient admits one pending connection, registers it under its
// descriptor, and sends the welcome banner. Failures here never stop the
// loop.
func (s *Server) acceptClient(ln *sock.Listener) {
	conn, err := ln.Accept()
	if err != nil {
		s.log.Warn("accept failed", "error", err)
		return
	}

	c, err := s.registry.Register(conn)
	if err != nil {
		if errors.Is(err, ErrIDOutOfRange) {
			_, _ = conn.Write([]byte(fullNotice))
		}
		_ = conn.Close()
		s.log.Warn("connection rejected", "fd", conn.Fd(), "error", err)
		return
	}

	c.deliver([]byte(welcomeMessage))
	s.log.Info("client connected",
		"id", c.ID(),
		"session", c.Session(),
		"remote", conn.RemoteAddr())
}

// readClient pulls whatever the transport has ready, bounded by the free
// space in the client's inbox, and dispatches every message the framer
// completes. End-of-stream or any read error removes the client; partial
// input buffered for it is discarded along with the inbox.
func (s *Server) readClient(c *Client) {
	n := c.inbox.Remaining()
	if n > len(s.readBuf) {
		n = len(s.readBuf)
	}
	buf := s.readBuf[:n]

	n, err := c.conn.Read(buf)
	if err != nil || n <= 0 {
		s.log.Info("client disconnected",
			"id", c.ID(),
			"session", c.Session(),
			"nick", c.Nick(),
			"reason", disconnectReason(err))
		s.registry.Unregister(c.ID())
		return
	}

	for _, msg := range s.framer.Ingest(c.inbox, buf[:n]) {
		s.dispatch(c, msg)
	}
}

func disconnectReason(err error) string {
	if err == nil || errors.Is(err, io.EOF) {
		return "eof"
	}
	return err.Error()
}

// dispatch routes one framed message: commands mutate the issuing client,
// everything else fans out to the rest of the room.
func (s *Server) dispatch(c *Client, msg []byte) {
	if isCommand(msg) {
		s.handleCommand(c, msg)
		return
	}
	s.broadcastChat(c, msg)
}

func (s *Server) broadcastChat(c *Client, line []byte) {
	payload := formatChatLine(c.Nick(), line, s.cfg.Limits.MaxChatLine)
	s.log.Debug("broadcast", "from", c.ID(), "nick", c.Nick(), "bytes", len(payload))
	s.registry.Broadcast(c.ID(), payload)
}
