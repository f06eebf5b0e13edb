package server

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the per-binding state of one client: its working directory,
// its data-connection mode and the transfers it started.
//
// Control operations (Cd, Pwd, Dir, Port, Pasv, Get, Put) must not be called
// concurrently on the same Session; the transport serializes them. Distinct
// sessions share nothing and may be used from different goroutines.
type Session struct {
	server *Server
	id     string
	logger *slog.Logger

	box   *sandbox
	cwd   []string
	modes *modeManager

	// Passive workers. pending holds listeners taken by workers that have
	// not accepted yet, so Close can unblock them.
	workers sync.WaitGroup
	mu      sync.Mutex
	pending map[*net.TCPListener]struct{}
	closed  bool
}

// NewSession creates a session rooted at the server's root directory.
// Passive listeners bind to the host set with WithPassiveHost (all
// interfaces if unset).
//
// The caller must Close the session when the client binding ends.
func (s *Server) NewSession() (*Session, error) {
	return s.newSession(s.passiveHost)
}

func (s *Server) newSession(passiveHost string) (*Session, error) {
	box, err := openSandbox(s.root)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	logger := s.logger.With("session_id", id)
	sess := &Session{
		server:  s,
		id:      id,
		logger:  logger,
		box:     box,
		modes:   newModeManager(passiveHost, logger),
		pending: make(map[*net.TCPListener]struct{}),
	}

	sess.logger.Info("session_started",
		"root", box.resolvedPath(nil),
		"passive_host", passiveHost,
	)
	return sess, nil
}

// ID returns the unique session identifier used in log records.
func (sess *Session) ID() string {
	return sess.id
}

// Mode returns the current data-connection mode.
func (sess *Session) Mode() Mode {
	return sess.modes.current()
}

// Port enters active mode: the next transfers dial addr. Any pending
// passive listener is closed.
func (sess *Session) Port(addr *net.TCPAddr) error {
	start := time.Now()
	err := sess.modes.enterActive(addr)
	sess.recordCommand("port", err, start)
	if err != nil {
		return err
	}

	sess.logger.Info("port", "addr", addr.String())
	return nil
}

// Pasv enters passive mode and returns the endpoint the client must
// connect to. Any previously pending listener is closed and any active
// endpoint forgotten.
func (sess *Session) Pasv() (*net.TCPAddr, error) {
	start := time.Now()
	addr, err := sess.modes.enterPassive()
	sess.recordCommand("pasv", err, start)
	if err != nil {
		sess.logger.Warn("passive_listen_failed", "error", err)
		return nil, err
	}

	sess.logger.Info("passive_listening",
		"addr", addr.String(),
		"backlog", ListenBacklog,
	)
	return addr, nil
}

// Wait blocks until all passive transfers started by this session finish.
func (sess *Session) Wait() {
	sess.workers.Wait()
}

// Close releases the session: the held listener, the listeners of workers
// still waiting for a client, and the root handle. It waits for running
// workers to finish.
func (sess *Session) Close() error {
	sess.mu.Lock()
	if sess.closed {
		sess.mu.Unlock()
		return nil
	}
	sess.closed = true
	for ln := range sess.pending {
		ln.Close()
	}
	sess.mu.Unlock()

	err := sess.modes.close()
	sess.workers.Wait()

	if cerr := sess.box.close(); err == nil {
		err = cerr
	}

	sess.logger.Debug("session closed")
	return err
}

func (sess *Session) recordCommand(op string, err error, start time.Time) {
	if sess.server.metricsCollector != nil {
		sess.server.metricsCollector.RecordCommand(op, err == nil, time.Since(start))
	}
}
