package server

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// Server accepts client bindings and serves one Session per binding.
//
// A binding is a TCP control connection carrying JSON-RPC calls to the
// "Session" service (see the rpcftp package for the client). Each binding
// gets its own Session; calls on a binding are executed one at a time.
//
// Lifecycle:
//  1. Create server with NewServer()
//  2. Start with ListenAndServe() or Serve()
//  3. Stop with Shutdown(), which makes Serve return ErrServerClosed
//
// Basic example:
//
//	s, err := server.NewServer(":1099", "/srv/ftp")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Fatal(s.ListenAndServe())
type Server struct {
	// addr is the TCP address to listen on (e.g., ":1099").
	addr string

	// root is the canonical directory all sessions are confined to.
	root string

	// logger is the logger instance.
	logger *slog.Logger

	// passiveHost is the address passive listeners bind to.
	passiveHost string

	// bufferSize is the transfer copy buffer size.
	bufferSize int

	// metricsCollector is optional.
	metricsCollector MetricsCollector

	// transferHook is called with the outcome of every transfer.
	transferHook func(TransferResult)

	// maxIdleTime is the maximum time a binding can wait between calls.
	maxIdleTime time.Duration

	// maxConnections is the maximum number of simultaneous bindings.
	// If 0, there is no limit.
	maxConnections int

	// activeConns tracks the number of currently active bindings.
	activeConns atomic.Int32

	// Shutdown handling
	mu         sync.Mutex
	listener   net.Listener
	conns      map[net.Conn]struct{}
	inShutdown atomic.Bool
}

// ErrServerClosed is returned by Serve and ListenAndServe after a call to
// Shutdown.
var ErrServerClosed = errors.New("rpcftp: Server closed")

// NewServer creates a server listening on addr and serving the directory
// root. An empty root serves "/".
//
// Default values:
//   - Logger: slog.Default()
//   - BufferSize: 1024 bytes
//   - MaxIdleTime: 5 minutes
//   - MaxConnections: 0 (unlimited)
//
// Example:
//
//	s, err := server.NewServer(":1099", "/srv/ftp",
//	    server.WithPassiveHost("192.0.2.10"),
//	    server.WithMaxConnections(100),
//	)
func NewServer(addr, root string, options ...Option) (*Server, error) {
	root, err := canonicalRoot(root)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:        addr,
		root:        root,
		logger:      slog.Default(),
		bufferSize:  DefaultBufferSize,
		maxIdleTime: 5 * time.Minute,
		conns:       make(map[net.Conn]struct{}),
	}

	for _, opt := range options {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Root returns the canonical root directory.
func (s *Server) Root() string {
	return s.root
}

// ListenAndServe starts the server on the configured address.
// It blocks until the server stops or an error occurs.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.logger.Info("server listening", "addr", ln.Addr().String(), "root", s.root)
	return s.Serve(ln)
}

// Shutdown stops the server.
//
// It closes the listener and immediately closes all active bindings. Their
// sessions are closed in turn, which closes pending passive listeners.
func (s *Server) Shutdown() error {
	s.inShutdown.Store(true)

	s.mu.Lock()
	ln := s.listener
	s.listener = nil
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}

	s.mu.Lock()
	conns := s.conns
	s.conns = make(map[net.Conn]struct{})
	s.mu.Unlock()

	for conn := range maps.Keys(conns) {
		conn.Close()
	}

	return err
}

// Serve accepts incoming bindings on the listener l.
// It blocks until the listener is closed or an error occurs.
//
// Each binding is handled in a separate goroutine.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.inShutdown.Load() {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.listener = l
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.listener == l {
			s.listener = nil
		}
		s.mu.Unlock()
		l.Close()
	}()

	for {
		conn, err := l.Accept()
		if err != nil {
			if s.inShutdown.Load() {
				return ErrServerClosed
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			s.logger.Error("accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

// handleConnection handles a new client binding.
func (s *Server) handleConnection(conn net.Conn) {
	if !s.trackConnection(conn, true) {
		return
	}
	defer s.trackConnection(conn, false)

	s.handleSession(conn)
}

// trackConnection returns false if we're shutting down.
func (s *Server) trackConnection(conn net.Conn, add bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inShutdown.Load() {
		conn.Close()
		return false
	}

	if add {
		s.conns[conn] = struct{}{}
		return true
	}
	delete(s.conns, conn)
	return true
}

// handleSession binds a new Session to conn and serves calls until the
// client goes away.
func (s *Server) handleSession(conn net.Conn) {
	defer conn.Close()

	remoteIP, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		remoteIP = conn.RemoteAddr().String()
	}

	if s.maxConnections > 0 && s.activeConns.Load() >= int32(s.maxConnections) {
		s.logger.Warn("connection_rejected",
			"remote_ip", remoteIP,
			"reason", "global_limit_reached",
			"limit", s.maxConnections,
		)
		if s.metricsCollector != nil {
			s.metricsCollector.RecordConnection(false, "global_limit_reached")
		}
		return
	}
	if s.metricsCollector != nil {
		s.metricsCollector.RecordConnection(true, "accepted")
	}

	s.activeConns.Add(1)
	defer s.activeConns.Add(-1)

	// Without an explicit passive host, listen where the client reached us.
	host := s.passiveHost
	if host == "" {
		host, _, _ = net.SplitHostPort(conn.LocalAddr().String())
	}

	sess, err := s.newSession(host)
	if err != nil {
		s.logger.Error("session setup failed", "remote_ip", remoteIP, "error", err)
		return
	}
	defer sess.Close()

	sess.logger.Info("A client has bound to a server instance.", "remote_ip", remoteIP)

	svc := newService(sess)
	rs := rpc.NewServer()
	if err := rs.RegisterName(wire.ServiceName, svc); err != nil {
		sess.logger.Error("rpc registration failed", "error", err)
		return
	}

	rs.ServeCodec(jsonrpc.NewServerCodec(&idleConn{
		Conn:    conn,
		timeout: s.maxIdleTime,
		busy:    svc.busy,
	}))

	sess.logger.Info("client unbound", "remote_ip", remoteIP)
}

// idleConn closes a binding that stays silent for longer than timeout.
// A call that is still running (an active transfer) keeps it alive.
type idleConn struct {
	net.Conn
	timeout time.Duration
	busy    func() bool
}

func (c *idleConn) Read(p []byte) (int, error) {
	for {
		if c.timeout > 0 {
			_ = c.Conn.SetReadDeadline(time.Now().Add(c.timeout))
		}
		n, err := c.Conn.Read(p)
		var ne net.Error
		if n == 0 && errors.As(err, &ne) && ne.Timeout() && c.busy() {
			continue
		}
		return n, err
	}
}
