package server

import (
	"fmt"
	"log/slog"
	"time"
)

// Option is a functional option for configuring a server.
type Option func(*Server) error

// WithLogger sets a custom logger for the server and its sessions.
// If not specified, slog.Default() is used.
//
// Example with debug logging:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	s, _ := server.NewServer(":1099", "/srv/ftp", server.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		s.logger = logger
		return nil
	}
}

// WithPassiveHost sets the address passive listeners bind to, and therefore
// the address returned by Pasv. It is required on multi-homed hosts.
//
// If unset, sessions created by Serve bind to the local address of their
// control connection, and sessions created with NewSession bind to all
// interfaces.
func WithPassiveHost(host string) Option {
	return func(s *Server) error {
		s.passiveHost = host
		return nil
	}
}

// WithBufferSize sets the size of the transfer copy buffer.
// Defaults to DefaultBufferSize (1024 bytes).
func WithBufferSize(size int) Option {
	return func(s *Server) error {
		if size <= 0 {
			return fmt.Errorf("buffer size must be positive, got %d", size)
		}
		s.bufferSize = size
		return nil
	}
}

// WithMetricsCollector sets a collector for server metrics.
func WithMetricsCollector(collector MetricsCollector) Option {
	return func(s *Server) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTransferHook sets a function called after every transfer, successful
// or not, with its outcome.
//
// This is the only way to learn about failures of passive transfers, which
// run after Get or Put has returned. The hook runs on the goroutine that
// performed the copy and must be safe for concurrent use.
//
// Example:
//
//	results := make(chan server.TransferResult, 16)
//	s, _ := server.NewServer(":1099", root,
//	    server.WithTransferHook(func(r server.TransferResult) { results <- r }),
//	)
func WithTransferHook(hook func(TransferResult)) Option {
	return func(s *Server) error {
		s.transferHook = hook
		return nil
	}
}

// WithMaxConnections sets the maximum number of simultaneous client
// bindings. If 0, there is no limit. This is the default.
func WithMaxConnections(max int) Option {
	return func(s *Server) error {
		if max < 0 {
			return fmt.Errorf("max connections must not be negative, got %d", max)
		}
		s.maxConnections = max
		return nil
	}
}

// WithMaxIdleTime sets the maximum time a control connection can wait for
// the next call before being closed. Defaults to 5 minutes; 0 disables it.
func WithMaxIdleTime(duration time.Duration) Option {
	return func(s *Server) error {
		s.maxIdleTime = duration
		return nil
	}
}
