package rpcftp

import (
	"log/slog"
	"net"
	"time"
)

// Option is a functional option for configuring a client.
type Option func(*Client) error

// WithTimeout sets the timeout for establishing connections. It applies to
// the control connection, to passive data connections, and to the wait for
// the server to connect back in active mode. Defaults to 30 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		c.timeout = timeout
		return nil
	}
}

// WithLogger enables debug logging using the provided logger.
// All calls and their errors will be logged at debug level.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	}))
//	client, _ := rpcftp.Dial("ftp.example.com:1099", rpcftp.WithLogger(logger))
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithDialer sets a custom net.Dialer for establishing connections.
// This can be used to configure source addresses, keep-alive settings, etc.
func WithDialer(dialer *net.Dialer) Option {
	return func(c *Client) error {
		c.dialer = dialer
		return nil
	}
}

// WithActiveMode makes Retrieve and Store use active mode (Port) instead of
// passive mode (Pasv). In active mode, the client opens a port and the
// server connects to it; the call returns once the copy is complete.
//
// Note: most users should use passive mode (the default). Active mode does
// not work when the server cannot reach the client.
func WithActiveMode() Option {
	return func(c *Client) error {
		c.activeMode = true
		return nil
	}
}

// WithProgress reports the running byte count of every Retrieve and Store.
func WithProgress(fn func(bytesTransferred int64)) Option {
	return func(c *Client) error {
		c.progress = fn
		return nil
	}
}
