package rpcftp

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// Client is a binding to a server session.
//
// A Client must not be used from several goroutines at once: the server
// executes the calls of a binding one at a time and the working directory
// and data mode are shared by all of them.
type Client struct {
	// conn is the control connection
	conn net.Conn

	// rpc carries calls over conn
	rpc *rpc.Client

	// host is the server host, used when a passive endpoint is unspecified
	host string

	// timeout bounds connection setup
	timeout time.Duration

	// logger is used for debug logging
	logger *slog.Logger

	// dialer is used to establish connections
	dialer *net.Dialer

	// activeMode selects Port instead of Pasv for Retrieve and Store
	activeMode bool

	// progress is called with the running byte count of transfers
	progress func(int64)
}

// Dial binds to a server at the given address.
// The address should be in the form "host:port".
//
// Example:
//
//	client, err := rpcftp.Dial("ftp.example.com:1099")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
func Dial(addr string, options ...Option) (*Client, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}

	c := &Client{
		host:    host,
		timeout: 30 * time.Second,
		logger:  slog.New(slog.DiscardHandler),
		dialer:  &net.Dialer{},
	}

	for _, opt := range options {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	if c.dialer.Timeout == 0 {
		c.dialer.Timeout = c.timeout
	}

	conn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	c.conn = conn
	c.rpc = jsonrpc.NewClient(conn)
	c.logger.Debug("connected", "addr", addr)

	return c, nil
}

// Close ends the binding. The server releases the session, including any
// pending passive listener.
func (c *Client) Close() error {
	return c.rpc.Close()
}

// call invokes a session method and turns server errors into *ProtocolError.
func (c *Client) call(method string, args, reply any) error {
	c.logger.Debug("call", "method", method, "args", args)

	err := c.rpc.Call(wire.ServiceName+"."+method, args, reply)
	if err == nil {
		return nil
	}

	var se rpc.ServerError
	if errors.As(err, &se) {
		code, kind, msg := wire.ParseError(string(se))
		perr := &ProtocolError{
			Command:  method,
			Response: msg,
			Code:     code,
			Kind:     kind,
		}
		c.logger.Debug("call failed", "method", method, "code", code, "response", msg)
		return perr
	}
	return fmt.Errorf("rpcftp: %s: %w", method, err)
}

// SetActiveMode switches subsequent Retrieve and Store calls between active
// (true) and passive (false) mode.
func (c *Client) SetActiveMode(active bool) {
	c.activeMode = active
}

// ActiveMode reports whether Retrieve and Store use active mode.
func (c *Client) ActiveMode() bool {
	return c.activeMode
}
