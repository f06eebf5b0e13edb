package rpcftp

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// Port puts the session in active mode: the next Get or Put makes the server
// dial addr. Most callers should use Retrieve and Store instead.
func (c *Client) Port(addr *net.TCPAddr) error {
	if addr == nil || addr.IP == nil {
		return fmt.Errorf("rpcftp: Port: %w: missing address", ErrInvalidEndpoint)
	}
	return c.call("Port", &wire.Endpoint{Host: addr.IP.String(), Port: addr.Port}, &wire.Empty{})
}

// Passive puts the session in passive mode and returns the endpoint the
// server listens on. The endpoint serves a single Get or Put.
func (c *Client) Passive() (*net.TCPAddr, error) {
	var reply wire.Endpoint
	if err := c.call("Pasv", &wire.Empty{}, &reply); err != nil {
		return nil, err
	}
	addr, err := reply.TCPAddr()
	if err != nil {
		return nil, fmt.Errorf("invalid Pasv reply: %w", err)
	}
	return addr, nil
}

// Get asks the server to send name over the negotiated data channel. It
// does not read the data; see Retrieve.
func (c *Client) Get(name string) error {
	return c.call("Get", &wire.NameArgs{Name: name}, &wire.Empty{})
}

// Put asks the server to receive name over the negotiated data channel. It
// does not write the data; see Store.
func (c *Client) Put(name string) error {
	return c.call("Put", &wire.NameArgs{Name: name}, &wire.Empty{})
}

// resolveDataAddr returns the address to dial for a passive endpoint.
// If the server listens on all interfaces it advertises an unspecified IP,
// which is replaced with the control connection host.
func resolveDataAddr(addr *net.TCPAddr, controlHost string) string {
	port := strconv.Itoa(addr.Port)
	if addr.IP == nil || addr.IP.IsUnspecified() {
		return net.JoinHostPort(controlHost, port)
	}
	return net.JoinHostPort(addr.IP.String(), port)
}

// dialPassive connects to the endpoint returned by Passive.
func (c *Client) dialPassive(addr *net.TCPAddr) (net.Conn, error) {
	target := resolveDataAddr(addr, c.host)
	c.logger.Debug("dialing passive data connection", "addr", target)

	conn, err := c.dialer.Dial("tcp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to open data connection: %w", err)
	}
	return conn, nil
}

// listenActive listens on the interface of the control connection and
// sends the endpoint to the server with Port.
func (c *Client) listenActive() (*net.TCPListener, error) {
	host, _, err := net.SplitHostPort(c.conn.LocalAddr().String())
	if err != nil {
		host = "127.0.0.1"
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(host, "0"))
	if err != nil {
		// Fallback to all interfaces if listening on the specific IP fails
		ln, err = net.Listen("tcp", ":0")
		if err != nil {
			return nil, fmt.Errorf("failed to create listener: %w", err)
		}
	}
	tl := ln.(*net.TCPListener)

	if err := c.Port(tl.Addr().(*net.TCPAddr)); err != nil {
		tl.Close()
		return nil, err
	}
	return tl, nil
}

// acceptActive waits for the server to connect back and runs fn on the
// connection.
func (c *Client) acceptActive(ln *net.TCPListener, fn func(net.Conn) error) error {
	if c.timeout > 0 {
		_ = ln.SetDeadline(time.Now().Add(c.timeout))
	}
	conn, err := ln.Accept()
	if err != nil {
		return fmt.Errorf("failed to accept data connection: %w", err)
	}
	ln.Close()
	defer conn.Close()

	c.logger.Debug("accepted active data connection", "addr", conn.RemoteAddr().String())
	return fn(conn)
}
