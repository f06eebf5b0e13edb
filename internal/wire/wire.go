// Package wire holds the types and error encoding shared by the control
// transport on both sides of a binding.
package wire

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// ServiceName is the name the session is published under on the RPC server.
const ServiceName = "Session"

// Error kinds. On the wire each kind travels as a short id next to the reply
// code (see FormatError).
var (
	ErrInvalidName      = errors.New("invalid name")
	ErrNotFound         = errors.New("no such directory")
	ErrNotADirectory    = errors.New("not a directory")
	ErrAlreadyAtRoot    = errors.New("already at root directory")
	ErrNoChannel        = errors.New("no data channel")
	ErrInvalidEndpoint  = errors.New("invalid endpoint")
	ErrBindFailure      = errors.New("cannot open passive listener")
	ErrConnectFailure   = errors.New("cannot open data connection")
	ErrTransferIO       = errors.New("transfer aborted")
	ErrFileNotFound     = errors.New("file not found")
	ErrPermissionDenied = errors.New("permission denied")
)

var kinds = []struct {
	err  error
	id   string
	code int
}{
	{ErrInvalidName, "invalid-name", 553},
	{ErrNotFound, "not-found", 550},
	{ErrNotADirectory, "not-a-directory", 550},
	{ErrAlreadyAtRoot, "already-at-root", 550},
	{ErrNoChannel, "no-channel", 503},
	{ErrInvalidEndpoint, "invalid-endpoint", 501},
	{ErrBindFailure, "bind-failure", 425},
	{ErrConnectFailure, "connect-failure", 425},
	{ErrTransferIO, "transfer-io", 426},
	{ErrFileNotFound, "file-not-found", 550},
	{ErrPermissionDenied, "permission-denied", 550},
}

// CodeLocalError is used for failures that match no known kind.
const CodeLocalError = 451

// noKind is the kind id sent for errors that match no known kind.
const noKind = "-"

// Code returns the FTP-style reply code for err.
func Code(err error) int {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.code
		}
	}
	return CodeLocalError
}

func kindID(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.id
		}
	}
	return noKind
}

// KindByID returns the error kind with the given wire id, or nil.
func KindByID(id string) error {
	for _, k := range kinds {
		if k.id == id {
			return k.err
		}
	}
	return nil
}

// FormatError renders err as "<code> <kind-id> <message>". The kind id is a
// fixed token, so the message may contain anything, including the text of
// another kind.
func FormatError(err error) string {
	return fmt.Sprintf("%d %s %s", Code(err), kindID(err), err.Error())
}

// ParseError splits a "<code> <kind-id> <message>" string. The kind is nil
// for the "-" id. A string without a leading code yields CodeLocalError, no
// kind and the whole string as the message; a string without a known kind
// id keeps everything after the code as the message.
func ParseError(s string) (code int, kind error, msg string) {
	head, rest, ok := strings.Cut(s, " ")
	if !ok {
		return CodeLocalError, nil, s
	}
	code, err := strconv.Atoi(head)
	if err != nil || code < 100 || code > 599 {
		return CodeLocalError, nil, s
	}

	id, text, _ := strings.Cut(rest, " ")
	if id == noKind {
		return code, nil, text
	}
	if kind := KindByID(id); kind != nil {
		return code, kind, text
	}
	return code, nil, rest
}

// Empty is used for calls without arguments or results.
type Empty struct{}

// NameArgs carries a file or directory name.
type NameArgs struct {
	Name string
}

// PathReply carries the working directory.
type PathReply struct {
	Path string
}

// DirReply carries directory entry names.
type DirReply struct {
	Names []string
}

// Endpoint is a TCP address in wire form.
type Endpoint struct {
	Host string
	Port int
}

// NewEndpoint converts a TCP address.
func NewEndpoint(addr *net.TCPAddr) Endpoint {
	return Endpoint{Host: addr.IP.String(), Port: addr.Port}
}

// TCPAddr converts the endpoint back into a TCP address.
func (e Endpoint) TCPAddr() (*net.TCPAddr, error) {
	ip := net.ParseIP(e.Host)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address: %q", e.Host)
	}
	if e.Port <= 0 || e.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", e.Port)
	}
	return &net.TCPAddr{IP: ip, Port: e.Port}, nil
}

// String returns host:port.
func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}
