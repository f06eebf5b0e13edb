package server

import (
	"fmt"
	"log/slog"
	"net"
)

// ListenBacklog is the pending-connection backlog requested for passive
// listeners. Go's net package leaves the backlog to the OS, so the value is
// informational and reported in logs.
const ListenBacklog = 5

// Mode is the data-connection mode of a session.
type Mode int

const (
	// ModeNone means no data channel has been negotiated.
	ModeNone Mode = iota

	// ModeActive means the server dials the client for each transfer.
	ModeActive

	// ModePassive means the server holds a listener the client connects to.
	ModePassive
)

func (m Mode) String() string {
	switch m {
	case ModeActive:
		return "active"
	case ModePassive:
		return "passive"
	default:
		return "none"
	}
}

// dataChannel is the resource owned by the current mode.
type dataChannel interface {
	mode() Mode
	release() error
}

type noChannel struct{}

func (noChannel) mode() Mode     { return ModeNone }
func (noChannel) release() error { return nil }

// activeChannel remembers the client endpoint. It holds no OS resource.
type activeChannel struct {
	remote *net.TCPAddr
}

func (activeChannel) mode() Mode     { return ModeActive }
func (activeChannel) release() error { return nil }

// passiveChannel owns a listener that has not been used by a transfer yet.
type passiveChannel struct {
	ln *net.TCPListener
}

func (passiveChannel) mode() Mode       { return ModePassive }
func (c passiveChannel) release() error { return c.ln.Close() }

// modeManager is the none/active/passive state machine. Every transition
// goes through switchTo, which releases the resource of the previous state.
type modeManager struct {
	host   string // address passive listeners bind to
	ch     dataChannel
	logger *slog.Logger
}

func newModeManager(host string, logger *slog.Logger) *modeManager {
	return &modeManager{host: host, ch: noChannel{}, logger: logger}
}

func (m *modeManager) current() Mode {
	return m.ch.mode()
}

// switchTo installs ch and releases the previous channel.
func (m *modeManager) switchTo(ch dataChannel) error {
	prev := m.ch
	m.ch = ch
	err := prev.release()
	if err != nil {
		m.logger.Debug("data channel release failed", "mode", prev.mode().String(), "error", err)
	}
	return err
}

// enterPassive opens a listener on an ephemeral port and makes it the
// pending channel. The new listener is bound before the old one is closed,
// so two successive calls never return the same port.
func (m *modeManager) enterPassive() (*net.TCPAddr, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(m.host, "0"))
	if err != nil {
		_ = m.switchTo(noChannel{})
		return nil, opError("pasv", m.host, ErrBindFailure, err)
	}
	tl, ok := ln.(*net.TCPListener)
	if !ok {
		ln.Close()
		_ = m.switchTo(noChannel{})
		return nil, opError("pasv", m.host, ErrBindFailure, fmt.Errorf("unexpected listener type %T", ln))
	}

	_ = m.switchTo(passiveChannel{ln: tl})
	return tl.Addr().(*net.TCPAddr), nil
}

// enterActive records the client endpoint, closing any pending listener.
func (m *modeManager) enterActive(remote *net.TCPAddr) error {
	if remote == nil || remote.IP == nil || remote.Port <= 0 || remote.Port > 65535 {
		return opError("port", addrString(remote), ErrInvalidEndpoint, nil)
	}
	_ = m.switchTo(activeChannel{remote: remote})
	return nil
}

// endpoint returns the remembered client endpoint in active mode.
func (m *modeManager) endpoint() (*net.TCPAddr, bool) {
	c, ok := m.ch.(activeChannel)
	if !ok {
		return nil, false
	}
	return c.remote, true
}

// takeListener hands the pending listener to the caller and returns the
// manager to ModeNone. The caller becomes responsible for closing it.
func (m *modeManager) takeListener() (*net.TCPListener, bool) {
	c, ok := m.ch.(passiveChannel)
	if !ok {
		return nil, false
	}
	m.ch = noChannel{}
	return c.ln, true
}

// close releases whatever the current mode holds.
func (m *modeManager) close() error {
	return m.switchTo(noChannel{})
}

func addrString(addr *net.TCPAddr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
