package server

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// DefaultBufferSize is the size of the copy buffer used by transfers.
const DefaultBufferSize = 1024

// Direction is the direction of a file transfer.
type Direction int

const (
	// Send copies a file from the server to the client (get).
	Send Direction = iota

	// Receive copies a file from the client to the server (put).
	Receive
)

func (d Direction) String() string {
	if d == Receive {
		return "receive"
	}
	return "send"
}

// op is the control operation that starts a transfer in direction d.
func (d Direction) op() string {
	if d == Receive {
		return "put"
	}
	return "get"
}

// TransferResult describes a finished transfer. It is passed to the hook set
// with WithTransferHook.
type TransferResult struct {
	SessionID string
	Name      string
	Path      string // absolute path of the file
	Direction Direction
	Mode      Mode
	Bytes     int64
	Duration  time.Duration

	// Err is nil on success, otherwise an *OpError.
	Err error
}

// Get sends the named file of the working directory to the client over the
// current data channel.
//
// In active mode Get dials the client and returns when the copy is done.
// In passive mode it opens the file, starts a worker that waits for the
// client to connect, and returns immediately: failures after that point are
// logged and passed to the transfer hook, never returned here.
func (sess *Session) Get(name string) error {
	return sess.transfer(name, Send)
}

// Put receives the named file into the working directory from the client
// over the current data channel. An existing file is truncated. See Get for
// how active and passive modes report errors.
func (sess *Session) Put(name string) error {
	return sess.transfer(name, Receive)
}

func (sess *Session) transfer(name string, dir Direction) error {
	start := time.Now()
	err := sess.startTransfer(name, dir)
	sess.recordCommand(dir.op(), err, start)
	return err
}

func (sess *Session) startTransfer(name string, dir Direction) error {
	op := dir.op()
	if !validFileName(name) {
		return opError(op, name, ErrInvalidName, nil)
	}

	mode := sess.modes.current()
	if mode == ModeNone {
		return opError(op, name, ErrNoChannel, nil)
	}

	res := TransferResult{
		SessionID: sess.id,
		Name:      name,
		Path:      sess.box.resolvedPath(sess.cwd) + name,
		Direction: dir,
		Mode:      mode,
	}
	if mode == ModeActive {
		remote, _ := sess.modes.endpoint()
		return sess.transferActive(remote, res)
	}
	return sess.transferPassive(res)
}

// openLocal opens name in the working directory for the given direction.
func (sess *Session) openLocal(name string, dir Direction) (*os.File, error) {
	flag := os.O_RDONLY
	if dir == Receive {
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := sess.box.openFile(sess.cwd, name, flag)
	if err != nil {
		return nil, openError(dir.op(), name, err)
	}

	if dir == Send {
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, openError(dir.op(), name, err)
		}
		if info.IsDir() {
			f.Close()
			return nil, opError(dir.op(), name, ErrFileNotFound, errors.New("is a directory"))
		}
	}
	return f, nil
}

// transferActive dials the client and copies on the calling goroutine.
// A file to send is opened before dialing, so a missing file never reaches
// the client; a file to receive is opened after, so a failed dial leaves it
// untouched.
func (sess *Session) transferActive(remote *net.TCPAddr, res TransferResult) error {
	name, op := res.Name, res.Direction.op()

	var file *os.File
	if res.Direction == Send {
		f, err := sess.openLocal(name, res.Direction)
		if err != nil {
			return err
		}
		file = f
	}

	sess.logger.Info(op, "name", name, "client_addr", remote.String())
	conn, err := net.DialTCP("tcp", nil, remote)
	if err != nil {
		if file != nil {
			file.Close()
		}
		err = opError(op, name, ErrConnectFailure, err)
		sess.logger.Warn("dial_failed", "name", name, "client_addr", remote.String(), "error", err)
		return err
	}
	sess.logger.Debug("connected to client", "client_addr", remote.String())

	if file == nil {
		f, err := sess.openLocal(name, res.Direction)
		if err != nil {
			conn.Close()
			return err
		}
		file = f
	}

	res = sess.copyData(conn, file, res)
	sess.finish(res)
	return res.Err
}

// transferPassive opens the file, hands it and the pending listener to a
// worker and returns without waiting for the client.
func (sess *Session) transferPassive(res TransferResult) error {
	file, err := sess.openLocal(res.Name, res.Direction)
	if err != nil {
		// The listener stays pending so the client can retry.
		return err
	}

	ln, _ := sess.modes.takeListener()

	sess.mu.Lock()
	sess.pending[ln] = struct{}{}
	sess.mu.Unlock()

	sess.workers.Add(1)
	go sess.servePassive(ln, file, res)

	sess.logger.Debug("passive transfer started",
		"operation", res.Direction.op(),
		"name", res.Name,
		"addr", ln.Addr().String(),
	)
	return nil
}

// servePassive waits for the single client connection on ln and runs the
// copy. Its outcome only reaches the log and the transfer hook.
func (sess *Session) servePassive(ln *net.TCPListener, file *os.File, res TransferResult) {
	defer sess.workers.Done()

	conn, err := ln.Accept()

	sess.mu.Lock()
	delete(sess.pending, ln)
	sess.mu.Unlock()
	ln.Close()

	if err != nil {
		file.Close()
		res.Err = opError(res.Direction.op(), res.Name, ErrConnectFailure, err)
		sess.finish(res)
		return
	}

	sess.finish(sess.copyData(conn, file, res))
}

// copyData moves the bytes between conn and file through a buffer of the
// configured size, then closes the file and the connection, in that order:
// a peer that waits for the connection to close can rely on the file being
// complete on disk.
func (sess *Session) copyData(conn net.Conn, file *os.File, res TransferResult) TransferResult {
	var (
		src io.Reader = file
		dst io.Writer = conn
	)
	if res.Direction == Receive {
		src, dst = conn, file
	}

	start := time.Now()
	buf := make([]byte, sess.server.bufferSize)
	// The struct wrappers hide ReaderFrom/WriterTo so every chunk goes through buf.
	n, err := io.CopyBuffer(struct{ io.Writer }{dst}, struct{ io.Reader }{src}, buf)

	if cerr := file.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close file: %w", cerr)
	}
	conn.Close()

	res.Bytes = n
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = opError(res.Direction.op(), res.Name, ErrTransferIO, err)
	}
	return res
}

// finish logs a transfer outcome, records metrics and calls the hook.
func (sess *Session) finish(res TransferResult) {
	if res.Err != nil {
		sess.logger.Error("transfer_failed",
			"operation", res.Direction.op(),
			"name", res.Name,
			"mode", res.Mode.String(),
			"bytes", res.Bytes,
			"error", res.Err,
		)
	} else {
		throughputMBps := float64(0)
		if res.Duration.Seconds() > 0 {
			throughputMBps = float64(res.Bytes) / res.Duration.Seconds() / 1024 / 1024
		}
		sess.logger.Info("transfer_complete",
			"operation", res.Direction.op(),
			"name", res.Name,
			"path", res.Path,
			"mode", res.Mode.String(),
			"bytes", res.Bytes,
			"duration_ms", res.Duration.Milliseconds(),
			"throughput_mbps", fmt.Sprintf("%.2f", throughputMBps),
		)
		if sess.server.metricsCollector != nil {
			sess.server.metricsCollector.RecordTransfer(res.Direction.op(), res.Bytes, res.Duration)
		}
	}

	if hook := sess.server.transferHook; hook != nil {
		hook(res)
	}
}
