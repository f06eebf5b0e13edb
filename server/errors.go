package server

import (
	"errors"
	"os"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// Error kinds returned by Session operations. Use errors.Is to test for them.
var (
	// ErrInvalidName is returned when a name contains a path separator or is empty.
	ErrInvalidName = wire.ErrInvalidName

	// ErrNotFound is returned by Cd when the target directory does not exist.
	ErrNotFound = wire.ErrNotFound

	// ErrNotADirectory is returned by Cd when the target is not a directory.
	ErrNotADirectory = wire.ErrNotADirectory

	// ErrAlreadyAtRoot is returned by Cd("..") at the root directory.
	ErrAlreadyAtRoot = wire.ErrAlreadyAtRoot

	// ErrNoChannel is returned by Get and Put before Port or Pasv was called,
	// or after the passive listener was consumed by a previous transfer.
	ErrNoChannel = wire.ErrNoChannel

	// ErrInvalidEndpoint is returned by Port for a missing address or port.
	ErrInvalidEndpoint = wire.ErrInvalidEndpoint

	// ErrBindFailure is returned by Pasv when the listener cannot be opened.
	ErrBindFailure = wire.ErrBindFailure

	// ErrConnectFailure is returned when the active data connection cannot be
	// dialed, or a passive worker fails to accept.
	ErrConnectFailure = wire.ErrConnectFailure

	// ErrTransferIO is returned when a read or write fails mid-copy.
	ErrTransferIO = wire.ErrTransferIO

	// ErrFileNotFound is returned when the file to send does not exist.
	ErrFileNotFound = wire.ErrFileNotFound

	// ErrPermissionDenied is returned when the local file cannot be opened.
	ErrPermissionDenied = wire.ErrPermissionDenied
)

// OpError describes a failed session operation.
//
// It matches its Kind with errors.Is and also unwraps to the underlying
// cause (for example os.ErrNotExist), when there is one.
type OpError struct {
	// Op is the operation name ("cd", "get", "pasv", ...).
	Op string

	// Name is the file, directory or endpoint argument, if any.
	Name string

	// Kind is one of the Err* values of this package.
	Kind error

	// Err is the underlying cause. May be nil.
	Err error
}

func (e *OpError) Error() string {
	s := e.Op
	if e.Name != "" {
		s += " " + e.Name
	}
	s += ": " + e.Kind.Error()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap returns the kind and the cause.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func opError(op, name string, kind, err error) *OpError {
	return &OpError{Op: op, Name: name, Kind: kind, Err: err}
}

// openError classifies a failure to open a local file.
func openError(op, name string, err error) *OpError {
	switch {
	case errors.Is(err, os.ErrNotExist):
		return opError(op, name, ErrFileNotFound, err)
	case errors.Is(err, os.ErrPermission):
		return opError(op, name, ErrPermissionDenied, err)
	default:
		return opError(op, name, ErrTransferIO, err)
	}
}

// Code returns the FTP-style reply code used to report err over the wire.
func Code(err error) int {
	return wire.Code(err)
}
