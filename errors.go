package rpcftp

import (
	"fmt"

	"github.com/gonzalop/rpcftp/internal/wire"
)

// Error kinds reported by the server. A *ProtocolError matches its kind with
// errors.Is:
//
//	if err := c.ChangeDir("docs"); errors.Is(err, rpcftp.ErrNotFound) {
//	    // ...
//	}
var (
	ErrInvalidName      = wire.ErrInvalidName
	ErrNotFound         = wire.ErrNotFound
	ErrNotADirectory    = wire.ErrNotADirectory
	ErrAlreadyAtRoot    = wire.ErrAlreadyAtRoot
	ErrNoChannel        = wire.ErrNoChannel
	ErrInvalidEndpoint  = wire.ErrInvalidEndpoint
	ErrBindFailure      = wire.ErrBindFailure
	ErrConnectFailure   = wire.ErrConnectFailure
	ErrTransferIO       = wire.ErrTransferIO
	ErrFileNotFound     = wire.ErrFileNotFound
	ErrPermissionDenied = wire.ErrPermissionDenied
)

// ProtocolError represents an error returned by the server, with the call
// that produced it. This provides detailed debugging information beyond
// simple error messages.
type ProtocolError struct {
	// Command is the call that was made (e.g., "Cd")
	Command string

	// Response is the error message returned by the server (e.g., "cd docs: no such directory")
	Response string

	// Code is the numeric FTP-style reply code (e.g., 550)
	Code int

	// Kind is the error kind reported by the server, or nil if it sent none.
	Kind error
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	return fmt.Sprintf("rpcftp: %s failed: %s (code %d)", e.Command, e.Response, e.Code)
}

// Unwrap returns the error kind, so errors.Is(err, ErrNotFound) works.
func (e *ProtocolError) Unwrap() error {
	return e.Kind
}

// Is4xx returns true if the error code is in the 4xx range (temporary failure).
func (e *ProtocolError) Is4xx() bool {
	return e.Code >= 400 && e.Code < 500
}

// Is5xx returns true if the error code is in the 5xx range (permanent failure).
func (e *ProtocolError) Is5xx() bool {
	return e.Code >= 500 && e.Code < 600
}

// IsTemporary returns true if the error is a temporary failure (4xx).
// This can be used to implement retry logic.
func (e *ProtocolError) IsTemporary() bool {
	return e.Is4xx()
}

// IsPermanent returns true if the error is a permanent failure (5xx).
func (e *ProtocolError) IsPermanent() bool {
	return e.Is5xx()
}
