package server

import "time"

// MetricsCollector is an optional interface for collecting server metrics.
// Implementations can send metrics to monitoring systems like Prometheus,
// StatsD, DataDog, etc.
//
// Methods are called from control goroutines and from passive transfer
// workers, so implementations must be safe for concurrent use and should not
// block.
//
// The server checks for a nil collector before calling methods.
type MetricsCollector interface {
	// RecordCommand records a control operation.
	// op is the operation name ("cd", "dir", "port", "pasv", "get", "put").
	// success indicates whether the call returned without error. For passive
	// get/put this only covers the setup, not the copy.
	RecordCommand(op string, success bool, duration time.Duration)

	// RecordTransfer records a completed file transfer.
	// operation is "get" (download) or "put" (upload).
	RecordTransfer(operation string, bytes int64, duration time.Duration)

	// RecordConnection records a control connection attempt.
	// reason is "accepted" or "global_limit_reached".
	RecordConnection(accepted bool, reason string)
}
