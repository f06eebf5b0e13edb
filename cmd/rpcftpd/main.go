// Command rpcftpd serves a directory to rpcftp clients.
//
// Usage:
//
//	rpcftpd [-config rpcftpd.yaml] [-addr :1099] [-root DIR] [-host IP] [-log-level info]
//
// Flags given on the command line override the configuration file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gonzalop/rpcftp/internal/config"
	"github.com/gonzalop/rpcftp/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "rpcftpd:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("rpcftpd", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML configuration file")
	addr := fs.String("addr", "", "control listen address (default :1099)")
	root := fs.String("root", "", "directory to serve (default .)")
	host := fs.String("host", "", "address passive listeners bind to")
	logLevel := fs.String("log-level", "", "debug, info, warn or error")
	logFormat := fs.String("log-format", "", "text or json")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "root":
			cfg.Root = *root
		case "host":
			cfg.PassiveHost = *host
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := cfg.Log.Logger(os.Stderr)
	slog.SetDefault(logger)

	srv, err := server.NewServer(cfg.Addr, cfg.Root,
		server.WithLogger(logger),
		server.WithPassiveHost(cfg.PassiveHost),
		server.WithBufferSize(cfg.BufferSize),
		server.WithMaxConnections(cfg.MaxConnections),
		server.WithMaxIdleTime(cfg.MaxIdleTime),
		server.WithMetricsCollector(&logMetrics{logger: logger}),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	logger.Info("serving", "addr", cfg.Addr, "root", srv.Root())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := srv.Shutdown(); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, server.ErrServerClosed) {
		return err
	}
	return nil
}

// logMetrics writes server metrics to the debug log.
type logMetrics struct {
	logger *slog.Logger
}

func (m *logMetrics) RecordCommand(op string, success bool, duration time.Duration) {
	m.logger.Debug("metric_command", "op", op, "success", success, "duration", duration)
}

func (m *logMetrics) RecordTransfer(operation string, bytes int64, duration time.Duration) {
	m.logger.Debug("metric_transfer", "operation", operation, "bytes", bytes, "duration", duration)
}

func (m *logMetrics) RecordConnection(accepted bool, reason string) {
	m.logger.Debug("metric_connection", "accepted", accepted, "reason", reason)
}
