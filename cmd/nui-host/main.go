// Command nui-host runs a Lua script against a native UI runtime.
//
// The script talks to the native side through the bridge session: it
// creates widgets, builds trees, sets properties and listens for events.
//
// Usage:
//
//	nui-host [flags]
//
// Flags:
//
//	-config string        Configuration file path (yaml)
//	-script string        Lua script to run
//	-addr string          Native host address (default "localhost:7420")
//	-exec string          Spawn a native host binary and talk to it over stdio
//	-sim                  Run against an in-process simulated native runtime
//	-discover             Find the native host via mDNS
//	-interactive          Start a Lua REPL after the script
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-log-format string    Log format: text, json, zap (default "text")
//	-protocol-log string  Write protocol events to this file (.nlog)
//	-attrs string         Attribute override table (yaml)
//
// Every flag can also be set in the config file or through an environment
// variable with the NUI_ prefix (e.g. NUI_LOG_LEVEL=debug).
//
// Examples:
//
//	# Run a script against the in-process simulator
//	nui-host -sim -script examples/hello.lua
//
//	# Connect to the first host advertised on the network
//	nui-host -discover -interactive
//
//	# Capture a protocol trace
//	nui-host -addr 192.168.1.20:7420 -script app.lua -protocol-log app.nlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/nativeui-go/nativeui/pkg/attrs"
	"github.com/nativeui-go/nativeui/pkg/bridge"
	"github.com/nativeui-go/nativeui/pkg/runloop"
	"github.com/nativeui-go/nativeui/pkg/script"
	"github.com/nativeui-go/nativeui/pkg/transport"
)

func main() {
	fs := flag.NewFlagSet("nui-host", flag.ExitOnError)
	registerFlags(fs)
	if err := fs.Parse(os.Args[1:]); err != nil {
		os.Exit(1)
	}

	cfg, err := loadConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fs.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stdlog.Fatalf("nui-host: %v", err)
	}
}

// run connects, executes the script and optionally the REPL, then tears the
// session down. It returns when the script is done and no REPL is
// requested, when the connection ends, or when ctx is done.
func run(ctx context.Context, cfg Config, stdout, stderr io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logs, err := setupLogging(cfg, stderr)
	if err != nil {
		return err
	}
	defer logs.Close()
	logger := logs.slog

	translator := attrs.Default()
	if cfg.Attrs != "" {
		if err := translator.LoadFile(cfg.Attrs); err != nil {
			return fmt.Errorf("load attribute table: %w", err)
		}
	}

	// The loop outlives ctx so shutdown can still run on it.
	loop := runloop.New()
	go loop.Run(context.WithoutCancel(ctx))
	defer loop.Stop()

	sessionID := uuid.NewString()
	conn, err := connect(ctx, cfg, transport.StreamConfig{
		Logger:         logger,
		ProtocolLogger: logs.protocol,
		SessionID:      sessionID,
	}, loop, logger)
	if err != nil {
		return err
	}
	logger.Info("connected", "native", conn.describe, "session", sessionID)

	session := bridge.NewSession(conn.stream, bridge.Config{
		Logger:         logger,
		ProtocolLogger: logs.protocol,
		Translator:     translator,
		Resources:      conn.resources,
		SessionID:      sessionID,
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- conn.stream.Serve(ctx, session, loop)
	}()

	var rp *repl
	out := stdout
	if cfg.Interactive {
		if rp, err = newREPL(loop); err != nil {
			return err
		}
		out = rp.Stdout()
	}

	rt := script.New(session, script.Config{
		Logger: logger,
		Output: out,
		OnError: func(err error) {
			fmt.Fprintf(out, "script error: %v\n", err)
		},
	})
	defer shutdown(loop, rt, session, logger)

	if cfg.Script != "" {
		if err := loop.Call(ctx, func() error { return rt.DoFile(cfg.Script) }); err != nil {
			return fmt.Errorf("run %s: %w", cfg.Script, err)
		}
	}

	if rp != nil {
		rp.rt = rt
		done := make(chan struct{})
		go func() {
			defer close(done)
			rp.Run(ctx)
		}()
		select {
		case <-done:
			return nil
		case err := <-serveErr:
			return connectionEnded(err)
		case <-ctx.Done():
			return nil
		}
	}

	select {
	case err := <-serveErr:
		return connectionEnded(err)
	case <-ctx.Done():
		return nil
	}
}

func connectionEnded(err error) error {
	if err != nil {
		return fmt.Errorf("connection lost: %w", err)
	}
	stdlog.Println("native side closed the connection")
	return nil
}

// shutdown closes the script and session on the loop so pending callbacks
// see a consistent state.
func shutdown(loop *runloop.Loop, rt *script.Runtime, session *bridge.Session, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := loop.Call(ctx, func() error {
		rt.Close()
		return session.Close()
	})
	if err != nil {
		logger.Warn("shutdown", "error", err)
	}
}
