// Command nui-sim is a simulated native UI host.
//
// It serves the bridge protocol over TCP, giving each connection its own
// simulated widget runtime, and advertises itself via mDNS so nui-host
// -discover can find it. With -stdio it serves a single session over
// stdin and stdout instead, for use with nui-host -exec.
//
// Usage:
//
//	nui-sim [flags]
//
// Flags:
//
//	-addr string          Listen address (default ":7420")
//	-name string          mDNS instance name (default: hostname)
//	-platform string      Platform reported to scripts (default "sim")
//	-advertise            Advertise via mDNS (default true)
//	-interface string     Network interface for mDNS (default: all)
//	-stdio                Serve one session over stdin/stdout
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-protocol-log string  Write protocol events to this file (.nlog)
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/nativeui-go/nativeui/internal/nativesim"
	"github.com/nativeui-go/nativeui/pkg/discovery"
	"github.com/nativeui-go/nativeui/pkg/log"
	"github.com/nativeui-go/nativeui/pkg/transport"
)

// Config holds the simulator configuration.
type Config struct {
	Addr        string
	Name        string
	Platform    string
	Advertise   bool
	Interface   string
	Stdio       bool
	LogLevel    string
	ProtocolLog string
}

var config Config

func init() {
	flag.StringVar(&config.Addr, "addr", fmt.Sprintf(":%d", transport.DefaultPort), "Listen address")
	flag.StringVar(&config.Name, "name", "", "mDNS instance name (default: hostname)")
	flag.StringVar(&config.Platform, "platform", "sim", "Platform reported to scripts")
	flag.BoolVar(&config.Advertise, "advertise", true, "Advertise via mDNS")
	flag.StringVar(&config.Interface, "interface", "", "Network interface for mDNS (default: all)")
	flag.BoolVar(&config.Stdio, "stdio", false, "Serve one session over stdin/stdout")
	flag.StringVar(&config.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&config.ProtocolLog, "protocol-log", "", "Write protocol events to this file (.nlog)")
}

func main() {
	flag.Parse()

	// stdout carries frames in stdio mode.
	stdlog.SetOutput(os.Stderr)
	stdlog.SetFlags(stdlog.Ltime | stdlog.Lmicroseconds)

	logger, err := newLogger(config.LogLevel, os.Stderr)
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}

	var protocol log.Logger
	if config.ProtocolLog != "" {
		fl, err := log.NewFileLogger(config.ProtocolLog)
		if err != nil {
			stdlog.Fatalf("Failed to open protocol log: %v", err)
		}
		defer fl.Close()
		protocol = fl
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if config.Stdio {
		rt := nativesim.New(nativesim.Config{Platform: config.Platform, Logger: logger})
		if err := rt.ServeConn(ctx, stdio{}); err != nil && ctx.Err() == nil {
			stdlog.Fatalf("Serve failed: %v", err)
		}
		return
	}

	srv, err := startServer(ctx, config, logger, protocol)
	if err != nil {
		stdlog.Fatalf("Failed to start: %v", err)
	}
	stdlog.Printf("Simulated native host listening on %s (platform %s)", srv.Addr(), config.Platform)

	if config.Advertise {
		adv, err := advertise(ctx, config, srv.Addr(), logger)
		if err != nil {
			stdlog.Printf("Warning: mDNS advertising failed: %v", err)
		} else {
			defer adv.Stop()
		}
	}

	<-ctx.Done()
	stdlog.Println("Shutting down...")
	if err := srv.Stop(); err != nil {
		stdlog.Printf("Error stopping server: %v", err)
	}
}

// startServer listens on cfg.Addr and serves every connection with a fresh
// simulated runtime.
func startServer(ctx context.Context, cfg Config, logger *slog.Logger, protocol log.Logger) (*transport.Server, error) {
	srv, err := transport.NewServer(transport.ServerConfig{
		Address: cfg.Addr,
		Logger:  protocol,
		OnConnect: func(ctx context.Context, conn *transport.ServerConn) {
			stdlog.Printf("Session %s from %s", conn.ConnID()[:8], conn.RemoteAddr())
			rt := nativesim.New(nativesim.Config{Platform: cfg.Platform, Logger: logger})
			stop := context.AfterFunc(ctx, func() { conn.Close() })
			defer stop()
			if err := rt.Serve(ctx, conn.Framer()); err != nil && ctx.Err() == nil {
				stdlog.Printf("Session %s ended: %v", conn.ConnID()[:8], err)
			}
			stdlog.Printf("Session %s closed (%d widgets)", conn.ConnID()[:8], rt.Len())
		},
		OnError: func(err error) {
			logger.Warn("server error", "error", err)
		},
	})
	if err != nil {
		return nil, err
	}
	if err := srv.Start(ctx); err != nil {
		return nil, err
	}
	return srv, nil
}

// advertise publishes the listener at addr over mDNS.
func advertise(ctx context.Context, cfg Config, addr net.Addr, logger *slog.Logger) (*discovery.Advertiser, error) {
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		return nil, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return nil, err
	}

	name := cfg.Name
	if name == "" {
		if name, err = os.Hostname(); err != nil {
			return nil, err
		}
		name = "nui-sim-" + name
	}

	adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{Interface: cfg.Interface, Logger: logger})
	h := &discovery.Host{
		InstanceName: name,
		Port:         uint16(port),
		Platform:     cfg.Platform,
		Version:      discovery.ProtocolVersion,
	}
	if err := adv.Advertise(ctx, h); err != nil {
		return nil, err
	}
	stdlog.Printf("Advertising %q as %s", name, discovery.ServiceType)
	return adv, nil
}

func newLogger(level string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// stdio joins stdin and stdout into one connection.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (stdio) Close() error                { return os.Stdin.Close() }
