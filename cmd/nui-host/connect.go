package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/nativeui-go/nativeui/internal/nativesim"
	"github.com/nativeui-go/nativeui/pkg/bridge"
	"github.com/nativeui-go/nativeui/pkg/discovery"
	"github.com/nativeui-go/nativeui/pkg/runloop"
	"github.com/nativeui-go/nativeui/pkg/transport"
	"github.com/nativeui-go/nativeui/pkg/wire"
)

// connection is the transport chosen by the configuration.
type connection struct {
	stream    *transport.Stream
	resources bridge.ResourceLoader
	describe  string
}

// connect opens the stream selected by cfg.
func connect(ctx context.Context, cfg Config, sc transport.StreamConfig, loop *runloop.Loop, logger *slog.Logger) (*connection, error) {
	switch {
	case cfg.Sim:
		rt := nativesim.New(nativesim.Config{Logger: logger})
		script, native := net.Pipe()
		go func() {
			if err := rt.ServeConn(ctx, native); err != nil && ctx.Err() == nil {
				logger.Warn("simulated runtime stopped", "error", err)
			}
		}()
		return &connection{
			stream:    transport.NewStream(script, sc),
			resources: &simResources{rt: rt, loop: loop},
			describe:  "in-process simulator",
		}, nil

	case cfg.Exec != "":
		s, err := transport.Spawn(ctx, cfg.Exec, []string{"-stdio"}, sc)
		if err != nil {
			return nil, err
		}
		return &connection{stream: s, describe: cfg.Exec}, nil

	case cfg.Discover:
		dctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
		h, err := discovery.NewBrowser(discovery.BrowserConfig{}).Find(dctx, cfg.Instance)
		if err != nil {
			return nil, fmt.Errorf("discover native host: %w", err)
		}
		logger.Info("discovered native host", "instance", h.InstanceName, "platform", h.Platform, "addr", h.Addr())
		return dial(ctx, h.Addr(), cfg, sc)

	default:
		return dial(ctx, cfg.Addr, cfg, sc)
	}
}

func dial(ctx context.Context, addr string, cfg Config, sc transport.StreamConfig) (*connection, error) {
	dctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	s, err := transport.Dial(dctx, addr, sc)
	if err != nil {
		return nil, err
	}
	return &connection{stream: s, describe: addr}, nil
}

// simResources loads resources into the in-process simulator and delivers
// the result on the run loop.
type simResources struct {
	rt   *nativesim.Runtime
	loop *runloop.Loop
}

func (r *simResources) LoadResource(path, id string, done func(id string, h wire.Handle, err error)) {
	r.rt.LoadResource(path, id, func(id string, h wire.Handle, err error) {
		r.loop.Post(func() { done(id, h, err) })
	})
	r.rt.Flush()
}
