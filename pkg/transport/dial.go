package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os/exec"
	"time"
)

// DefaultConnectTimeout bounds Dial when ctx has no deadline.
const DefaultConnectTimeout = 10 * time.Second

// Dial connects to a native host over TCP.
func Dial(ctx context.Context, address string, config StreamConfig) (*Stream, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("dial failed: %w", err)
	}
	return NewStream(conn, config), nil
}

// Spawn starts a native host process and talks to it over its stdin and
// stdout. Closing the stream closes stdin and waits for the process.
func Spawn(ctx context.Context, path string, args []string, config StreamConfig) (*Stream, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", path, err)
	}

	return NewStream(&processConn{cmd: cmd, stdin: stdin, stdout: stdout}, config), nil
}

// processConn is an io.ReadWriteCloser over a child process's pipes.
type processConn struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *processConn) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *processConn) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *processConn) Close() error {
	err := p.stdin.Close()
	waitErr := p.cmd.Wait()
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		// Exit status after a closed stdin is the host's business.
		waitErr = nil
	}
	return errors.Join(err, waitErr)
}
