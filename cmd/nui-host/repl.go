package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/nativeui-go/nativeui/pkg/runloop"
	"github.com/nativeui-go/nativeui/pkg/script"
)

// repl reads Lua chunks from the terminal and runs them on the loop.
type repl struct {
	rl   *readline.Instance
	rt   *script.Runtime
	loop *runloop.Loop
}

// newREPL creates the prompt. The script runtime is set once it exists.
func newREPL(loop *runloop.Loop) (*repl, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "nui> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &repl{rl: rl, loop: loop}, nil
}

// Stdout returns a writer that coordinates with the prompt.
func (r *repl) Stdout() io.Writer {
	return r.rl.Stdout()
}

// Run reads lines until EOF, "exit" or ctx is done.
func (r *repl) Run(ctx context.Context) {
	defer r.rl.Close()

	out := r.rl.Stdout()
	fmt.Fprintln(out, `Lua REPL. The "nativeui" table is loaded. Type "exit" to quit.`)

	var chunk strings.Builder
	for {
		if ctx.Err() != nil {
			return
		}

		line, err := r.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				chunk.Reset()
				r.rl.SetPrompt("nui> ")
				continue
			}
			return
		}

		trimmed := strings.TrimSpace(line)
		if chunk.Len() == 0 {
			switch trimmed {
			case "":
				continue
			case "exit", "quit":
				return
			}
		}

		// A trailing backslash continues the chunk on the next line.
		if strings.HasSuffix(trimmed, `\`) {
			chunk.WriteString(strings.TrimSuffix(trimmed, `\`))
			chunk.WriteByte('\n')
			r.rl.SetPrompt(">> ")
			continue
		}
		chunk.WriteString(line)
		code := chunk.String()
		chunk.Reset()
		r.rl.SetPrompt("nui> ")

		if err := r.loop.Call(ctx, func() error { return r.rt.DoString(code) }); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}
