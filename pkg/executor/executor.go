package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"time"
)

// maxStderr bounds how much stderr is kept for the failure report.
const maxStderr = 64 * 1024

// waitDelay bounds how long Run waits for output pipes after the context is
// cancelled and the shell has been killed.
const waitDelay = 2 * time.Second

// Result captures execution details for a generated command.
type Result struct {
	Command  string        `json:"command"`
	Workdir  string        `json:"workdir,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
}

// Success reports whether the command exited with status 0.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// Executor runs a command line through the system shell.
type Executor struct {
	shell   []string
	workdir string
	stdout  io.Writer
	stdin   io.Reader
}

// Option configures an Executor.
type Option func(*Executor)

// WithStdout sets where the command's standard output is streamed.
func WithStdout(w io.Writer) Option {
	return func(e *Executor) {
		e.stdout = w
	}
}

// WithStdin sets the command's standard input.
func WithStdin(r io.Reader) Option {
	return func(e *Executor) {
		e.stdin = r
	}
}

// WithWorkdir sets the working directory for executed commands.
func WithWorkdir(dir string) Option {
	return func(e *Executor) {
		e.workdir = dir
	}
}

// WithShell overrides the shell invocation prefix, e.g. {"bash", "-c"}.
// An empty prefix keeps the platform default.
func WithShell(shell ...string) Option {
	return func(e *Executor) {
		if len(shell) > 0 {
			e.shell = shell
		}
	}
}

// New creates an executor using the platform shell.
func New(opts ...Option) *Executor {
	e := &Executor{
		shell:  DefaultShell(runtime.GOOS),
		stdout: os.Stdout,
		stdin:  os.Stdin,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultShell returns the shell prefix used for goos.
func DefaultShell(goos string) []string {
	if goos == "windows" {
		return []string{"cmd", "/C"}
	}
	return []string{"sh", "-c"}
}

// Run executes command, streaming stdout live and capturing stderr.
// A non-zero exit status is reported in the Result, not as an error; an
// error means the command could not be started.
func (e *Executor) Run(ctx context.Context, command string) (*Result, error) {
	if command == "" {
		return nil, fmt.Errorf("no command to execute")
	}

	args := append(append([]string{}, e.shell[1:]...), command)
	cmd := exec.CommandContext(ctx, e.shell[0], args...)
	if e.workdir != "" {
		cmd.Dir = e.workdir
	}

	stderr := &limitedBuffer{limit: maxStderr}
	cmd.Stdout = e.stdout
	cmd.Stderr = stderr
	cmd.Stdin = e.stdin
	cmd.WaitDelay = waitDelay

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			return nil, fmt.Errorf("failed to run command: %w", err)
		}
	}

	return &Result{
		Command:  command,
		Workdir:  e.workdir,
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// limitedBuffer keeps the first limit bytes written and drops the rest
// while still reporting full writes, so the child never blocks on stderr.
type limitedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
			b.truncated = true
		} else {
			b.buf.Write(p)
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + "\n... (truncated)"
	}
	return b.buf.String()
}
