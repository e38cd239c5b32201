package engine

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result is one invocation's outcome as observed by the caller.
type Result struct {
	// Stdout and Stderr are replayed byte for byte, trailing whitespace and
	// embedded NULs included.
	Stdout []byte
	Stderr []byte

	// ExitCode is the invocation's exit status.
	ExitCode int

	// Cached reports whether the result was served from the cache rather
	// than a live invocation.
	Cached bool
}

// Runner is the single capability the engine needs from an operation: invoke
// it and capture the outcome. Operation failure is an exit code, not an
// error; the engine replays failures as faithfully as successes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: implementations should honor cancellation for foreground calls.
type Runner interface {
	Invoke(ctx context.Context, args []string) Result
}

// RunnerFunc adapts a function to the Runner interface.
type RunnerFunc func(ctx context.Context, args []string) Result

// Invoke calls f.
func (f RunnerFunc) Invoke(ctx context.Context, args []string) Result {
	return f(ctx, args)
}

// commandRunner runs an external command, capturing its streams.
type commandRunner struct {
	name     string
	baseArgs []string
}

// Command returns a Runner that executes the named program with baseArgs
// followed by the per-call arguments, capturing stdout, stderr, and the exit
// status byte for byte.
func Command(name string, baseArgs ...string) Runner {
	return &commandRunner{name: name, baseArgs: baseArgs}
}

// Invoke runs the command. A command that cannot be started at all reports
// exit 127 with the start error on stderr, mirroring shell conventions.
func (c *commandRunner) Invoke(ctx context.Context, args []string) Result {
	cmd := exec.CommandContext(ctx, c.name, append(append([]string{}, c.baseArgs...), args...)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 127
			stderr.WriteString(err.Error())
			stderr.WriteByte('\n')
		}
	}

	return Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
	}
}

// Interface compile checks.
var (
	_ Runner = (RunnerFunc)(nil)
	_ Runner = (*commandRunner)(nil)
)
