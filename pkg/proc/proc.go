// Package proc runs install and test commands for a matrix iteration.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"slices"
	"strings"
)

// ExitError reports a command that started but exited unsuccessfully.
// Errors that are not an *ExitError mean the command could not be run at all.
type ExitError struct {
	Cmd  string
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Cmd, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// IsExit reports whether err is (or wraps) an *ExitError.
func IsExit(err error) bool {
	var e *ExitError
	return errors.As(err, &e)
}

// Runner executes commands in a directory with extra environment.
// The zero value runs in the current directory with the inherited
// environment and discards output.
type Runner struct {
	Dir    string
	Env    map[string]string // added on top of os.Environ()
	Stdout io.Writer
	Stderr io.Writer
}

// Run executes argv[0] with the remaining arguments.
func (r Runner) Run(ctx context.Context, argv ...string) error {
	if len(argv) == 0 {
		return errors.New("proc: empty command")
	}
	return r.exec(ctx, exec.CommandContext(ctx, argv[0], argv[1:]...), strings.Join(argv, " "))
}

// Shell executes cmd through the system shell (sh -c, or cmd /C on Windows).
func (r Runner) Shell(ctx context.Context, cmd string) error {
	return r.exec(ctx, shellCommand(ctx, cmd), cmd)
}

func (r Runner) exec(ctx context.Context, cmd *exec.Cmd, display string) error {
	cmd.Dir = r.Dir
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	cmd.Env = r.environ()

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", display, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Cmd: display, Code: exitErr.ExitCode(), Err: err}
	}
	return fmt.Errorf("%s: %w", display, err)
}

// environ returns os.Environ() followed by r.Env in sorted key order, so
// later entries override inherited ones.
func (r Runner) environ() []string {
	env := os.Environ()
	keys := make([]string, 0, len(r.Env))
	for k := range r.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		env = append(env, k+"="+r.Env[k])
	}
	return env
}

func shellCommand(ctx context.Context, cmd string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", cmd)
	}
	return exec.CommandContext(ctx, "sh", "-c", cmd)
}
