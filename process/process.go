// Package process runs external commands and captures their exit code,
// stdout and stderr. It is the blocking counterpart of the dotenv resolver:
// callers typically feed DotEnv.AllVariables into Runner.Env.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"mvdan.cc/sh/v3/shell"
)

// ErrEmptyCommand is returned when a command line has no words.
var ErrEmptyCommand = errors.New("empty command")

// waitDelay bounds how long Wait keeps draining output after the child is
// killed, in case something outside its process group holds the pipes.
const waitDelay = 500 * time.Millisecond

// Result is the outcome of one process invocation.
type Result struct {
	ID       string // correlates log lines for one invocation
	Command  string
	Args     []string // full argv, program first
	ExitCode int // -1 when the child was killed by a signal
	Signal   int // the killing signal, or 0
	Stdout   string
	Stderr   string // always empty in PTY mode
	Duration time.Duration
}

func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// ExitError is returned by Exec when the child exits non-zero. Its message
// is the captured stderr.
type ExitError struct {
	Result *Result
}

func (e *ExitError) Error() string {
	msg := strings.TrimSpace(e.Result.Stderr)
	if msg == "" {
		msg = fmt.Sprintf("exit status %d", e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: %s", e.Result.Command, msg)
}

// Runner holds the settings shared by a series of invocations. The zero
// value runs commands in the current directory with the inherited
// environment.
type Runner struct {
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env overrides inherited variables by name.
	Env map[string]string
	// Isolated starts from an empty environment instead of os.Environ.
	Isolated bool
	// Stdin is passed to the child; nil means no input. In PTY mode it is
	// copied into the terminal.
	Stdin io.Reader
	// Stdout and Stderr, when set, receive output live in addition to
	// the captured copy. Write errors on them are ignored.
	Stdout io.Writer
	Stderr io.Writer
	// Timeout bounds each invocation. Zero means no limit.
	Timeout time.Duration
	// PTY runs the child on a pseudo-terminal. Output is combined.
	PTY bool

	Logger *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return log.Default()
}

// environ returns the child environment as KEY=VALUE pairs.
func (r *Runner) environ() []string {
	var base []string
	if !r.Isolated {
		base = os.Environ()
	}
	return envWith(base, envPairs(r.Env)...)
}

// Split breaks a command line into words using POSIX shell rules: quotes,
// escapes and $VAR expansion through lookup. Nothing is executed.
func Split(command string, lookup func(string) string) ([]string, error) {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	words, err := shell.Fields(command, lookup)
	if err != nil {
		return nil, fmt.Errorf("split command %q: %w", command, err)
	}
	return words, nil
}

// Invoke splits command and runs it. A non-zero exit status is reported in
// Result.ExitCode, not as an error. The error is non-nil only when the
// process could not be started, or when ctx ended it; in the latter case
// the partial Result is returned too.
func (r *Runner) Invoke(ctx context.Context, command string) (*Result, error) {
	env := r.environ()
	argv, err := Split(command, lookupIn(env))
	if err != nil {
		return nil, err
	}
	if len(argv) == 0 {
		return nil, ErrEmptyCommand
	}
	return r.run(ctx, strings.TrimSpace(command), argv, env)
}

// InvokeArgs runs name with args as given, without shell splitting.
func (r *Runner) InvokeArgs(ctx context.Context, name string, args ...string) (*Result, error) {
	if name == "" {
		return nil, ErrEmptyCommand
	}
	argv := append([]string{name}, args...)
	return r.run(ctx, strings.Join(argv, " "), argv, r.environ())
}

// Exec runs command and returns its stdout. A non-zero exit becomes an
// *ExitError carrying the full Result.
func (r *Runner) Exec(ctx context.Context, command string) (string, error) {
	res, err := r.Invoke(ctx, command)
	if err != nil {
		return "", err
	}
	if !res.Success() {
		return res.Stdout, &ExitError{Result: res}
	}
	return res.Stdout, nil
}

// Exec runs command with a zero Runner.
func Exec(ctx context.Context, command string) (string, error) {
	return (&Runner{}).Exec(ctx, command)
}

func (r *Runner) run(ctx context.Context, line string, argv, env []string) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	res := &Result{ID: uuid.NewString(), Command: line, Args: argv}
	logger := r.logger().With("id", res.ID)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = r.Dir
	cmd.Env = env
	cmd.WaitDelay = waitDelay
	if ctx.Done() != nil {
		// Only a cancellable child leaves the caller's process group, so
		// an uncancellable one still gets the terminal's Ctrl-C. A PTY
		// child already has its own session from pty.Start.
		killProcessGroup(cmd, !r.PTY)
	}

	logger.Debug("starting process", "command", line, "dir", r.Dir, "pty", r.PTY)
	start := time.Now()

	var startErr, waitErr error
	if r.PTY {
		startErr, waitErr = r.runPTY(cmd, res)
	} else {
		startErr, waitErr = r.runPipes(cmd, res)
	}
	res.Duration = time.Since(start)

	if startErr != nil {
		logger.Debug("process failed to start", "err", startErr)
		return nil, fmt.Errorf("start %s: %w", argv[0], startErr)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		res.ExitCode = 0
	case errors.As(waitErr, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			res.Signal = int(ws.Signal())
		}
	default:
		res.ExitCode = -1
	}
	logger.Debug("process exited", "code", res.ExitCode, "signal", res.Signal, "elapsed", res.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("%s: %w", line, err)
	}
	if waitErr != nil && exitErr == nil {
		return res, fmt.Errorf("wait %s: %w", argv[0], waitErr)
	}
	return res, nil
}

func (r *Runner) runPipes(cmd *exec.Cmd, res *Result) (startErr, waitErr error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdin = r.Stdin
	cmd.Stdout = newTeeWriter(&stdout, r.Stdout)
	cmd.Stderr = newTeeWriter(&stderr, r.Stderr)

	if err := cmd.Start(); err != nil {
		return err, nil
	}
	waitErr = cmd.Wait()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	return nil, waitErr
}

// lookupIn resolves $VAR references against a KEY=VALUE list, last wins.
func lookupIn(env []string) func(string) string {
	vars := make(map[string]string, len(env))
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}
	return func(name string) string { return vars[name] }
}
