package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uzzu/strikts/process"
)

func newExecCmd(a *app) *cobra.Command {
	var (
		usePTY  bool
		timeout time.Duration
		dir     string
	)
	cmd := &cobra.Command{
		Use:   "exec [flags] -- COMMAND [ARGS...]",
		Short: "Run a command with the merged environment",
		Long: `Run COMMAND with the process environment plus every variable the .env
file sets and the environment does not. Placeholders are not exported.

A single argument is split like a shell command line, with $VAR expanded
against the merged environment. Several arguments are passed through as-is.
strikts exits with the command's exit code.

Examples:
  strikts exec -- go test ./...
  strikts exec -- 'psql "$DATABASE_URL"'
  strikts exec --timeout 30s --pty -- make release`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.load()
			if err != nil {
				return err
			}

			r := &process.Runner{
				Dir:      a.cfg.Exec.Dir,
				Env:      d.AllVariables(),
				Isolated: true,
				Stdin:    cmd.InOrStdin(),
				Stdout:   cmd.OutOrStdout(),
				Stderr:   cmd.ErrOrStderr(),
				Timeout:  time.Duration(a.cfg.Exec.Timeout),
				PTY:      a.cfg.Exec.PTY,
				Logger:   a.logger,
			}
			if cmd.Flags().Changed("pty") {
				r.PTY = usePTY
			}
			if cmd.Flags().Changed("timeout") {
				r.Timeout = timeout
			}
			if cmd.Flags().Changed("dir") {
				r.Dir = dir
			}

			var res *process.Result
			if len(args) == 1 {
				res, err = r.Invoke(cmd.Context(), args[0])
			} else {
				res, err = r.InvokeArgs(cmd.Context(), args[0], args[1:]...)
			}
			return execResult(a, res, err)
		},
	}
	// Everything after COMMAND belongs to it, dashes included.
	cmd.Flags().SetInterspersed(false)
	cmd.Flags().BoolVar(&usePTY, "pty", false, "run the command on a pseudo-terminal")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "kill the command after this long (0 = no limit)")
	cmd.Flags().StringVar(&dir, "dir", "", "working directory for the command")
	return cmd
}

// execResult turns an invocation outcome into the CLI exit status.
func execResult(a *app, res *process.Result, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && res != nil:
		return &exitError{Code: ExitTimeout, Err: fmt.Errorf("%s: timed out after %s", res.Command, formatElapsed(res.Duration))}
	case errors.Is(err, process.ErrEmptyCommand):
		return usageError(err)
	case err != nil && res == nil:
		return &exitError{Code: ExitCannotRun, Err: err}
	case err != nil:
		return err
	}

	a.logger.Debug("command finished", "id", res.ID, "code", res.ExitCode, "signal", res.Signal, "elapsed", formatElapsed(res.Duration))
	if !res.Success() {
		return silentExit(exitStatus(res))
	}
	return nil
}

// exitStatus follows the shell convention of 128+N for a child killed by
// signal N.
func exitStatus(res *process.Result) int {
	switch {
	case res.ExitCode >= 0:
		return res.ExitCode
	case res.Signal > 0:
		return 128 + res.Signal
	}
	return ExitFailure
}
