package process

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/term"
)

// defaultWinsize is used when stdin is not a terminal.
var defaultWinsize = pty.Winsize{Cols: 80, Rows: 24}

// runPTY starts cmd on a new pseudo-terminal, feeds it r.Stdin and copies
// everything the child writes to res.Stdout. The master side is closed on
// every path.
func (r *Runner) runPTY(cmd *exec.Cmd, res *Result) (startErr, waitErr error) {
	ws := terminalSize(int(os.Stdin.Fd()))
	ptmx, err := pty.StartWithSize(cmd, &ws)
	if err != nil {
		return err, nil
	}
	defer ptmx.Close()

	if r.Stdin != nil {
		// Ends when Stdin is exhausted or the master is closed.
		go func() { _, _ = io.Copy(ptmx, r.Stdin) }()
	}

	var out bytes.Buffer
	if _, err := io.Copy(newTeeWriter(&out, r.Stdout), ptmx); err != nil && !isPTYClosed(err) {
		r.logger().Debug("reading pty output", "err", err)
	}
	waitErr = cmd.Wait()
	res.Stdout = out.String()
	return nil, waitErr
}

// terminalSize mirrors the size of the controlling terminal on fd.
func terminalSize(fd int) pty.Winsize {
	if !term.IsTerminal(fd) {
		return defaultWinsize
	}
	cols, rows, err := term.GetSize(fd)
	if err != nil || cols <= 0 || rows <= 0 {
		return defaultWinsize
	}
	return pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)}
}

// Linux reports EIO on the master once the child side has gone away.
func isPTYClosed(err error) bool {
	return errors.Is(err, syscall.EIO) || errors.Is(err, fs.ErrClosed)
}
