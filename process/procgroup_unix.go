//go:build unix

package process

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// killProcessGroup makes context cancellation kill the child's whole
// process group, so grandchildren holding the output pipes die too.
// newGroup puts the child in a group of its own; pass false when something
// else (pty.Start's Setsid) already does.
func killProcessGroup(cmd *exec.Cmd, newGroup bool) {
	if newGroup {
		if cmd.SysProcAttr == nil {
			cmd.SysProcAttr = &syscall.SysProcAttr{}
		}
		cmd.SysProcAttr.Setpgid = true
	}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
