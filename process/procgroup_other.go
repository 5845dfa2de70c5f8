//go:build !unix

package process

import "os/exec"

// killProcessGroup keeps the exec.CommandContext default where there are no
// process groups: only the child is killed, and cmd.WaitDelay bounds Wait.
func killProcessGroup(cmd *exec.Cmd, newGroup bool) {}
