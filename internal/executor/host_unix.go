//go:build !windows

package executor

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so that a timeout
// also kills any helpers the benchmark script spawned.
func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	c.Cancel = func() error {
		if c.Process == nil {
			return nil
		}
		return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
	}
}
