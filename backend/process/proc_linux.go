//go:build linux

package process

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setDeathSignal ties a daemon worker's lifetime to its parent: the kernel
// delivers SIGKILL to the child if the parent dies first.
func setDeathSignal(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = unix.SIGKILL
}
