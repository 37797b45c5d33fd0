//go:build !linux

package process

import "os/exec"

// setDeathSignal is a no-op where parent-death signals are unavailable;
// daemon workers may briefly outlive a crashed parent on these platforms.
func setDeathSignal(cmd *exec.Cmd) {
	_ = cmd
}
