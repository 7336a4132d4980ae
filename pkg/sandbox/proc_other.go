//go:build !unix

package sandbox

import "os/exec"

// setProcessGroup relies on the default Cancel, which kills only the
// interpreter process.
func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) {}
