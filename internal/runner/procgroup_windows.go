//go:build windows

package runner

import "os/exec"

// setupProcessGroup is a no-op on Windows where Setpgid is unavailable.
// Cancellation falls back to exec.CommandContext killing the process itself.
func setupProcessGroup(cmd *exec.Cmd) {}
