//go:build !windows

package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setupProcessGroup starts the child as the leader of a new process group.
// On shutdown the whole group gets SIGKILL, so a shell command and
// everything it spawned stop together.
func setupProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if errors.Is(err, unix.ESRCH) {
			// exec ignores ErrProcessDone from Cancel
			return fmt.Errorf("process group %d: %w", cmd.Process.Pid, os.ErrProcessDone)
		}
		return err
	}
}
