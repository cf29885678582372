//go:build !windows

package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestSetupProcessGroup_KillsChildren(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	// the shell backgrounds a grandchild that must die with it
	cmd := exec.CommandContext(ctx, "sh", "-c", "sleep 60 & sleep 60")
	setupProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	pid := cmd.Process.Pid

	if err := unix.Kill(pid, 0); err != nil {
		t.Fatalf("process %d not alive after start: %v", pid, err)
	}

	cancel()
	_ = cmd.Wait()
	time.Sleep(50 * time.Millisecond)

	if err := unix.Kill(-pid, 0); err == nil {
		t.Errorf("process group %d still alive after cancel", pid)
	}
}

func TestSetupProcessGroup_SetsAttributes(t *testing.T) {
	cmd := exec.Command("echo", "test")
	setupProcessGroup(cmd)

	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("Setpgid not set")
	}
	if cmd.Cancel == nil {
		t.Error("Cancel function not set")
	}
}

func TestSetupProcessGroup_CancelNilProcess(t *testing.T) {
	cmd := exec.Command("nonexistent-binary-xyz")
	setupProcessGroup(cmd)

	if err := cmd.Cancel(); err != nil {
		t.Errorf("expected nil error for nil process, got: %v", err)
	}
}

func TestSetupProcessGroup_CancelAfterExit(t *testing.T) {
	cmd := exec.Command("true")
	setupProcessGroup(cmd)
	if err := cmd.Run(); err != nil {
		t.Fatalf("run: %v", err)
	}

	err := cmd.Cancel()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		t.Fatalf("cancelling an exited group should report ErrProcessDone, got %v", err)
	}
}
