//go:build unix

package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// ExecSpawner starts processes in their own session so they outlive the
// dock.
type ExecSpawner struct {
	// Dir is the working directory of the child; empty inherits ours.
	Dir string
	// Display and XAuthority are given to children whose environment lacks
	// them.
	Display    string
	XAuthority string
}

// Spawn starts command and returns once it is running. The child is reaped
// in the background.
func (s ExecSpawner) Spawn(command string, args []string) error {
	cmd := exec.Command(command, args...)
	cmd.Dir = s.Dir
	cmd.Env = childEnv(os.Environ(), s.Display, s.XAuthority)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", command, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
