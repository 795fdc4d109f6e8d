//go:build !unix

package launcher

import (
	"fmt"
	"os"
	"os/exec"
)

// ExecSpawner starts processes without waiting for them.
type ExecSpawner struct {
	Dir        string
	Display    string
	XAuthority string
}

// Spawn starts command and returns once it is running.
func (s ExecSpawner) Spawn(command string, args []string) error {
	cmd := exec.Command(command, args...)
	cmd.Dir = s.Dir
	cmd.Env = childEnv(os.Environ(), s.Display, s.XAuthority)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", command, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
