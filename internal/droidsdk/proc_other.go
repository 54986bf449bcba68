//go:build !unix

package droidsdk

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(pgid int) {
	if p, err := os.FindProcess(pgid); err == nil {
		_ = p.Kill()
	}
}

func lockFile(f *os.File) error { return nil }

func unlockFile(f *os.File) {}
