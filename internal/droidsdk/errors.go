package droidsdk

import (
	"errors"
	"fmt"
)

var (
	// ErrInconsistentState means a recorded SDK location no longer exists on disk.
	ErrInconsistentState = errors.New("inconsistent sdk state")
	// ErrInstallationFailure means an install or download step failed.
	ErrInstallationFailure = errors.New("sdk installation failed")
)

// InstallError reports a package-manager run that exited non-zero.
type InstallError struct {
	Package  string
	ExitCode int
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install %q: sdk manager exited with status %d", e.Package, e.ExitCode)
}

func (e *InstallError) Unwrap() error {
	return ErrInstallationFailure
}
