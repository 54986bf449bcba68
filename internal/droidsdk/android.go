package droidsdk

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Installer installs one SDK package and reports the package manager's exit status.
// The error return is reserved for failing to run the tool at all.
type Installer interface {
	Install(ctx context.Context, pkg string) (int, error)
}

// licenseAnswers is fed to the sdk manager's stdin; it asks once per license.
var licenseAnswers = strings.Repeat("y\n", 32)

// AndroidTool drives <sdk>/tools/android in unattended mode.
type AndroidTool struct {
	SdkRoot string
	OS      string
}

func (a *AndroidTool) toolPath() string {
	name := "android"
	if a.OS == OSWindows {
		name = "android.bat"
	}
	return filepath.Join(a.SdkRoot, "tools", name)
}

// updateArgs builds the fixed argument list for one package filter.
func updateArgs(pkg string) []string {
	return []string{"update", "sdk", "--no-ui", "--all", "--filter", pkg}
}

// Install runs `android update sdk --no-ui --all --filter <pkg>`, accepting licenses.
func (a *AndroidTool) Install(ctx context.Context, pkg string) (int, error) {
	tool := a.toolPath()
	if _, err := os.Stat(tool); err != nil {
		return -1, fmt.Errorf("sdk manager not found at %s: %w", tool, err)
	}

	debugf("Running %s %s\n", tool, strings.Join(updateArgs(pkg), " "))
	cmd := exec.Command(tool, updateArgs(pkg)...)
	cmd.Stdin = strings.NewReader(licenseAnswers)

	err := NewExecutor(ctx).Run(cmd)
	code, ok := exitStatus(err)
	if !ok {
		return -1, fmt.Errorf("failed to run sdk manager for %s: %w", pkg, err)
	}
	return code, nil
}
