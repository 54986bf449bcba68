package droidsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// SdkEnvVar names a candidate SDK installation directory.
	SdkEnvVar = "ANDROID_HOME"
	// userSdkDirName is the conventional per-user SDK directory under $HOME.
	userSdkDirName = ".android-sdk"
)

// OS families that change behavior.
const (
	OSWindows = "windows"
	OSDarwin  = "darwin"
	OSLinux   = "linux"
)

// Environment is a snapshot of the ambient inputs the locator reads.
// It is captured once and passed explicitly so tests can fake every field.
type Environment struct {
	HomeDir string
	Vars    map[string]string
	OS      string
}

// ProbeEnvironment captures the current process environment.
func ProbeEnvironment() (*Environment, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine user home directory: %w", err)
	}

	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) == 2 {
			vars[parts[0]] = parts[1]
		}
	}

	return &Environment{HomeDir: home, Vars: vars, OS: runtime.GOOS}, nil
}

// Lookup returns a non-blank environment variable.
func (e *Environment) Lookup(key string) (string, bool) {
	val := strings.TrimSpace(e.Vars[key])
	return val, val != ""
}

// IsWindows reports whether paths must be escaped when persisted.
func (e *Environment) IsWindows() bool {
	return e.OS == OSWindows
}

// UserSdkDir is <home>/.android-sdk, both a candidate and the default install target.
func (e *Environment) UserSdkDir() string {
	return filepath.Join(e.HomeDir, userSdkDirName)
}
