//go:build unix

package droidsdk

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSdkManager installs a tools/android script that records its arguments and
// the first stdin line, then exits with status.
func fakeSdkManager(t *testing.T, sdk string, status string) {
	t.Helper()
	script := `#!/bin/sh
dir=$(dirname "$0")
echo "$@" > "$dir/../args.txt"
read answer
echo "$answer" > "$dir/../answer.txt"
exit ` + status + "\n"
	writeFile(t, filepath.Join(sdk, "tools", "android"), script)
	require.NoError(t, chmodExec(filepath.Join(sdk, "tools", "android")))
}

func TestUpdateArgs(t *testing.T) {
	assert.Equal(t,
		[]string{"update", "sdk", "--no-ui", "--all", "--filter", "build-tools-23.0.2"},
		updateArgs("build-tools-23.0.2"))
}

func TestAndroidToolInstall(t *testing.T) {
	sdk := t.TempDir()
	fakeSdkManager(t, sdk, "0")

	code, err := (&AndroidTool{SdkRoot: sdk, OS: OSLinux}).Install(context.Background(), "platform-tools")
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "update sdk --no-ui --all --filter platform-tools\n", readFile(t, filepath.Join(sdk, "args.txt")))
	assert.Equal(t, "y\n", readFile(t, filepath.Join(sdk, "answer.txt")))
}

func TestAndroidToolInstallReportsExitStatus(t *testing.T) {
	sdk := t.TempDir()
	fakeSdkManager(t, sdk, "3")

	code, err := (&AndroidTool{SdkRoot: sdk, OS: OSLinux}).Install(context.Background(), "android-23")
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestAndroidToolMissing(t *testing.T) {
	code, err := (&AndroidTool{SdkRoot: t.TempDir(), OS: OSLinux}).Install(context.Background(), "platform-tools")
	assert.Error(t, err)
	assert.Equal(t, -1, code)
}

func TestAndroidToolPath(t *testing.T) {
	assert.Equal(t, filepath.Join("/sdk", "tools", "android"), (&AndroidTool{SdkRoot: "/sdk", OS: OSLinux}).toolPath())
	assert.Equal(t, filepath.Join("/sdk", "tools", "android.bat"), (&AndroidTool{SdkRoot: "/sdk", OS: OSWindows}).toolPath())
}
