//go:build unix

package droidsdk

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chmodExec(path string) error {
	return os.Chmod(path, 0o755)
}

func TestExecutorExitStatus(t *testing.T) {
	tests := map[string]struct {
		script string
		code   int
	}{
		"success": {script: "exit 0", code: 0},
		"failure": {script: "exit 3", code: 3},
	}
	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			err := NewExecutor(context.Background()).Run(exec.Command("sh", "-c", tc.script))
			code, ok := exitStatus(err)
			assert.True(t, ok)
			assert.Equal(t, tc.code, code)
		})
	}
}

func TestExecutorStartFailure(t *testing.T) {
	err := NewExecutor(context.Background()).Run(exec.Command("/nonexistent/droidsdk-tool"))
	require.Error(t, err)
	_, ok := exitStatus(err)
	assert.False(t, ok)
}

func TestExecutorCancel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := NewExecutor(ctx).Run(exec.Command("sh", "-c", "sleep 10"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command aborted")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Less(t, time.Since(start), 5*time.Second)

	_, ok := exitStatus(err)
	assert.False(t, ok)
}
