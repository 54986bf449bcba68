package droidsdk

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testEnv is a linux environment with a private home directory.
func testEnv(t *testing.T, vars map[string]string) *Environment {
	t.Helper()
	if vars == nil {
		vars = map[string]string{}
	}
	return &Environment{HomeDir: t.TempDir(), Vars: vars, OS: OSLinux}
}

// writeFile creates path (and its parents) with content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// populate gives dir one entry so it no longer counts as missing.
func populate(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "source.properties"), "Pkg.Revision=1\n")
}

// fakeProvisioner records every target and leaves a populated directory behind.
type fakeProvisioner struct {
	targets []string
	err     error
}

func (p *fakeProvisioner) Provision(_ context.Context, targetDir string) error {
	p.targets = append(p.targets, targetDir)
	if p.err != nil {
		return p.err
	}
	if err := os.MkdirAll(filepath.Join(targetDir, "tools"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(targetDir, "tools", "android"), []byte("#!/bin/sh\n"), 0o755)
}

// fakeInstaller records requested packages and answers with per-package exit codes.
type fakeInstaller struct {
	sdkRoot  string
	installs []string
	codes    map[string]int
	// materialize, when set, creates each successfully installed component's directory.
	materialize map[string]string
}

func (f *fakeInstaller) Install(_ context.Context, pkg string) (int, error) {
	f.installs = append(f.installs, pkg)
	if code := f.codes[pkg]; code != 0 {
		return code, nil
	}
	if dir, ok := f.materialize[pkg]; ok {
		if err := os.MkdirAll(filepath.Join(f.sdkRoot, dir), 0o755); err != nil {
			return -1, err
		}
		if err := os.WriteFile(filepath.Join(f.sdkRoot, dir, "source.properties"), nil, 0o644); err != nil {
			return -1, err
		}
	}
	return 0, nil
}

type fakeProber struct {
	result ProbeResult
	calls  [][]string
}

func (p *fakeProber) Probe(repoDirs []string, _ []Dependency) ProbeResult {
	p.calls = append(p.calls, repoDirs)
	return p.result
}
