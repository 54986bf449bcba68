package droidsdk

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deps(t *testing.T, notations ...string) map[string][]Dependency {
	t.Helper()
	out := map[string][]Dependency{}
	for _, n := range notations {
		d, err := ParseDependency(n)
		require.NoError(t, err)
		out["implementation"] = append(out["implementation"], d)
	}
	return out
}

func TestResolveInstallsMissingComponents(t *testing.T) {
	tests := map[string]struct {
		req      *Requirements
		present  []string
		probe    ProbeResult
		installs []string
		repos    []string
	}{
		"plain platform": {
			req: &Requirements{
				HasTargetPlatform:  true,
				BuildToolsRevision: "23.0.2",
				CompileTarget:      "android-23",
			},
			installs: []string{"build-tools-23.0.2", "platform-tools", "android-23"},
		},
		"google apis with base platform present": {
			req: &Requirements{
				HasTargetPlatform: true,
				CompileTarget:     "Google Inc.:Google APIs:19",
			},
			present:  []string{"platform-tools", "platforms/android-19"},
			installs: []string{"addon-google_apis-google-19"},
		},
		"glass preview target": {
			req: &Requirements{
				HasTargetPlatform: true,
				CompileTarget:     "Google Inc.:Glass Development Kit Preview:19",
			},
			present:  []string{"platform-tools"},
			installs: []string{"addon-google_gdk-google-19"},
		},
		"no support dependencies registers nothing": {
			req: &Requirements{
				Dependencies: deps(t, "com.squareup.okhttp:okhttp:2.5.0"),
			},
			present: []string{"platform-tools"},
		},
		"outdated support repository is updated": {
			req: &Requirements{
				Dependencies: deps(t, "com.android.support:appcompat-v7:23.1.1"),
			},
			present:  []string{"platform-tools", "extras/android/m2repository"},
			probe:    ProbeIndeterminate,
			installs: []string{"extra-android-m2repository"},
			repos:    []string{"extras/android/m2repository"},
		},
		"satisfied support repository": {
			req: &Requirements{
				Dependencies: deps(t, "com.android.support:appcompat-v7:23.1.1"),
			},
			present: []string{"platform-tools", "extras/android/m2repository"},
			probe:   ProbeAvailable,
			repos:   []string{"extras/android/m2repository"},
		},
		"missing google repository registers both": {
			req: &Requirements{
				Dependencies: deps(t, "com.google.android.gms:play-services-base:8.4.0"),
			},
			present:  []string{"platform-tools"},
			installs: []string{"extra-google-m2repository"},
			repos:    []string{"extras/android/m2repository", "extras/google/m2repository"},
		},
		"no target platform skips gated steps": {
			req: &Requirements{
				BuildToolsRevision: "23.0.2",
				CompileTarget:      "android-23",
			},
			installs: []string{"platform-tools"},
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			sdk := t.TempDir()
			for _, dir := range tc.present {
				populate(t, filepath.Join(sdk, filepath.FromSlash(dir)))
			}
			inst := &fakeInstaller{sdkRoot: sdk}
			prober := &fakeProber{result: tc.probe}

			report, err := (&Resolver{Installer: inst, Prober: prober}).Resolve(context.Background(), sdk, tc.req)
			require.NoError(t, err)

			assert.Equal(t, tc.installs, inst.installs)
			assert.Equal(t, tc.installs, report.Installed)

			var repos []string
			for _, r := range tc.repos {
				repos = append(repos, filepath.Join(sdk, filepath.FromSlash(r)))
			}
			assert.Equal(t, repos, report.Repositories)
		})
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	sdk := t.TempDir()
	req := &Requirements{
		HasTargetPlatform:  true,
		BuildToolsRevision: "23.0.2",
		CompileTarget:      "Google Inc.:Google APIs:23",
		Dependencies: deps(t,
			"com.android.support:support-v4:23.1.1",
			"com.google.android.gms:play-services-maps:8.4.0"),
	}
	inst := &fakeInstaller{
		sdkRoot: sdk,
		materialize: map[string]string{
			"build-tools-23.0.2":          "build-tools/23.0.2",
			"platform-tools":              "platform-tools",
			"android-23":                  "platforms/android-23",
			"addon-google_apis-google-23": "add-ons/addon-google_apis-google-23",
			"extra-android-m2repository":  "extras/android/m2repository",
			"extra-google-m2repository":   "extras/google/m2repository",
		},
	}
	resolver := &Resolver{Installer: inst, Prober: &fakeProber{result: ProbeAvailable}}

	_, err := resolver.Resolve(context.Background(), sdk, req)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"build-tools-23.0.2",
		"platform-tools",
		"android-23",
		"addon-google_apis-google-23",
		"extra-android-m2repository",
		"extra-google-m2repository",
	}, inst.installs)

	inst.installs = nil
	report, err := resolver.Resolve(context.Background(), sdk, req)
	require.NoError(t, err)
	assert.Empty(t, inst.installs)
	assert.Empty(t, report.Installed)
	assert.Len(t, report.Repositories, 2)
}

func TestResolveStopsOnFailedInstall(t *testing.T) {
	sdk := t.TempDir()
	req := &Requirements{
		HasTargetPlatform:  true,
		BuildToolsRevision: "23.0.2",
		CompileTarget:      "android-23",
	}
	inst := &fakeInstaller{sdkRoot: sdk, codes: map[string]int{"platform-tools": 3}}

	report, err := (&Resolver{Installer: inst}).Resolve(context.Background(), sdk, req)
	require.Error(t, err)

	var installErr *InstallError
	require.True(t, errors.As(err, &installErr))
	assert.Equal(t, "platform-tools", installErr.Package)
	assert.Equal(t, 3, installErr.ExitCode)
	assert.ErrorIs(t, err, ErrInstallationFailure)

	assert.Equal(t, []string{"build-tools-23.0.2", "platform-tools"}, inst.installs)
	assert.Equal(t, []string{"build-tools-23.0.2"}, report.Installed)
}

type brokenInstaller struct{}

func (brokenInstaller) Install(context.Context, string) (int, error) {
	return -1, errors.New("sdk manager not found")
}

func TestResolveInstallerError(t *testing.T) {
	_, err := (&Resolver{Installer: brokenInstaller{}}).Resolve(context.Background(), t.TempDir(), &Requirements{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstallationFailure)
	assert.Contains(t, err.Error(), "platform-tools")
}

func TestResolveRequiresInstaller(t *testing.T) {
	_, err := (&Resolver{}).Resolve(context.Background(), t.TempDir(), &Requirements{})
	assert.Error(t, err)
}

func TestResolveProbesRegisteredRepositories(t *testing.T) {
	sdk := t.TempDir()
	populate(t, PlatformTools.Path(sdk))
	populate(t, GoogleRepository.Path(sdk))
	prober := &fakeProber{result: ProbeAvailable}
	req := &Requirements{Dependencies: deps(t, "com.google.android.gms:play-services-base:8.4.0")}

	_, err := (&Resolver{Installer: &fakeInstaller{}, Prober: prober}).Resolve(context.Background(), sdk, req)
	require.NoError(t, err)

	require.Len(t, prober.calls, 1)
	assert.Equal(t, []string{SupportRepository.Path(sdk), GoogleRepository.Path(sdk)}, prober.calls[0])
}

func TestIsMissing(t *testing.T) {
	root := t.TempDir()
	empty := filepath.Join(root, "empty")
	full := filepath.Join(root, "full")
	require.NoError(t, os.MkdirAll(empty, 0o755))
	populate(t, full)

	assert.True(t, isMissing(filepath.Join(root, "absent")))
	assert.True(t, isMissing(empty))
	assert.False(t, isMissing(full))
}
