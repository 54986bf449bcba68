package droidsdk

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Locator finds, or provisions, the SDK for a build root and records it in
// local.properties.
type Locator struct {
	Provisioner Provisioner
	// ReadOnly reports the SDK found without recording it in local.properties.
	ReadOnly bool
}

// locateRun is the state of one Locate pass.
type locateRun struct {
	store *PropertiesStore
	env   *Environment
	// candidate is the path the chosen source settled on.
	candidate string
}

// locationSource is one entry of the fallback chain. available must be free of
// side effects; materialize is only called on the first available source.
type locationSource struct {
	name        string
	available   func(r *locateRun) (bool, error)
	materialize func(ctx context.Context, l *Locator, r *locateRun) (string, error)
}

// locationSources is the search order; the last entry is always available.
var locationSources = []locationSource{
	{
		name:        PropertiesFileName,
		available:   persistedAvailable,
		materialize: persistedMaterialize,
	},
	{
		name:        SdkEnvVar,
		available:   envAvailable,
		materialize: envMaterialize,
	},
	{
		name:        "~/" + userSdkDirName,
		available:   userDirAvailable,
		materialize: persistCandidate,
	},
	{
		name: "download",
		available: func(r *locateRun) (bool, error) {
			r.candidate = r.env.UserSdkDir()
			return true, nil
		},
		materialize: provisionCandidate,
	},
}

// Locate returns the SDK root for buildRoot.
//
// A path already recorded in local.properties is returned untouched (relative
// paths are taken from the build root), and is fatal (ErrInconsistentState) if it
// no longer exists. Any other source is persisted exactly once unless ReadOnly.
func (l *Locator) Locate(ctx context.Context, buildRoot string, env *Environment) (string, error) {
	run := &locateRun{
		store: NewPropertiesStore(buildRoot, env),
		env:   env,
	}

	for _, src := range locationSources {
		ok, err := src.available(run)
		if err != nil {
			return "", err
		}
		if !ok {
			debugf("SDK source %s not available\n", src.name)
			continue
		}
		debugf("Using SDK source %s\n", src.name)
		return src.materialize(ctx, l, run)
	}
	return "", fmt.Errorf("no SDK location source available")
}

func persistedAvailable(r *locateRun) (bool, error) {
	if !r.store.Exists() {
		return false, nil
	}
	dir, ok, err := r.store.Get(SdkDirKey)
	if err != nil {
		return false, err
	}
	if dir != "" && !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(r.store.Path), dir)
	}
	r.candidate = dir
	return ok && dir != "", nil
}

func persistedMaterialize(_ context.Context, _ *Locator, r *locateRun) (string, error) {
	if !isDir(r.candidate) {
		return "", fmt.Errorf("%w: %s in %s points to %s, which does not exist",
			ErrInconsistentState, SdkDirKey, r.store.Path, r.candidate)
	}
	return r.candidate, nil
}

func envAvailable(r *locateRun) (bool, error) {
	dir, ok := r.env.Lookup(SdkEnvVar)
	r.candidate = dir
	return ok, nil
}

// envMaterialize treats a missing $ANDROID_HOME as the requested install location.
func envMaterialize(ctx context.Context, l *Locator, r *locateRun) (string, error) {
	if isDir(r.candidate) {
		return persistCandidate(ctx, l, r)
	}
	colWarn.Printf("%s=%s does not exist, installing a fresh SDK there\n", SdkEnvVar, r.candidate)
	return provisionCandidate(ctx, l, r)
}

func userDirAvailable(r *locateRun) (bool, error) {
	r.candidate = r.env.UserSdkDir()
	return isDir(r.candidate), nil
}

func provisionCandidate(ctx context.Context, l *Locator, r *locateRun) (string, error) {
	if l.Provisioner == nil {
		return "", fmt.Errorf("%w: no SDK found and no provisioner configured", ErrInstallationFailure)
	}
	if err := l.Provisioner.Provision(ctx, r.candidate); err != nil {
		return "", err
	}
	return persistCandidate(ctx, l, r)
}

func persistCandidate(_ context.Context, l *Locator, r *locateRun) (string, error) {
	if l.ReadOnly {
		debugf("Not recording %s in %s\n", r.candidate, r.store.Path)
		return r.candidate, nil
	}
	if err := r.store.Set(SdkDirKey, r.candidate); err != nil {
		return "", err
	}
	step("Recorded %s=%s in %s", SdkDirKey, r.candidate, r.store.Path)
	return r.candidate, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
