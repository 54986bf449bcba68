package droidsdk

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProbeResult is the outcome of checking whether local repositories satisfy a
// set of dependencies.
type ProbeResult int

const (
	ProbeAvailable ProbeResult = iota
	ProbeUnavailable
	// ProbeIndeterminate means the check itself failed; callers treat it as unavailable.
	ProbeIndeterminate
)

func (p ProbeResult) String() string {
	switch p {
	case ProbeAvailable:
		return "available"
	case ProbeUnavailable:
		return "unavailable"
	default:
		return "indeterminate"
	}
}

// Prober is a trial resolution of deps against local repositories. It never fails.
type Prober interface {
	Probe(repoDirs []string, deps []Dependency) ProbeResult
}

// MavenProbe resolves dependencies against local Maven-layout repositories
// (<repo>/<group path>/<name>/<version>/).
type MavenProbe struct{}

func (MavenProbe) Probe(repoDirs []string, deps []Dependency) ProbeResult {
	for _, dep := range deps {
		found := false
		for _, repo := range repoDirs {
			ok, err := resolveInRepo(repo, dep)
			if err != nil {
				debugf("Probe of %s in %s failed: %v\n", dep, repo, err)
				return ProbeIndeterminate
			}
			if ok {
				found = true
				break
			}
		}
		if !found {
			debugf("%s is not in the local repositories\n", dep)
			return ProbeUnavailable
		}
	}
	return ProbeAvailable
}

type mavenMetadata struct {
	Versions []string `xml:"versioning>versions>version"`
}

func resolveInRepo(repo string, dep Dependency) (bool, error) {
	artifactDir := filepath.Join(repo, filepath.FromSlash(strings.ReplaceAll(dep.Group, ".", "/")), dep.Name)

	if strings.ContainsAny(dep.Version, "[]()") {
		return false, fmt.Errorf("version ranges are not supported: %s", dep.Version)
	}
	if !strings.HasSuffix(dep.Version, "+") {
		return artifactPresent(artifactDir, dep.Name, dep.Version)
	}

	prefix := strings.TrimSuffix(dep.Version, "+")
	versions, err := listVersions(artifactDir)
	if err != nil {
		return false, err
	}
	for _, v := range versions {
		if !strings.HasPrefix(v, prefix) {
			continue
		}
		ok, err := artifactPresent(artifactDir, dep.Name, v)
		if err != nil || ok {
			return ok, err
		}
	}
	return false, nil
}

// listVersions prefers maven-metadata.xml and falls back to the directory listing.
func listVersions(artifactDir string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(artifactDir, "maven-metadata.xml"))
	if err == nil {
		var meta mavenMetadata
		if err := xml.Unmarshal(data, &meta); err != nil {
			return nil, fmt.Errorf("corrupt maven-metadata.xml in %s: %w", artifactDir, err)
		}
		return meta.Versions, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	entries, err := os.ReadDir(artifactDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, e := range entries {
		if e.IsDir() {
			versions = append(versions, e.Name())
		}
	}
	return versions, nil
}

// artifactPresent looks for name-version.{aar,jar,pom} in the version directory.
func artifactPresent(artifactDir, name, version string) (bool, error) {
	for _, ext := range []string{".aar", ".jar", ".pom"} {
		_, err := os.Stat(filepath.Join(artifactDir, version, name+"-"+version+ext))
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return false, err
		}
	}
	return false, nil
}
