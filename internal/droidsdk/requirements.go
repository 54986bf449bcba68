package droidsdk

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the build manifest read from the build root.
const ManifestFileName = "droidsdk.yaml"

// Dependency is one declared library dependency, group:name:version.
type Dependency struct {
	Group   string
	Name    string
	Version string
}

func (d Dependency) String() string {
	return d.Group + ":" + d.Name + ":" + d.Version
}

// ParseDependency parses "group:name:version" notation. An optional
// classifier/extension suffix (":classifier" or "@aar") is ignored.
func ParseDependency(notation string) (Dependency, error) {
	notation, _, _ = strings.Cut(strings.TrimSpace(notation), "@")
	parts := strings.Split(notation, ":")
	if len(parts) < 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return Dependency{}, fmt.Errorf("invalid dependency %q: expected group:name:version", notation)
	}
	return Dependency{Group: parts[0], Name: parts[1], Version: parts[2]}, nil
}

// Requirements is the read-only view of what the build declares.
type Requirements struct {
	// HasTargetPlatform is false for builds without an android block.
	HasTargetPlatform  bool
	Offline            bool
	BuildToolsRevision string
	CompileTarget      string
	// Dependencies maps configuration name to its declared dependencies.
	Dependencies map[string][]Dependency
}

// DependenciesInGroup returns every declared dependency published under group,
// across all configurations, in configuration-name order.
func (r *Requirements) DependenciesInGroup(group string) []Dependency {
	configs := make([]string, 0, len(r.Dependencies))
	for name := range r.Dependencies {
		configs = append(configs, name)
	}
	sort.Strings(configs)

	var found []Dependency
	for _, name := range configs {
		for _, dep := range r.Dependencies[name] {
			if dep.Group == group {
				found = append(found, dep)
			}
		}
	}
	return found
}

type manifest struct {
	Offline bool `yaml:"offline"`
	Android *struct {
		CompileSdkVersion string `yaml:"compileSdkVersion"`
		BuildToolsVersion string `yaml:"buildToolsVersion"`
	} `yaml:"android"`
	Dependencies map[string][]string `yaml:"dependencies"`
}

// LoadRequirements reads a build manifest from disk.
func LoadRequirements(path string) (*Requirements, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	req, err := ParseRequirements(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return req, nil
}

// ParseRequirements decodes manifest YAML.
func ParseRequirements(data []byte) (*Requirements, error) {
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest: %w", err)
	}

	req := &Requirements{
		Offline:      m.Offline,
		Dependencies: make(map[string][]Dependency),
	}
	if m.Android != nil {
		req.CompileTarget = normalizeTarget(m.Android.CompileSdkVersion)
		req.BuildToolsRevision = strings.TrimSpace(m.Android.BuildToolsVersion)
		req.HasTargetPlatform = req.CompileTarget != ""
	}

	for config, notations := range m.Dependencies {
		for _, notation := range notations {
			dep, err := ParseDependency(notation)
			if err != nil {
				return nil, fmt.Errorf("configuration %s: %w", config, err)
			}
			req.Dependencies[config] = append(req.Dependencies[config], dep)
		}
	}
	return req, nil
}

// normalizeTarget turns a bare API level ("19") into its platform id ("android-19").
func normalizeTarget(target string) string {
	target = strings.TrimSpace(target)
	if target != "" && strings.Trim(target, "0123456789") == "" {
		return "android-" + target
	}
	return target
}
