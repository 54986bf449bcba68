package droidsdk

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const envPrefix = "DROIDSDK_"

// Config holds the tool's own settings (not the build's local.properties).
type Config struct {
	Values     map[string]string
	CacheDir   string
	SdkURL     string
	SdkVersion string
	Mirror     string
}

// loadConfig reads /etc/droidsdk.conf (missing file is fine) and merges DROIDSDK_* overrides.
func loadConfig(path string, env *Environment) (*Config, error) {
	cfg := &Config{Values: make(map[string]string)}

	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		values, err := parseKeyValues(file)
		if err != nil {
			return cfg, err
		}
		cfg.Values = values
	}

	mergeEnvOverrides(cfg, env)
	initConfig(cfg, env)
	return cfg, nil
}

// parseKeyValues reads key=value lines, skipping blanks and comments.
// Later occurrences of a key win.
func parseKeyValues(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		val := strings.TrimSpace(parts[1])
		val = strings.Trim(val, `"'`)
		values[key] = val
	}
	return values, scanner.Err()
}

// Merge DROIDSDK_* env overrides
func mergeEnvOverrides(cfg *Config, env *Environment) {
	for key, val := range env.Vars {
		if strings.HasPrefix(key, envPrefix) {
			cfg.Values[key] = val
		}
	}
}

func initConfig(cfg *Config, env *Environment) {
	if cfg.Values["DROIDSDK_DEBUG"] == "1" {
		Debug = true
	}

	cfg.CacheDir = cfg.Values["DROIDSDK_CACHE_DIR"]
	if cfg.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			cfg.CacheDir = filepath.Join(dir, "droidsdk")
		} else {
			cfg.CacheDir = filepath.Join(env.HomeDir, ".cache", "droidsdk")
		}
	}

	cfg.SdkURL = strings.TrimRight(cfg.Values["DROIDSDK_SDK_URL"], "/")
	if cfg.SdkURL == "" {
		cfg.SdkURL = defaultSdkURL
	}

	cfg.SdkVersion = cfg.Values["DROIDSDK_SDK_VERSION"]
	if cfg.SdkVersion == "" {
		cfg.SdkVersion = defaultSdkVersion
	}

	if mirror := cfg.Values["DROIDSDK_MIRROR"]; mirror != "" {
		cfg.Mirror = strings.TrimRight(mirror, "/")
		debugf("=> Using SDK mirror: %s\n", cfg.Mirror)
	}
}
