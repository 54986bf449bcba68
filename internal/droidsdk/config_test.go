package droidsdk

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyValues(t *testing.T) {
	values, err := parseKeyValues(strings.NewReader(`
# comment
! also a comment
DROIDSDK_MIRROR = "https://mirror.example.com/android/"
DROIDSDK_SDK_VERSION='24.4.1'
not a pair
DROIDSDK_SDK_VERSION=24.3.4
`))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"DROIDSDK_MIRROR":      "https://mirror.example.com/android/",
		"DROIDSDK_SDK_VERSION": "24.3.4",
	}, values)
}

func TestLoadConfig(t *testing.T) {
	t.Cleanup(func() { Debug = false })

	tests := map[string]struct {
		file  string
		vars  map[string]string
		check func(t *testing.T, cfg *Config)
	}{
		"defaults without a file": {
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, defaultSdkURL, cfg.SdkURL)
				assert.Equal(t, defaultSdkVersion, cfg.SdkVersion)
				assert.Empty(t, cfg.Mirror)
				assert.Equal(t, "droidsdk", filepath.Base(cfg.CacheDir))
			},
		},
		"file values": {
			file: "DROIDSDK_SDK_URL=https://example.com/sdk/\nDROIDSDK_CACHE_DIR=/var/cache/droidsdk\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "https://example.com/sdk", cfg.SdkURL)
				assert.Equal(t, "/var/cache/droidsdk", cfg.CacheDir)
			},
		},
		"environment overrides file": {
			file: "DROIDSDK_SDK_VERSION=24.3.4\nDROIDSDK_MIRROR=https://a.example.com\n",
			vars: map[string]string{
				"DROIDSDK_MIRROR": "s3://sdk-mirror/android/",
				"ANDROID_HOME":    "/ignored",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "24.3.4", cfg.SdkVersion)
				assert.Equal(t, "s3://sdk-mirror/android", cfg.Mirror)
				assert.NotContains(t, cfg.Values, "ANDROID_HOME")
			},
		},
		"debug switch": {
			vars: map[string]string{"DROIDSDK_DEBUG": "1"},
			check: func(t *testing.T, cfg *Config) {
				assert.True(t, Debug)
			},
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			Debug = false
			path := filepath.Join(t.TempDir(), "droidsdk.conf")
			if tc.file != "" {
				writeFile(t, path, tc.file)
			}
			cfg, err := loadConfig(path, testEnv(t, tc.vars))
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
