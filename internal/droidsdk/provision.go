package droidsdk

import (
	"context"
	"fmt"
	"strings"
)

const (
	defaultSdkURL     = "https://dl.google.com/android"
	defaultSdkVersion = "24.4.1"
)

// Provisioner puts a fresh SDK into a directory.
type Provisioner interface {
	Provision(ctx context.Context, targetDir string) error
}

// ArchiveProvisioner downloads the SDK distribution for an OS family and unpacks it.
type ArchiveProvisioner struct {
	Fetcher *Fetcher
	// BaseURL is where archives are fetched from: http(s):// or s3://bucket/prefix.
	BaseURL string
	Version string
	OS      string
}

// NewArchiveProvisioner wires a provisioner from the tool config, preferring the mirror.
func NewArchiveProvisioner(ctx context.Context, cfg *Config, env *Environment) (*ArchiveProvisioner, error) {
	fetcher := &Fetcher{CacheDir: cfg.CacheDir}
	base := cfg.SdkURL
	if cfg.Mirror != "" {
		base = cfg.Mirror
		if isS3(base) {
			client, err := NewS3Client(ctx, cfg)
			if err != nil {
				return nil, err
			}
			fetcher.S3 = client
		}
	}
	return &ArchiveProvisioner{
		Fetcher: fetcher,
		BaseURL: base,
		Version: cfg.SdkVersion,
		OS:      env.OS,
	}, nil
}

func isS3(url string) bool {
	return strings.HasPrefix(url, "s3://")
}

// archiveName is the distribution file for an OS family, e.g. android-sdk_r24.4.1-linux.tgz.
func archiveName(version, osFamily string) string {
	switch osFamily {
	case OSWindows:
		return fmt.Sprintf("android-sdk_r%s-windows.zip", version)
	case OSDarwin:
		return fmt.Sprintf("android-sdk_r%s-macosx.zip", version)
	default:
		return fmt.Sprintf("android-sdk_r%s-linux.tgz", version)
	}
}

// Provision downloads and extracts the SDK into targetDir. Every failure
// is reported as ErrInstallationFailure.
func (p *ArchiveProvisioner) Provision(ctx context.Context, targetDir string) error {
	url := p.BaseURL + "/" + archiveName(p.Version, p.OS)

	step("Downloading Android SDK r%s", p.Version)
	archive, err := p.Fetcher.Fetch(ctx, url)
	if err != nil {
		return fmt.Errorf("%w: download of %s failed: %w", ErrInstallationFailure, url, err)
	}

	step("Extracting SDK into %s", targetDir)
	if err := extractArchive(archive, targetDir); err != nil {
		if evictErr := p.Fetcher.Evict(url); evictErr != nil {
			debugf("%v\n", evictErr)
		}
		return fmt.Errorf("%w: extracting %s into %s failed: %w", ErrInstallationFailure, archive, targetDir, err)
	}
	return nil
}
