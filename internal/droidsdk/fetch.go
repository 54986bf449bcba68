package droidsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
	"lukechampine.com/blake3"
)

// Fetcher downloads archives into a local cache directory.
type Fetcher struct {
	CacheDir string
	Quiet    bool // Quiet suppresses all stdout/stderr/progress output
	// NativeOnly skips curl and wget and always uses the Go HTTP client.
	NativeOnly bool
	Client     *http.Client
	// S3 serves s3:// URLs; nil means s3:// is not configured.
	S3 objectGetter
}

func newHttpClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSHandshakeTimeout = 30 * time.Second
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Minute, // the full SDK archive is large
	}
}

// cacheName is "<hash>-<basename>": the hash keeps different URLs with the same
// file name apart.
func cacheName(url string) string {
	h := blake3.New(32, nil)
	h.Write([]byte(url))
	sum := fmt.Sprintf("%x", h.Sum(nil))
	return sum[:16] + "-" + path.Base(url)
}

// Fetch downloads url into the cache (reusing a previous download) and returns the local path.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create cache directory %s: %w", f.CacheDir, err)
	}
	absPath := filepath.Join(f.CacheDir, cacheName(url))

	unlock, err := f.lock(absPath)
	if err != nil {
		return "", err
	}
	defer unlock()

	// Another process may have finished the download while we waited.
	if _, err := os.Stat(absPath); err == nil {
		debugf("Already in cache: %s\n", absPath)
		return absPath, nil
	}

	partPath := absPath + ".part"
	defer os.Remove(partPath)

	debugf("Downloading %s -> %s\n", url, absPath)
	if isS3(url) {
		err = f.fetchS3(ctx, url, partPath)
	} else {
		err = f.fetchHTTP(ctx, url, partPath)
	}
	if err != nil {
		return "", err
	}

	if err := os.Rename(partPath, absPath); err != nil {
		return "", fmt.Errorf("failed to move download into cache: %w", err)
	}
	return absPath, nil
}

// Evict drops the cached download of url so the next Fetch downloads it again.
func (f *Fetcher) Evict(url string) error {
	absPath := filepath.Join(f.CacheDir, cacheName(url))
	unlock, err := f.lock(absPath)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to evict %s from cache: %w", absPath, err)
	}
	debugf("Evicted %s\n", absPath)
	return nil
}

// lock takes the per-archive lock. The lock file is never removed.
func (f *Fetcher) lock(absPath string) (func(), error) {
	lFile, err := os.OpenFile(absPath+".lock", os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create lock file: %w", err)
	}
	if err := lockFile(lFile); err != nil {
		lFile.Close()
		return nil, fmt.Errorf("failed to acquire lock for download: %w", err)
	}
	return func() {
		unlockFile(lFile)
		lFile.Close()
	}, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url, dest string) error {
	if !f.NativeOnly {
		// --- Primary Choice: curl ---
		if _, err := exec.LookPath("curl"); err == nil {
			args := []string{"-L", "--fail", "-o", dest}
			if f.Quiet {
				args = append(args, "-sS")
			} else {
				args = append(args, "-#")
			}
			args = append(args, url)
			if err := f.runTool(ctx, "curl", args); err == nil {
				return nil
			}
			debugf("curl failed, falling back to wget\n")
		} else {
			debugf("curl not found, trying wget\n")
		}

		// --- Fallback 1: wget ---
		if _, err := exec.LookPath("wget"); err == nil {
			args := []string{"-nv", "-O", dest, url}
			if f.Quiet {
				args[0] = "-q"
			}
			if err := f.runTool(ctx, "wget", args); err == nil {
				return nil
			}
			debugf("wget failed, falling back to native Go HTTP client\n")
		} else {
			debugf("wget not found, using native Go HTTP client\n")
		}
	}

	// --- Fallback 2: Native Go HTTP Client ---
	return f.fetchNative(ctx, url, dest)
}

func (f *Fetcher) runTool(ctx context.Context, name string, args []string) error {
	cmd := exec.Command(name, args...)
	if f.Quiet {
		cmd.Stdout = io.Discard
		cmd.Stderr = io.Discard
	} else {
		cmd.Stdout = progressWriter
		cmd.Stderr = progressWriter
	}
	return NewExecutor(ctx).Run(cmd)
}

func (f *Fetcher) fetchNative(ctx context.Context, url, dest string) error {
	client := f.Client
	if client == nil {
		client = newHttpClient()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("invalid download url %s: %w", url, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("native http get failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dest, err)
	}
	defer out.Close()

	var w io.Writer = out
	if f.showProgress() {
		bar := progressbar.DefaultBytes(resp.ContentLength, "downloading "+path.Base(url))
		defer bar.Finish()
		w = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to write to destination file: %w", err)
	}
	return out.Close()
}

func (f *Fetcher) showProgress() bool {
	if f.Quiet {
		return false
	}
	file, ok := progressWriter.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
