package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FetchOptions configures one model fetch into the search-path layout.
type FetchOptions struct {
	Name      string
	Precision Precision
	// BaseURL overrides the model zoo location. Empty means DefaultBaseURL.
	BaseURL string
	// OutDir is the search root the files land under:
	// <OutDir>/<name>/<precision>/<name>.{xml,bin}.
	OutDir string
	Client *http.Client
	Stdout io.Writer
}

type lockManifest struct {
	Generated string                `json:"generated"`
	Files     map[string]lockRecord `json:"files"`
}

type lockRecord struct {
	URL    string `json:"url"`
	SHA256 string `json:"sha256"`
}

const lockFilename = "fetch-manifest.lock.json"

// Fetch downloads a model's topology and weight pair, verifying checksums.
// Files already present with a matching checksum are skipped. A file without
// a pinned checksum is recorded into the lock manifest on first fetch;
// subsequent fetches are held to the recorded value.
func Fetch(opts FetchOptions) error {
	if opts.Name == "" {
		return fmt.Errorf("model: fetch name is required")
	}

	if opts.Precision == "" {
		return fmt.Errorf("model: fetch precision is required")
	}

	if opts.OutDir == "" {
		return fmt.Errorf("model: fetch out dir is required")
	}

	if opts.Client == nil {
		opts.Client = &http.Client{}
	}

	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	manifest, err := FetchManifest(opts.Name, opts.Precision, opts.BaseURL)
	if err != nil {
		return err
	}

	destDir := filepath.Join(opts.OutDir, opts.Name, string(opts.Precision))
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("model: create model dir: %w", err)
	}

	lockPath := filepath.Join(opts.OutDir, lockFilename)
	lock := readLockManifest(lockPath)
	lock.Generated = time.Now().UTC().Format(time.RFC3339)

	for _, f := range manifest.Files {
		key := lockKey(opts.Name, opts.Precision, f.Filename)

		expected := strings.ToLower(f.SHA256)
		if expected == "" {
			if rec, ok := lock.Files[key]; ok {
				expected = strings.ToLower(rec.SHA256)
			}
		}

		localPath := filepath.Join(destDir, f.Filename)

		if expected != "" {
			if ok, err := existingMatches(localPath, expected); err != nil {
				return err
			} else if ok {
				fmt.Fprintf(opts.Stdout, "skip %s (checksum match)\n", f.Filename)
				lock.Files[key] = lockRecord{URL: f.URL, SHA256: expected}

				continue
			}
		}

		fmt.Fprintf(opts.Stdout, "fetch %s -> %s\n", f.URL, localPath)

		actual, err := download(opts.Client, f.URL, localPath)
		if err != nil {
			return err
		}

		if expected != "" && actual != expected {
			return fmt.Errorf("model: checksum mismatch for %s: expected %s got %s", f.Filename, expected, actual)
		}

		fmt.Fprintf(opts.Stdout, "verified %s (sha256=%s)\n", f.Filename, actual)
		lock.Files[key] = lockRecord{URL: f.URL, SHA256: actual}
	}

	if err := writeLockManifest(lockPath, lock); err != nil {
		return err
	}

	fmt.Fprintf(opts.Stdout, "wrote lock manifest: %s\n", lockPath)

	return nil
}

func lockKey(name string, precision Precision, filename string) string {
	return name + "/" + string(precision) + "/" + filename
}

func existingMatches(path, expected string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("model: stat existing file: %w", err)
	}

	if fi.IsDir() {
		return false, fmt.Errorf("model: expected file at %s, found directory", path)
	}

	actual, err := FileSHA256(path)
	if err != nil {
		return false, err
	}

	return actual == expected, nil
}

func download(client *http.Client, url, outPath string) (string, error) {
	resp, err := client.Get(url)
	if err != nil {
		return "", fmt.Errorf("model: fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("model: fetch failed for %s: %s", url, resp.Status)
	}

	tmp := outPath + ".tmp"

	fh, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("model: create temp file: %w", err)
	}

	h := sha256.New()

	if _, err := io.Copy(io.MultiWriter(fh, h), resp.Body); err != nil {
		_ = fh.Close()
		_ = os.Remove(tmp)

		return "", fmt.Errorf("model: fetch read failed: %w", err)
	}

	if err := fh.Close(); err != nil {
		_ = os.Remove(tmp)

		return "", fmt.Errorf("model: close temp file: %w", err)
	}

	if err := os.Rename(tmp, outPath); err != nil {
		_ = os.Remove(tmp)

		return "", fmt.Errorf("model: move temp file into place: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileSHA256 returns the lowercase hex sha256 of a file's contents.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("model: open file for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("model: read file for checksum: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func readLockManifest(path string) lockManifest {
	out := lockManifest{Files: map[string]lockRecord{}}

	b, err := os.ReadFile(path)
	if err != nil {
		return out
	}

	if err := json.Unmarshal(b, &out); err != nil {
		return lockManifest{Files: map[string]lockRecord{}}
	}

	if out.Files == nil {
		out.Files = map[string]lockRecord{}
	}

	return out
}

func writeLockManifest(path string, lock lockManifest) error {
	b, err := json.MarshalIndent(lock, "", "  ")
	if err != nil {
		return fmt.Errorf("model: encode lock manifest: %w", err)
	}

	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("model: write lock manifest: %w", err)
	}

	return nil
}
