package model

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// VerifyOptions configures a local model-file verification pass.
type VerifyOptions struct {
	Names      []string
	Precisions []Precision
	Locator    *Locator
	// LockDir, when set, names the search root holding the fetch lock
	// manifest; located files are checked against recorded checksums.
	LockDir string
	Stdout  io.Writer
	Stderr  io.Writer
}

// Verify checks that every (name, precision) pair resolves to a readable file
// pair, and that checksums still match the fetch lock manifest when one is
// present. Each file gets a PASS/FAIL line; any failure makes the whole pass
// fail after all files were checked.
func Verify(opts VerifyOptions) error {
	if opts.Locator == nil {
		return fmt.Errorf("model: verify requires a locator")
	}

	if len(opts.Names) == 0 {
		opts.Names = Names()
	}

	if len(opts.Precisions) == 0 {
		opts.Precisions = []Precision{PrecisionFP32, PrecisionFP16}
	}

	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}

	if opts.Stderr == nil {
		opts.Stderr = io.Discard
	}

	var lock lockManifest
	if opts.LockDir != "" {
		lock = readLockManifest(filepath.Join(opts.LockDir, lockFilename))
	}

	var failures []string

	for _, name := range opts.Names {
		for _, precision := range opts.Precisions {
			label := fmt.Sprintf("%s/%s", name, precision)

			desc, err := opts.Locator.Locate(name, precision)
			if err != nil {
				_, _ = fmt.Fprintf(opts.Stderr, "FAIL %s: %v\n", label, err)
				failures = append(failures, label)

				continue
			}

			if err := verifyPair(desc, name, precision, lock); err != nil {
				_, _ = fmt.Fprintf(opts.Stderr, "FAIL %s: %v\n", label, err)
				failures = append(failures, label)

				continue
			}

			_, _ = fmt.Fprintf(opts.Stdout, "PASS %s\n", label)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("model: verify failed for %d pair(s): %s", len(failures), strings.Join(failures, ", "))
	}

	return nil
}

func verifyPair(desc Descriptor, name string, precision Precision, lock lockManifest) error {
	for _, path := range []string{desc.TopologyPath, desc.WeightsPath} {
		sum, err := FileSHA256(path)
		if err != nil {
			return err
		}

		rec, ok := lock.Files[lockKey(name, precision, filepath.Base(path))]
		if !ok {
			continue
		}

		if !strings.EqualFold(rec.SHA256, sum) {
			return fmt.Errorf("checksum drift for %s: lock has %s, file has %s", filepath.Base(path), rec.SHA256, sum)
		}
	}

	return nil
}
