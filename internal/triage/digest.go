package triage

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// Digest returns the hex SHA3-256 of the concatenated contents of paths.
// Each file is prefixed with its length so ("ab","c") and ("a","bc") differ.
// The history database uses it to tell apart runs over identical inputs.
func Digest(paths ...string) (string, error) {
	h := sha3.New256()
	for _, p := range paths {
		if err := digestFile(h, p); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func digestFile(w io.Writer, path string) error {
	f, err := os.Open(path) //nolint:gosec // Path comes from the operator's configuration
	if err != nil {
		return fmt.Errorf("failed to open %s for digest: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if _, err := fmt.Fprintf(w, "%d:", info.Size()); err != nil {
		return err
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read %s for digest: %w", path, err)
	}
	return nil
}
