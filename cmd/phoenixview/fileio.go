// fileio.go - path-sanitizing helper for loading archive/asset files named
// on the command line.
//
// Trimmed down from file_io.go's sanitizePath/doRead: the original guarded
// reads and writes a running CPU could issue through a simulated MMIO
// register, against a base directory fixed at startup. None of that bus
// plumbing applies here (there is no running CPU, no register file, no
// write path at all) but the same containment check is exactly what a
// CLI tool taking a user-supplied path still wants, so only that part
// survives.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sanitizePath resolves path against baseDir and rejects anything that
// would escape it (an absolute path, or a ".." that climbs back out).
func sanitizePath(baseDir, path string) (string, error) {
	if filepath.IsAbs(path) {
		return "", fmt.Errorf("path must be relative to %s: %q", baseDir, path)
	}
	full := filepath.Join(baseDir, path)
	rel, err := filepath.Rel(baseDir, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes base directory: %q", path)
	}
	return full, nil
}

// loadFile reads a file relative to baseDir, after sanitizing the path.
func loadFile(baseDir, path string) ([]byte, error) {
	full, err := sanitizePath(baseDir, path)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(full)
}
