// Package sandbox confines caller-supplied paths and category names to the
// repository root. Every worker that touches the filesystem resolves its
// inputs here before reading or writing anything.
package sandbox

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidPath marks any input that would resolve outside the repository
// root, or that is not a usable relative path at all.
var ErrInvalidPath = errors.New("path escapes repository scope")

// ResolveFile canonicalizes a repository-relative target path. It returns
// the cleaned relative path (slash-separated) and the absolute path under
// root. The target does not need to exist; symlinks in existing ancestors
// are resolved before the containment check.
func ResolveFile(root, target string) (rel string, abs string, err error) {
	if target == "" {
		return "", "", fmt.Errorf("%w: empty target", ErrInvalidPath)
	}
	if filepath.IsAbs(target) {
		return "", "", fmt.Errorf("%w: target must be relative: %s", ErrInvalidPath, target)
	}

	normalized := filepath.Clean(filepath.FromSlash(target))
	if normalized == "" || normalized == "." {
		return "", "", fmt.Errorf("%w: target must reference content within the repository", ErrInvalidPath)
	}
	if escapesLexically(normalized) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, target)
	}

	rootReal, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", "", fmt.Errorf("resolving repository root: %w", err)
	}

	abs = filepath.Join(rootReal, normalized)

	real, err := realPath(abs)
	if err != nil {
		return "", "", fmt.Errorf("resolving target: %w", err)
	}

	within, err := filepath.Rel(rootReal, real)
	if err != nil || escapesLexically(within) {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidPath, target)
	}

	return filepath.ToSlash(normalized), abs, nil
}

// ResolveCategory validates a category name. Categories are single path
// segments: anything containing a separator is rejected even if it would
// stay inside the root.
func ResolveCategory(root, category string) (string, error) {
	if category == "" {
		return "", fmt.Errorf("%w: empty category", ErrInvalidPath)
	}
	if filepath.IsAbs(category) {
		return "", fmt.Errorf("%w: category must be relative: %s", ErrInvalidPath, category)
	}

	normalized := filepath.Clean(filepath.FromSlash(category))
	if normalized == "" || normalized == "." || escapesLexically(normalized) ||
		strings.ContainsRune(normalized, '/') || strings.ContainsRune(normalized, os.PathSeparator) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, category)
	}

	if _, _, err := ResolveFile(root, normalized); err != nil {
		return "", err
	}

	return normalized, nil
}

// escapesLexically reports whether a cleaned path starts with a parent
// directory segment.
func escapesLexically(cleaned string) bool {
	return cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator))
}

// realPath resolves symlinks for the deepest existing ancestor of path and
// rejoins the non-existing remainder, so targets about to be created are
// still checked against the real root.
func realPath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	dir := path
	var tail []string
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Hit the filesystem root without finding anything that exists.
			return path, nil
		}
		tail = append(tail, filepath.Base(dir))
		dir = parent

		resolved, err := filepath.EvalSymlinks(dir)
		if err == nil {
			for i := len(tail) - 1; i >= 0; i-- {
				resolved = filepath.Join(resolved, tail[i])
			}
			return resolved, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
}
