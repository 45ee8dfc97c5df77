package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/cmdlist/internal/config"
)

// PathError reports a source tree that cannot be scanned
type PathError struct {
	Path   string // Offending path
	Reason string // What is wrong with it
}

// Error implements the error interface for PathError.
func (e *PathError) Error() string {
	return fmt.Sprintf("path '%s' %s", e.Path, e.Reason)
}

// ValidateSourceRoot checks that path is a directory with a "common" subdirectory.
// It touches nothing on disk, so it is run before the workspace is opened.
func ValidateSourceRoot(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return &PathError{Path: path, Reason: "does not exist"}
	}
	if err != nil {
		return &PathError{Path: path, Reason: fmt.Sprintf("cannot be accessed: %v", err)}
	}
	if !info.IsDir() {
		return &PathError{Path: path, Reason: "is not a directory"}
	}

	common := filepath.Join(path, config.CommonDirName)
	info, err = os.Stat(common)
	if err != nil || !info.IsDir() {
		return &PathError{Path: path, Reason: fmt.Sprintf("has no '%s' subdirectory", config.CommonDirName)}
	}
	return nil
}

// ValidateWorkDir checks that the scratch directory does not hold anything the
// run must keep: the current directory, the source tree or the report output.
func ValidateWorkDir(workDir, sourceRoot, output string) error {
	root := resolve(workDir)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	checks := []struct {
		path   string
		reason string
	}{
		{cwd, "contains the current directory"},
		{sourceRoot, "contains the source tree"},
		{output, "contains the report output"},
	}
	for _, c := range checks {
		if within(root, resolve(c.path)) {
			return &PathError{Path: workDir, Reason: c.reason}
		}
	}
	return nil
}

// resolve returns the absolute path with symlinks evaluated as far as the
// path exists.
func resolve(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	dir, base := filepath.Split(abs)
	if dir == abs || base == "" {
		return abs
	}
	return filepath.Join(resolve(filepath.Clean(dir)), base)
}

// within reports whether path equals parent or lies below it.
func within(parent, path string) bool {
	rel, err := filepath.Rel(parent, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
