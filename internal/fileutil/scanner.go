package fileutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
)

// ScanOptions configures the directory scanning behavior
type ScanOptions struct {
	// Pattern is a regex a file's base name must match (empty = all files)
	Pattern string
	// ExcludePattern is a regex that drops files whose base name matches it
	ExcludePattern string
}

// ScanResult contains the results of a directory scan
type ScanResult struct {
	// Files contains the absolute paths of all matched files
	Files []string
	// Errors contains any errors encountered during scanning
	Errors []error
}

// Err joins the non-fatal scan errors into one error, or returns nil when there were none.
func (r *ScanResult) Err() error {
	return errors.Join(r.Errors...)
}

// ScanDirectory lists the files directly inside dir that match the provided options
func ScanDirectory(dir string, opts ScanOptions) (*ScanResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", dir)
	}

	result := &ScanResult{
		Files:  make([]string, 0),
		Errors: make([]error, 0),
	}

	var patternRegex, excludeRegex *regexp.Regexp
	if opts.Pattern != "" {
		patternRegex, err = regexp.Compile(opts.Pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}
	}
	if opts.ExcludePattern != "" {
		excludeRegex, err = regexp.Compile(opts.ExcludePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("error accessing %s: %w", path, err))
			return nil // Continue walking
		}

		// Skip the root directory itself
		if path == dir {
			return nil
		}

		// Subdirectories are not scanned
		if d.IsDir() {
			return filepath.SkipDir
		}

		filename := d.Name()

		if patternRegex != nil && !patternRegex.MatchString(filename) {
			return nil
		}
		if excludeRegex != nil && excludeRegex.MatchString(filename) {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}

		result.Files = append(result.Files, absPath)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", err)
	}

	// Sort files for consistent output
	sort.Strings(result.Files)

	return result, nil
}
