// Package corpus builds the file list a scan operates on: a bounded
// walk of the project tree skipping VCS metadata, dependency trees,
// build output, and binary formats.
package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one corpus entry. Path is relative to the scan root with
// forward slashes.
type File struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type Options struct {
	MaxFiles     int
	MaxFileBytes int64
}

const (
	DefaultMaxFiles     = 20000
	DefaultMaxFileBytes = 2 * 1024 * 1024
)

var skipDirNames = map[string]struct{}{
	".git": {}, ".glueful": {}, "node_modules": {}, "vendor": {}, "dist": {},
	"build": {}, "out": {}, ".next": {}, "coverage": {}, "storage": {},
}

var skipFileExts = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".svg": {}, ".ico": {},
	".pdf": {}, ".zip": {}, ".gz": {}, ".tar": {}, ".tgz": {},
	".woff": {}, ".woff2": {}, ".ttf": {}, ".eot": {},
	".exe": {}, ".dll": {}, ".so": {}, ".dylib": {}, ".wasm": {},
	".mp3": {}, ".mp4": {}, ".mov": {}, ".lock": {},
}

var skipFileNames = map[string]struct{}{
	".DS_Store": {}, "package-lock.json": {}, "composer.lock": {},
}

// Walk lists the scannable files under root. The walk is capped at
// MaxFiles entries; oversized files are skipped with a warning rather
// than truncated.
func Walk(root string, opts Options) ([]File, []string, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, nil, errors.New("scan root is required")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, nil, fmt.Errorf("resolve scan root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, nil, fmt.Errorf("stat scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("scan root %s is not a directory", abs)
	}

	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	maxBytes := opts.MaxFileBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxFileBytes
	}

	var files []File
	var warnings []string
	errTooMany := errors.New("file cap reached")

	walkErr := filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("walk %s: %v", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if _, skip := skipDirNames[name]; skip && path != abs {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if _, skip := skipFileNames[name]; skip {
			return nil
		}
		if _, skip := skipFileExts[strings.ToLower(filepath.Ext(name))]; skip {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("stat %s: %v", path, err))
			return nil
		}
		if fi.Size() > maxBytes {
			warnings = append(warnings, fmt.Sprintf("skipped %s (size=%d exceeds %d)", path, fi.Size(), maxBytes))
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return nil
		}
		files = append(files, File{Path: filepath.ToSlash(rel), Size: fi.Size()})
		if len(files) >= maxFiles {
			return errTooMany
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, errTooMany) {
		return nil, warnings, walkErr
	}
	if errors.Is(walkErr, errTooMany) {
		warnings = append(warnings, fmt.Sprintf("file cap of %d reached; remaining files were not scanned", maxFiles))
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, warnings, nil
}
