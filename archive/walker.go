// Package archive walks documents packed into zip archives.
package archive

import (
	"fmt"
	"path"
	"strings"

	fixzip "github.com/hidez8891/zip"
)

// WalkFunc is called for each file in archive visited by Walk. The archive
// argument is path to archive passed to Walk. If an error is returned,
// processing stops.
type WalkFunc func(archive string, file *fixzip.File) error

// Walk visits all files in the archive whose names start with prefix and have
// one of the extensions (any file when no extensions given), in archive
// order. Archives with absolute entry paths or entries containing ".." are
// rejected before any file is visited.
func Walk(archive, prefix string, walkFn WalkFunc, exts ...string) error {
	r, err := fixzip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if !isSafePath(f.Name) {
			return fmt.Errorf("zip entry %q: unsafe path (absolute or contains path traversal)", f.Name)
		}
	}

	for _, f := range r.File {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, prefix) || !hasExt(f.Name, exts) {
			continue
		}
		if err := walkFn(archive, f); err != nil {
			return err
		}
	}
	return nil
}

func hasExt(name string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := path.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}

// isSafePath returns false for paths that could escape the extraction
// directory: absolute paths and those containing ".." components.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, `\`) || (len(name) > 1 && name[1] == ':') {
		return false
	}
	for part := range strings.SplitSeq(strings.ReplaceAll(name, `\`, "/"), "/") {
		if part == ".." {
			return false
		}
	}
	return true
}
