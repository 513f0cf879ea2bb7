// Package workdir handles the filesystem side of an analysis run: classifying
// the input path, extracting zip archives, and disposing of temporary copies.
package workdir

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PathType classifies an input path for the analyzer.
type PathType int

const (
	PathOther PathType = iota
	PathZip
	PathDir
)

// Classify reports whether path is a zip archive, a directory, or neither.
func Classify(path string) PathType {
	info, err := os.Stat(path)
	if err != nil {
		return PathOther
	}
	if info.IsDir() {
		return PathDir
	}
	if info.Mode().IsRegular() && strings.EqualFold(filepath.Ext(path), ".zip") {
		return PathZip
	}
	return PathOther
}

// TempCopyDir returns the disposable extraction location under tmpRoot.
func TempCopyDir(tmpRoot string) string {
	if tmpRoot == "" {
		tmpRoot = "."
	}
	return filepath.Join(tmpRoot, "repo_copy")
}

// ExtractZip unpacks the archive at path into dir.
func ExtractZip(path, dir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open archive %s: %w", path, err)
	}
	defer r.Close()
	return ExtractReader(&r.Reader, dir)
}

// ExtractReader unpacks all entries of an open zip reader into dir,
// rejecting entries that would escape it.
func ExtractReader(r *zip.Reader, dir string) error {
	cleanDir := filepath.Clean(dir)
	for _, f := range r.File {
		target := filepath.Join(cleanDir, f.Name)
		if target != cleanDir && !strings.HasPrefix(target, cleanDir+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry %q escapes %s", f.Name, dir)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("mkdir %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(target), err)
		}
		if err := extractFile(f, target); err != nil {
			return err
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer src.Close()

	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("extract %s: %w", f.Name, err)
	}
	return nil
}

// Remove deletes a pipeline-managed directory tree.
func Remove(dir string) error {
	return os.RemoveAll(dir)
}
