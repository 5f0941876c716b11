package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// tempFile abstracts an os.File for testability.
type tempFile interface {
	Name() string
	Write([]byte) (int, error)
	Close() error
}

// File operation hooks, overridden in tests.
var (
	createTempFile = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	chmodFile      = os.Chmod
	renameFile     = os.Rename
	removeFile     = os.Remove
)

// writeFileAtomic writes data to a temporary file next to targetPath and
// renames it over the target, so readers never observe a partial file.
func writeFileAtomic(targetPath string, data []byte, perm os.FileMode) (err error) {
	tmpFile, err := createTempFile(filepath.Dir(targetPath), filepath.Base(targetPath)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if err != nil {
			_ = removeFile(tmpPath)
		}
	}()

	if _, err = tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err = tmpFile.Close(); err != nil {
		return err
	}
	if err = chmodFile(tmpPath, perm); err != nil {
		return err
	}
	return renameFile(tmpPath, targetPath)
}

// errNoModule is returned when no go.mod encloses a directory.
var errNoModule = errors.New("could not find go.mod")

// findModule walks up from startDir to the nearest go.mod and returns its
// directory and module path.
func findModule(startDir string) (modRoot, modPath string, err error) {
	dir := startDir
	for {
		gomod := filepath.Join(dir, "go.mod")
		if fileExists(gomod) {
			modPath, err := readModulePath(gomod)
			if err != nil {
				return "", "", err
			}
			return dir, modPath, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", "", fmt.Errorf("%w starting from %s", errNoModule, filepath.ToSlash(startDir))
		}
		dir = parent
	}
}

func readModulePath(gomod string) (string, error) {
	b, err := os.ReadFile(gomod)
	if err != nil {
		return "", err
	}
	f, err := modfile.ParseLax(gomod, b, nil)
	if err != nil {
		return "", err
	}
	if f.Module == nil {
		return "", fmt.Errorf("go.mod missing module directive at %s", filepath.ToSlash(gomod))
	}
	if f.Module.Mod.Path == "" {
		return "", fmt.Errorf("go.mod has empty module path at %s", filepath.ToSlash(gomod))
	}
	return f.Module.Mod.Path, nil
}

// moduleImportPathForDir returns the import path of the package in dir.
func moduleImportPathForDir(modRoot, modPath, dir string) (string, error) {
	rel, err := filepath.Rel(modRoot, dir)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)

	if rel == "." {
		return modPath, nil
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("directory %s is outside module root %s", filepath.ToSlash(dir), filepath.ToSlash(modRoot))
	}
	return modPath + "/" + rel, nil
}

// importPathForDir infers the import path of the package that will hold a file in dir.
func importPathForDir(dir string) (string, error) {
	modRoot, modPath, err := findModule(dir)
	if err != nil {
		return "", err
	}
	return moduleImportPathForDir(modRoot, modPath, dir)
}

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && !st.IsDir()
}
