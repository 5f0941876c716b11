package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

const storeSrc = `package store

import "context"

type Item struct{ ID string }

// Store persists items.
type Store interface {
	Get(ctx context.Context, id string) (*Item, error)
	Put(ctx context.Context, items ...*Item) error
}

type Number interface{ ~int | ~float64 }

type cache interface{ Reset() }
`

// writeModule lays out a throwaway module and returns its root.
func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()

	root, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)

	files["go.mod"] = "module example.com/app\n\ngo 1.22\n"
	for name, content := range files {
		writeTempFile(t, root, name, content)
	}
	return root
}

// writeTempFile writes dir/name, creating parent directories, and returns its path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	p := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// runCLI runs stubgen with args and captures its output.
func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()

	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

//
// -----------------------------------------------------------------------------
// writeFileAtomic() seam helpers
// -----------------------------------------------------------------------------

// fakeTempFile is a controllable file-like object for writeFileAtomic tests.
// It lets tests force errors on Write and Close without touching real files.
type fakeTempFile struct {
	fileName string
	writeErr error
	closeErr error
}

func (f *fakeTempFile) Name() string { return f.fileName }

func (f *fakeTempFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	return len(p), nil
}

func (f *fakeTempFile) Close() error { return f.closeErr }

// setWriteSeams overrides the global seams used by writeFileAtomic and
// restores them when the test ends. Pass nil for any seam you don't want to
// override.
func setWriteSeams(
	t *testing.T,
	createFn func(string, string) (tempFile, error),
	removeFn func(path string) error,
	chmodFn func(path string, mode os.FileMode) error,
	renameFn func(oldpath, newpath string) error,
) {
	t.Helper()

	origCreate, origRemove, origChmod, origRename := createTempFile, removeFile, chmodFile, renameFile
	t.Cleanup(func() {
		createTempFile = origCreate
		removeFile = origRemove
		chmodFile = origChmod
		renameFile = origRename
	})

	if createFn != nil {
		createTempFile = createFn
	}
	if removeFn != nil {
		removeFile = removeFn
	}
	if chmodFn != nil {
		chmodFile = chmodFn
	}
	if renameFn != nil {
		renameFile = renameFn
	}
}
