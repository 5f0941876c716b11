package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sghaida/stubgen/config"
	"github.com/sghaida/stubgen/stub/synth"
)

//
// -----------------------------------------------------------------------------
// generate
// -----------------------------------------------------------------------------

func TestRun_Generate(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})
	out := filepath.Join(root, "stubs", "stubs.gen.go")

	code, _, stderr := runCLI(t, "generate", "--dir", root, "--out", "stubs/stubs.gen.go")
	require.Equal(t, exitOK, code, stderr)

	src := readFileString(t, out)
	assert.True(t, strings.HasPrefix(src, synth.Header))
	assert.Contains(t, src, "package stubs")
	assert.Contains(t, src, `"example.com/app/store"`)
	assert.Contains(t, src, "type StubStore struct")
	assert.Contains(t, src, "var _ store.Store = (*StubStore)(nil)")
	assert.NotContains(t, src, "Stubcache", "internal contracts are off by default")
	assert.Contains(t, stderr, "constraint interfaces cannot be stubbed", "skipped contracts are reported")

	// A second run reads its own output back as part of ./... and must not change it.
	code, _, stderr = runCLI(t, "generate", "--dir", root, "--out", "stubs/stubs.gen.go")
	require.Equal(t, exitOK, code, stderr)
	assert.Equal(t, src, readFileString(t, out))
}

func TestRun_GenerateSamePackage(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})

	code, _, stderr := runCLI(t, "generate", "--dir", root, "--out", "store/stubs.gen.go", "--package", "store", "--internal", "./store")
	require.Equal(t, exitOK, code, stderr)

	src := readFileString(t, filepath.Join(root, "store", "stubs.gen.go"))
	assert.Contains(t, src, "type Stubcache struct")
	assert.Contains(t, src, "var _ Store = (*StubStore)(nil)")
	assert.NotContains(t, src, `"example.com/app/store"`)
}

func TestRun_GenerateIgnore(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})

	code, _, stderr := runCLI(t, "generate", "--dir", root, "--ignore", "example.com/app/store.Store")
	require.Equal(t, exitOK, code, stderr)

	src := readFileString(t, filepath.Join(root, config.DefaultOutputFile))
	assert.NotContains(t, src, "StubStore")
	assert.Contains(t, src, "package stubs")
}

func TestRun_GenerateCheck(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})
	args := []string{"generate", "--dir", root, "--out", "stubs/stubs.gen.go"}

	code, stdout, _ := runCLI(t, append(args, "--check")...)
	assert.Equal(t, exitError, code, "missing file is drift")
	assert.Contains(t, stdout, "+++ ")
	assert.Contains(t, stdout, "+type StubStore struct {")
	assert.NoFileExists(t, filepath.Join(root, "stubs", "stubs.gen.go"))

	code, _, stderr := runCLI(t, args...)
	require.Equal(t, exitOK, code, stderr)

	code, stdout, _ = runCLI(t, append(args, "--check")...)
	assert.Equal(t, exitOK, code)
	assert.Empty(t, stdout)

	writeTempFile(t, root, "store/clock.go", "package store\n\ntype Clock interface{ Now() int64 }\n")
	code, stdout, _ = runCLI(t, append(args, "--check")...)
	assert.Equal(t, exitError, code)
	assert.Contains(t, stdout, "+type StubClock struct {")
	assert.NotContains(t, stdout, "-type StubStore struct {")
}

func TestRun_GenerateStrict(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})

	code, _, stderr := runCLI(t, "generate", "--dir", root, "--strict")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, errStrict.Error())
	assert.FileExists(t, filepath.Join(root, config.DefaultOutputFile), "the file is still written")
}

func TestRun_GenerateBrokenDocument(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{
		"store/store.go": storeSrc,
		"store/bad.go":   "package store\n\ntype Bad interface{ Get() Missing }\n",
	})

	// Type errors are diagnostics of the document, not document failures.
	code, _, stderr := runCLI(t, "generate", "--dir", root)
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, readFileString(t, filepath.Join(root, config.DefaultOutputFile)), "type StubStore struct")
}

func TestRun_ConfigFile(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})
	cfgPath := writeTempFile(t, root, "stubgen.yaml", `output:
  file: fakes/fakes.gen.go
  package: fakes
  name_format: Fake%s
analysis:
  dir: `+root+`
  patterns: ["./store"]
  prefetch: 0
`)

	code, _, stderr := runCLI(t, "--config", cfgPath, "generate")
	require.Equal(t, exitOK, code, stderr)

	src := readFileString(t, filepath.Join(root, "fakes", "fakes.gen.go"))
	assert.Contains(t, src, "package fakes")
	assert.Contains(t, src, "type FakeStore struct")
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"generate", "--nope"}},
		{name: "check with watch", args: []string{"generate", "--check", "--watch"}},
		{name: "invalid override", args: []string{"generate", "--package", " "}},
		{name: "missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "generate"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			code, _, stderr := runCLI(t, tc.args...)
			assert.Equal(t, exitUsage, code)
			assert.Contains(t, stderr, "stubgen: ")
		})
	}
}

//
// -----------------------------------------------------------------------------
// list
// -----------------------------------------------------------------------------

func TestRun_List(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})

	code, stdout, stderr := runCLI(t, "list", "--dir", root)
	require.Equal(t, exitOK, code, stderr)

	var storeLine, cacheLine string
	for _, line := range strings.Split(stdout, "\n") {
		switch {
		case strings.Contains(line, "example.com/app/store.Store"):
			storeLine = line
		case strings.Contains(line, "example.com/app/store.cache"):
			cacheLine = line
		}
	}
	require.NotEmpty(t, storeLine, stdout)
	require.NotEmpty(t, cacheLine, stdout)

	assert.Contains(t, storeLine, "public")
	assert.Contains(t, storeLine, "true")
	assert.Contains(t, cacheLine, "internal")
	assert.Contains(t, cacheLine, "false")
	assert.Contains(t, stdout, "example.com/app/store.Number")
}

func TestListContracts(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})
	cfg := config.Default()
	cfg.Analysis.Dir = root
	cfg.Stubs.IgnoredContracts = []string{"example.com/app/store.Number"}

	rows, err := listContracts(context.Background(), cfg)
	require.NoError(t, err)

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"example.com/app/store.Store",
		"example.com/app/store.Number",
		"example.com/app/store.cache",
	}, names)
	assert.True(t, rows[1].Ignored)
	assert.False(t, rows[2].Eligible)
	assert.Equal(t, "store.go", rows[0].File)
}

//
// -----------------------------------------------------------------------------
// init
// -----------------------------------------------------------------------------

func TestRun_Init(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), config.FileName)

	code, stdout, stderr := runCLI(t, "--config", path, "init")
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "wrote "+path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultOutputPackage, cfg.Output.Package)

	code, _, stderr = runCLI(t, "--config", path, "init")
	assert.Equal(t, exitError, code)
	assert.Contains(t, stderr, "already exists")

	require.NoError(t, os.WriteFile(path, []byte("output: [broken\n"), 0o644))
	code, _, stderr = runCLI(t, "--config", path, "init", "--force")
	require.Equal(t, exitOK, code, stderr)
	_, err = config.Load(path)
	assert.NoError(t, err)
}

//
// -----------------------------------------------------------------------------
// watch
// -----------------------------------------------------------------------------

func TestWatch_RegeneratesOnChange(t *testing.T) {
	t.Parallel()

	root := writeModule(t, map[string]string{"store/store.go": storeSrc})
	out := filepath.Join(root, "stubs", "stubs.gen.go")

	cfg := config.Default()
	cfg.Analysis.Dir = root
	cfg.Output.File = "stubs/stubs.gen.go"

	a := newApp(io.Discard, io.Discard)
	a.debounce = 20 * time.Millisecond
	ready := make(chan struct{})
	a.watching = func() { close(ready) }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.watch(ctx, cfg, generateFlags{}) }()

	select {
	case <-ready:
	case err := <-done:
		require.FailNow(t, "watch returned early", "%v", err)
	case <-time.After(time.Minute):
		require.FailNow(t, "watcher did not start")
	}
	assert.Contains(t, readFileString(t, out), "type StubStore struct")

	writeTempFile(t, root, "store/clock.go", "package store\n\ntype Clock interface{ Now() int64 }\n")
	assert.Eventually(t, func() bool {
		b, err := os.ReadFile(out)
		return err == nil && bytes.Contains(b, []byte("type StubClock struct"))
	}, time.Minute, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		assert.Fail(t, "watch did not stop")
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	out := "/app/stubs.gen.go"
	ev := func(name string, op fsnotify.Op) fsnotify.Event { return fsnotify.Event{Name: name, Op: op} }

	assert.True(t, relevant(ev("/app/store.go", fsnotify.Write), out))
	assert.True(t, relevant(ev("/app/store.go", fsnotify.Remove), out))
	assert.False(t, relevant(ev("/app/store.go", fsnotify.Chmod), out))
	assert.False(t, relevant(ev("/app/README.md", fsnotify.Write), out))
	assert.False(t, relevant(ev(out, fsnotify.Create), out))
	assert.False(t, relevant(ev(out+".tmp-123", fsnotify.Create), out))
}
