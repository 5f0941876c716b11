package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sghaida/stubgen/config"
	"github.com/sghaida/stubgen/stub"
	"github.com/sghaida/stubgen/stub/goproject"
	"github.com/sghaida/stubgen/stub/synth"
)

// generateFlags are the command line overrides of generate.
type generateFlags struct {
	dir      string
	out      string
	pkg      string
	internal bool
	ignore   []string
	check    bool
	watch    bool
	strict   bool
}

func (a *app) generateCmd() *cobra.Command {
	var f generateFlags

	cmd := &cobra.Command{
		Use:   "generate [patterns...]",
		Short: "Generate the stub file",
		Long: `Loads the packages matching the patterns (analysis.patterns when none are
given), stubs every qualifying interface and writes the result atomically.

Per-contract failures are reported and skipped. A document that cannot be
analyzed aborts the run unless analysis.skip_broken_documents is set.`,
		Example: `  stubgen generate
  stubgen generate --out ./stubs/stubs.gen.go --package stubs ./...
  stubgen generate --check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.check && f.watch {
				return usageError{err: errors.New("--check and --watch are mutually exclusive")}
			}
			cfg := f.apply(*a.cfg, args)
			if err := cfg.Validate(); err != nil {
				return usageError{err: err}
			}
			if f.watch {
				return a.watch(cmd.Context(), cfg, f)
			}
			_, err := a.generate(cmd.Context(), cfg, f)
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", "", "directory the patterns are resolved in (analysis.dir)")
	flags.StringVarP(&f.out, "out", "o", "", "output file, relative to the analysis directory (output.file)")
	flags.StringVarP(&f.pkg, "package", "p", "", "package name of the output file (output.package)")
	flags.BoolVar(&f.internal, "internal", false, "also stub unexported interfaces (stubs.stub_internal)")
	flags.StringArrayVar(&f.ignore, "ignore", nil, "qualified name of a contract to skip, repeatable (stubs.ignored_contracts)")
	flags.BoolVar(&f.check, "check", false, "do not write; exit 1 when the file on disk differs")
	flags.BoolVarP(&f.watch, "watch", "w", false, "regenerate whenever a Go file changes")
	flags.BoolVar(&f.strict, "strict", false, "exit 1 when a contract could not be stubbed")
	return cmd
}

// apply returns cfg with the flags and positional patterns laid over it.
func (f generateFlags) apply(cfg config.Config, patterns []string) config.Config {
	if f.dir != "" {
		cfg.Analysis.Dir = f.dir
	}
	if len(patterns) > 0 {
		cfg.Analysis.Patterns = patterns
	}
	if f.out != "" {
		cfg.Output.File = f.out
	}
	if f.pkg != "" {
		cfg.Output.Package = f.pkg
	}
	if f.internal {
		cfg.Stubs.StubInternal = true
	}
	if len(f.ignore) > 0 {
		cfg.Stubs.IgnoredContracts = append(slices.Clip(cfg.Stubs.IgnoredContracts), f.ignore...)
	}
	return cfg
}

// outputPath is the absolute path of the generated file.
func outputPath(cfg config.Config) (string, error) {
	p := cfg.Output.File
	if !filepath.IsAbs(p) {
		p = filepath.Join(cfg.Analysis.Dir, p)
	}
	return filepath.Abs(p)
}

// generation is the outcome of one generate run.
type generation struct {
	Path    string
	Source  []byte
	Changed bool
	Result  stub.RunResult[synth.File]
}

func (a *app) generate(ctx context.Context, cfg config.Config, f generateFlags) (generation, error) {
	outPath, err := outputPath(cfg)
	if err != nil {
		return generation{}, err
	}

	importPath := cfg.Output.ImportPath
	if importPath == "" {
		importPath, err = importPathForDir(filepath.Dir(outPath))
		if err != nil {
			a.logger.Debug("could not infer output import path", zap.String("dir", filepath.Dir(outPath)), zap.Error(err))
		}
	}

	project, err := goproject.Load(ctx, goproject.Options{
		Dir:      cfg.Analysis.Dir,
		Patterns: cfg.Analysis.Patterns,
		Tests:    cfg.Analysis.Tests,
	})
	if err != nil {
		return generation{}, err
	}

	// The previous output is part of the project when it lives in a loaded package.
	docs := slices.DeleteFunc(project.Documents(), func(d stub.Document) bool { return d.Path == outPath })

	gen := stub.NewGenerator[synth.File](
		project,
		synth.New(synth.Options{NameFormat: cfg.Output.NameFormat}),
		cfg.Inclusion(),
		stub.WithLogger(a.logger),
		stub.WithPrefetch(cfg.Analysis.Prefetch),
		stub.WithSkipBrokenDocuments(cfg.Analysis.SkipBrokenDocuments),
	)
	res, err := gen.StubProject(ctx, docs, synth.NewFile(cfg.Output.Package, importPath))
	if err != nil {
		return generation{}, err
	}

	src, err := synth.Render(outPath, res.Output, res.Imports)
	if err != nil {
		return generation{}, err
	}
	printDiagnostics(a.stderr, res.Diagnostics)

	current, err := os.ReadFile(outPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return generation{}, err
	}
	g := generation{Path: outPath, Source: src, Changed: string(current) != string(src), Result: res}

	switch {
	case f.check:
		if g.Changed {
			printDiff(a.stdout, outPath, string(current), string(src))
			return g, errDrift
		}
	case g.Changed:
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			return g, err
		}
		if err := writeFileAtomic(outPath, src, 0o644); err != nil {
			return g, fmt.Errorf("write %s: %w", outPath, err)
		}
		a.logger.Info("wrote stubs", zap.String("file", outPath), zap.Int("stubs", len(res.Output.Stubs)))
	default:
		a.logger.Debug("stubs up to date", zap.String("file", outPath))
	}

	if f.strict && hasErrors(res.Diagnostics) {
		return g, errStrict
	}
	return g, nil
}

func hasErrors(diags []stub.Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d stub.Diagnostic) bool { return d.Severity == stub.SeverityError })
}

// printDiagnostics writes one line per diagnostic, errors in red and warnings in yellow.
func printDiagnostics(w io.Writer, diags []stub.Diagnostic) {
	for _, d := range diags {
		c := color.New(color.FgCyan)
		switch d.Severity {
		case stub.SeverityError:
			c = color.New(color.FgRed)
		case stub.SeverityWarning:
			c = color.New(color.FgYellow)
		}
		_, _ = c.Fprintln(w, d.String())
	}
}

// printDiff writes a line diff between the file on disk and the generated source.
func printDiff(w io.Writer, path, oldContent, newContent string) {
	dmp := diffmatchpatch.New()
	a, b, lineArray := dmp.DiffLinesToChars(oldContent, newContent)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	_, _ = fmt.Fprintf(w, "--- %s (on disk)\n+++ %s (generated)\n", path, path)
	removed := color.New(color.FgRed)
	added := color.New(color.FgGreen)
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			line = strings.TrimSuffix(line, "\n")
			if d.Type == diffmatchpatch.DiffDelete {
				_, _ = removed.Fprintln(w, "-"+line)
			} else {
				_, _ = added.Fprintln(w, "+"+line)
			}
		}
	}
}
