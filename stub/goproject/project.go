// Package goproject loads a Go project with golang.org/x/tools/go/packages and
// serves it to the stub engine as documents, syntax trees and semantic models.
package goproject

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/sghaida/stubgen/stub"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo

var (
	// ErrNoSyntax is returned for a file the loader listed but could not parse.
	ErrNoSyntax = errors.New("goproject: no syntax for file")

	// ErrNoTypes is returned for a file whose package was not type-checked.
	ErrNoTypes = errors.New("goproject: package has no type information")
)

// UnknownDocumentError is returned for a document that is not part of the project.
type UnknownDocumentError struct{ Path string }

// Error implements the error interface.
func (e UnknownDocumentError) Error() string {
	return "goproject: unknown document " + strconv.Quote(e.Path)
}

// Options controls how a project is loaded.
type Options struct {
	// Dir is the directory the patterns are resolved in. Empty means the
	// current directory.
	Dir string

	// Patterns are go/packages patterns, "./..." when empty.
	Patterns []string

	// Tests includes _test.go files.
	Tests bool

	// BuildFlags are passed to the build system, e.g. "-tags=integration".
	BuildFlags []string

	// Env overrides the environment of the build system; nil inherits it.
	Env []string
}

// Project is a loaded set of packages. It implements stub.DocumentAnalyzer and
// is read-only after Load, so it is safe for concurrent use.
type Project struct {
	docs  []stub.Document
	files map[string]entry
}

type entry struct {
	pkg  *packages.Package
	tree *Tree
	err  error
}

// Load loads the packages matching opts.Patterns.
//
// Packages with errors are kept; their errors surface as diagnostics of the
// affected documents. Only a failure of the build system itself is returned.
func Load(ctx context.Context, opts Options) (*Project, error) {
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = []string{"./..."}
	}

	cfg := &packages.Config{
		Context:    ctx,
		Mode:       loadMode,
		Dir:        opts.Dir,
		Tests:      opts.Tests,
		BuildFlags: opts.BuildFlags,
		Env:        opts.Env,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("goproject: load %s: %w", strings.Join(patterns, " "), err)
	}
	return newProject(pkgs), nil
}

// newProject orders packages by path (then ID, so a plain package precedes its
// test variant) and files by name. A file shared by several package variants
// belongs to the first one.
func newProject(pkgs []*packages.Package) *Project {
	pkgs = slices.Clone(pkgs)
	slices.SortFunc(pkgs, func(a, b *packages.Package) int {
		if c := strings.Compare(a.PkgPath, b.PkgPath); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})

	p := &Project{files: make(map[string]entry)}
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.ID, ".test") {
			// synthesized test main
			continue
		}

		parsed := make(map[string]*Tree, len(pkg.Syntax))
		for _, file := range pkg.Syntax {
			if tf := pkg.Fset.File(file.Pos()); tf != nil {
				parsed[tf.Name()] = NewTree(file)
			}
		}

		files := slices.Clone(pkg.CompiledGoFiles)
		slices.Sort(files)
		for _, path := range files {
			if _, ok := p.files[path]; ok {
				continue
			}
			e := entry{pkg: pkg, tree: parsed[path]}
			switch {
			case e.tree == nil:
				e.err = ErrNoSyntax
			case pkg.Types == nil || pkg.TypesInfo == nil:
				e.err = ErrNoTypes
			}
			p.files[path] = e
			p.docs = append(p.docs, stub.Document{Path: path, Package: pkg.PkgPath})
		}
	}
	return p
}

// Documents returns every file of the project in a stable order.
func (p *Project) Documents() []stub.Document { return slices.Clone(p.docs) }

// SyntaxTree implements stub.DocumentAnalyzer.
func (p *Project) SyntaxTree(ctx context.Context, doc stub.Document) (stub.SyntaxTree, error) {
	e, err := p.lookup(ctx, doc)
	if err != nil {
		return nil, err
	}
	if e.tree == nil {
		return nil, e.err
	}
	return e.tree, nil
}

// SemanticModel implements stub.DocumentAnalyzer.
func (p *Project) SemanticModel(ctx context.Context, doc stub.Document) (stub.SemanticModel, error) {
	e, err := p.lookup(ctx, doc)
	if err != nil {
		return nil, err
	}
	if e.err != nil {
		return nil, e.err
	}
	return &Model{pkg: e.pkg, tree: e.tree, path: doc.Path}, nil
}

func (p *Project) lookup(ctx context.Context, doc stub.Document) (entry, error) {
	if err := ctx.Err(); err != nil {
		return entry{}, err
	}
	e, ok := p.files[doc.Path]
	if !ok {
		return entry{}, UnknownDocumentError{Path: doc.Path}
	}
	return e, nil
}
