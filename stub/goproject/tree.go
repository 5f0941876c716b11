package goproject

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/sghaida/stubgen/stub"
)

// Contract is an interface type declaration found in a Go file.
type Contract struct {
	// Spec is the declaring type spec; Spec.Type is an *ast.InterfaceType.
	Spec *ast.TypeSpec

	// Local is set for interfaces declared inside a function body.
	Local bool
}

// Name implements stub.Declaration.
func (c Contract) Name() string { return c.Spec.Name.Name }

// Visibility implements stub.Declaration.
func (c Contract) Visibility() stub.Visibility {
	switch {
	case c.Local:
		return stub.VisibilityOther
	case ast.IsExported(c.Spec.Name.Name):
		return stub.VisibilityPublic
	default:
		return stub.VisibilityInternal
	}
}

// Pos returns the position of the declared name.
func (c Contract) Pos() token.Pos { return c.Spec.Name.Pos() }

// Tree is the syntax tree of one Go file.
type Tree struct {
	file    *ast.File
	decls   []stub.Declaration
	imports []stub.Import
}

// NewTree indexes the interface declarations and imports of file.
func NewTree(file *ast.File) *Tree {
	return &Tree{
		file:    file,
		decls:   contractsOf(file),
		imports: importsOf(file),
	}
}

// Parse parses one Go source file and returns its tree.
//
// src follows go/parser.ParseFile: nil reads filename from disk.
func Parse(fset *token.FileSet, filename string, src any) (*Tree, error) {
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments|parser.SkipObjectResolution)
	if err != nil {
		return nil, err
	}
	return NewTree(file), nil
}

// File returns the underlying AST.
func (t *Tree) File() *ast.File { return t.file }

// Declarations implements stub.SyntaxTree.
func (t *Tree) Declarations() []stub.Declaration { return t.decls }

// Imports implements stub.SyntaxTree.
func (t *Tree) Imports() []stub.Import { return t.imports }

// contractsOf walks the file in source order. Top-level interfaces keep their
// Go visibility; interfaces declared in function bodies are marked Local.
func contractsOf(file *ast.File) []stub.Declaration {
	var out []stub.Declaration
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			out = appendInterfaces(out, d, false)
		case *ast.FuncDecl:
			if d.Body == nil {
				continue
			}
			ast.Inspect(d.Body, func(n ast.Node) bool {
				if gen, ok := n.(*ast.GenDecl); ok {
					out = appendInterfaces(out, gen, true)
				}
				return true
			})
		}
	}
	return out
}

func appendInterfaces(out []stub.Declaration, gen *ast.GenDecl, local bool) []stub.Declaration {
	if gen.Tok != token.TYPE {
		return out
	}
	for _, spec := range gen.Specs {
		ts, ok := spec.(*ast.TypeSpec)
		if !ok || ts.Assign.IsValid() {
			// aliases declare no new type
			continue
		}
		if _, ok := ts.Type.(*ast.InterfaceType); !ok {
			continue
		}
		out = append(out, Contract{Spec: ts, Local: local})
	}
	return out
}

func importsOf(file *ast.File) []stub.Import {
	out := make([]stub.Import, 0, len(file.Imports))
	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			path = strings.Trim(spec.Path.Value, "`\"")
		}

		imp := stub.Import{Path: path}
		if spec.Name != nil {
			if spec.Name.Name == "." {
				imp.Static = true
			} else {
				imp.Alias = spec.Name.Name
			}
		}
		out = append(out, imp)
	}
	return out
}
