package stub

import (
	"context"
	"strconv"
)

// Visibility is the access level of a contract declaration.
type Visibility int

const (
	// VisibilityOther covers declarations that can never be stubbed, such as
	// interfaces declared inside a function body.
	VisibilityOther Visibility = iota

	// VisibilityInternal is package-private (an unexported Go identifier).
	VisibilityInternal

	// VisibilityPublic is exported.
	VisibilityPublic
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityInternal:
		return "internal"
	default:
		return "other"
	}
}

// Document identifies one source file of a project.
type Document struct {
	// Path is the file name as known to the analyzer.
	Path string

	// Package is the import path of the package the file belongs to.
	Package string
}

// Declaration is a contract (interface) declaration extracted from a syntax tree.
//
// The qualified name is deliberately absent: it needs semantic resolution,
// see SemanticModel.ResolveDeclaredType.
type Declaration interface {
	Name() string
	Visibility() Visibility
}

// Import is one import directive of a source file.
type Import struct {
	// Path is the imported package path.
	Path string

	// Alias is the explicit local name, empty when the package name is used.
	Alias string

	// Static marks an import that brings the members of a package into the
	// file scope instead of the package name (Go's dot import).
	Static bool
}

// String renders the import the way it appears inside an import block.
func (i Import) String() string {
	switch {
	case i.Static:
		return ". " + strconv.Quote(i.Path)
	case i.Alias != "":
		return i.Alias + " " + strconv.Quote(i.Path)
	default:
		return strconv.Quote(i.Path)
	}
}

// SyntaxTree is the structural view of one document.
type SyntaxTree interface {
	// Declarations returns every contract declaration in source order.
	Declarations() []Declaration

	// Imports returns every top-level import directive in source order.
	Imports() []Import
}

// SemanticModel is the resolved view of one document.
type SemanticModel interface {
	// ResolveDeclaredType returns the qualified name of the type a declaration declares.
	ResolveDeclaredType(decl Declaration) (string, error)

	// Diagnostics returns advisory messages the analysis produced for the document.
	Diagnostics() []Diagnostic
}

// DocumentAnalyzer is the parsing collaborator.
//
// Both calls may block on I/O or type checking. Implementations must be safe
// for concurrent use across distinct documents when prefetching is enabled.
type DocumentAnalyzer interface {
	SyntaxTree(ctx context.Context, doc Document) (SyntaxTree, error)
	SemanticModel(ctx context.Context, doc Document) (SemanticModel, error)
}

// Synthesizer folds one contract into the output unit and returns the new unit.
//
// The returned unit must be a new snapshot; the unit passed in stays valid and
// is reused unchanged when synthesis fails.
type Synthesizer[U any] interface {
	Synthesize(out U, decl Declaration, model SemanticModel, cfg Config) (U, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc[U any] func(out U, decl Declaration, model SemanticModel, cfg Config) (U, error)

// Synthesize implements Synthesizer.
func (f SynthesizerFunc[U]) Synthesize(out U, decl Declaration, model SemanticModel, cfg Config) (U, error) {
	return f(out, decl, model, cfg)
}
