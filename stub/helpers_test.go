package stub

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
)

//
// -----------------------------------------------------------------------------
// Test doubles for the parsing collaborator
// -----------------------------------------------------------------------------

type fakeDecl struct {
	name string
	vis  Visibility
}

func (d fakeDecl) Name() string           { return d.name }
func (d fakeDecl) Visibility() Visibility { return d.vis }

func public(name string) fakeDecl   { return fakeDecl{name: name, vis: VisibilityPublic} }
func internal(name string) fakeDecl { return fakeDecl{name: name, vis: VisibilityInternal} }
func local(name string) fakeDecl    { return fakeDecl{name: name, vis: VisibilityOther} }

type fakeTree struct {
	decls   []Declaration
	imports []Import
}

func (t fakeTree) Declarations() []Declaration { return t.decls }
func (t fakeTree) Imports() []Import           { return t.imports }

// fakeModel qualifies every declaration with pkg unless it is listed in failing.
type fakeModel struct {
	pkg     string
	failing map[string]error
	diags   []Diagnostic
}

func (m fakeModel) ResolveDeclaredType(decl Declaration) (string, error) {
	if err, ok := m.failing[decl.Name()]; ok {
		return "", err
	}
	return m.pkg + "." + decl.Name(), nil
}

func (m fakeModel) Diagnostics() []Diagnostic { return m.diags }

// fakeDocument is everything the fake analyzer knows about one document.
type fakeDocument struct {
	tree     fakeTree
	model    fakeModel
	treeErr  error
	modelErr error
}

// fakeAnalyzer serves fixed trees and models. It is read-only after
// construction and therefore safe for concurrent use.
type fakeAnalyzer struct {
	docs  map[string]fakeDocument
	calls atomic.Int64
}

var errUnknownDocument = errors.New("unknown document")

func (a *fakeAnalyzer) SyntaxTree(_ context.Context, doc Document) (SyntaxTree, error) {
	a.calls.Add(1)
	d, ok := a.docs[doc.Path]
	if !ok {
		return nil, errUnknownDocument
	}
	if d.treeErr != nil {
		return nil, d.treeErr
	}
	return d.tree, nil
}

func (a *fakeAnalyzer) SemanticModel(_ context.Context, doc Document) (SemanticModel, error) {
	d, ok := a.docs[doc.Path]
	if !ok {
		return nil, errUnknownDocument
	}
	if d.modelErr != nil {
		return nil, d.modelErr
	}
	return d.model, nil
}

//
// -----------------------------------------------------------------------------
// Test double for the synthesis collaborator
// -----------------------------------------------------------------------------

// recordingSynth appends the declaration name to the unit and records every call.
// Names listed in fail return an error, names listed in panics panic.
type recordingSynth struct {
	calls  []string
	fail   map[string]error
	panics map[string]bool
}

func (s *recordingSynth) Synthesize(out []string, decl Declaration, _ SemanticModel, _ Config) ([]string, error) {
	s.calls = append(s.calls, decl.Name())
	if err, ok := s.fail[decl.Name()]; ok {
		return nil, err
	}
	if s.panics[decl.Name()] {
		panic("synthesizer exploded on " + decl.Name())
	}
	return append(slices.Clip(out), "Stub"+decl.Name()), nil
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

func docs(paths ...string) []Document {
	out := make([]Document, 0, len(paths))
	for _, p := range paths {
		out = append(out, Document{Path: p, Package: "example.com/app"})
	}
	return out
}

func imp(path string) Import       { return Import{Path: path} }
func staticImp(path string) Import { return Import{Path: path, Static: true} }

func decls(ds ...fakeDecl) []Declaration {
	out := make([]Declaration, 0, len(ds))
	for _, d := range ds {
		out = append(out, d)
	}
	return out
}
