package goproject

import (
	"errors"
	"go/types"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/sghaida/stubgen/stub"
)

// ErrForeignDeclaration is returned when a declaration did not come from a Tree.
var ErrForeignDeclaration = errors.New("goproject: declaration is not a goproject.Contract")

// UnresolvedError is returned when the type checker has no object for a declaration.
type UnresolvedError struct{ Name string }

// Error implements the error interface.
func (e UnresolvedError) Error() string {
	// Example: goproject: no type information for "Store"
	return "goproject: no type information for " + strconv.Quote(e.Name)
}

// Model is the semantic model of one Go file: its package's type information
// plus the file's own imports.
type Model struct {
	pkg  *packages.Package
	tree *Tree
	path string
}

// Imports returns the imports of the file, in source order.
func (m *Model) Imports() []stub.Import { return m.tree.Imports() }

// Lookup returns the type object a declaration defines.
func (m *Model) Lookup(decl stub.Declaration) (*types.TypeName, error) {
	c, ok := decl.(Contract)
	if !ok {
		return nil, ErrForeignDeclaration
	}
	if m.pkg.TypesInfo == nil {
		return nil, UnresolvedError{Name: c.Name()}
	}
	tn, ok := m.pkg.TypesInfo.Defs[c.Spec.Name].(*types.TypeName)
	if !ok || tn.Pkg() == nil {
		return nil, UnresolvedError{Name: c.Name()}
	}
	return tn, nil
}

// ResolveDeclaredType implements stub.SemanticModel. The name has the form
// "<import path>.<type name>".
func (m *Model) ResolveDeclaredType(decl stub.Declaration) (string, error) {
	tn, err := m.Lookup(decl)
	if err != nil {
		return "", err
	}
	return tn.Pkg().Path() + "." + tn.Name(), nil
}

// Diagnostics implements stub.SemanticModel. It reports the package errors
// located in this file.
func (m *Model) Diagnostics() []stub.Diagnostic {
	var out []stub.Diagnostic
	prefix := m.path + ":"
	for _, e := range m.pkg.Errors {
		if !strings.HasPrefix(e.Pos, prefix) {
			continue
		}
		out = append(out, stub.Diagnostic{
			Severity: stub.SeverityInfo,
			Document: m.path,
			Message:  e.Pos + ": " + e.Msg,
		})
	}
	return out
}
