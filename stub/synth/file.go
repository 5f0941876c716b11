package synth

import (
	"slices"

	"github.com/sghaida/stubgen/stub"
)

// Stub is the generated source for one contract.
type Stub struct {
	// Name is the generated type name.
	Name string

	// Contract is the qualified name of the stubbed interface.
	Contract string

	// Source holds the type declaration, its methods and the conformance check.
	Source string
}

// Binding is an import of the generated file together with the name its stubs
// use for the package. Import.Alias is empty when Name is both the package's
// own name and the last element of its path.
type Binding struct {
	Name   string
	Import stub.Import
}

// File is the output unit: one Go file accumulating stubs.
//
// A File is a snapshot. With returns a new File and never changes the
// receiver, so a failed synthesis can keep using the previous value.
type File struct {
	// Package is the package clause of the generated file.
	Package string

	// ImportPath is the import path of the generated package. Types of that
	// package are written unqualified. Empty when unknown.
	ImportPath string

	Stubs []Stub

	// Requires lists every package the stubs refer to. Names are unique
	// within the file and each path is bound once.
	Requires []Binding
}

// NewFile returns an empty File for the given package.
func NewFile(pkg, importPath string) File {
	return File{Package: pkg, ImportPath: importPath}
}

// With returns a copy of f with s appended and requires added. A binding whose
// path or name is already bound is dropped.
func (f File) With(s Stub, requires ...Binding) File {
	next := f
	next.Stubs = append(slices.Clip(f.Stubs), s)
	next.Requires = slices.Clip(f.Requires)
	for _, r := range requires {
		if _, ok := next.Bound(r.Import.Path); ok || next.nameTaken(r.Name) {
			continue
		}
		next.Requires = append(next.Requires, r)
	}
	return next
}

// Has reports whether a stub with the given type name exists.
func (f File) Has(name string) bool {
	return slices.ContainsFunc(f.Stubs, func(s Stub) bool { return s.Name == name })
}

// Bound returns the name the file uses for the package at path.
func (f File) Bound(path string) (string, bool) {
	i := slices.IndexFunc(f.Requires, func(b Binding) bool { return b.Import.Path == path })
	if i < 0 {
		return "", false
	}
	return f.Requires[i].Name, true
}

// nameTaken reports whether name is bound to a package or declared by a stub.
func (f File) nameTaken(name string) bool {
	return slices.ContainsFunc(f.Requires, func(b Binding) bool { return b.Name == name }) || f.Has(name)
}
