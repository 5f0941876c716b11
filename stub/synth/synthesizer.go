// Package synth writes Go stubs for interfaces and renders them into one file.
//
// A stub for
//
//	type Store interface {
//		Get(ctx context.Context, id string) (*Item, error)
//	}
//
// is a struct with one function field per method. A method whose field is nil
// returns zero values:
//
//	type StubStore struct {
//		GetFunc func(p0 context.Context, p1 string) (*store.Item, error)
//	}
//
//	func (s *StubStore) Get(p0 context.Context, p1 string) (r0 *store.Item, r1 error) {
//		if s.GetFunc == nil {
//			return
//		}
//		return s.GetFunc(p0, p1)
//	}
//
//	var _ store.Store = (*StubStore)(nil)
package synth

import (
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"path"
	"slices"
	"strconv"
	"strings"
	"text/template"

	"github.com/sghaida/stubgen/stub"
	"github.com/sghaida/stubgen/stub/goproject"
)

// DefaultNameFormat turns an interface name into its stub name.
const DefaultNameFormat = "Stub%s"

var (
	// ErrUnsupportedDeclaration is returned for declarations not produced by goproject.
	ErrUnsupportedDeclaration = errors.New("synth: declaration is not a Go interface declaration")

	// ErrUnsupportedModel is returned for semantic models not produced by goproject.
	ErrUnsupportedModel = errors.New("synth: semantic model is not a goproject model")

	// ErrNotInterface is returned when the declared type is not an interface.
	ErrNotInterface = errors.New("synth: declared type is not an interface")

	// ErrConstraintInterface is returned for interfaces with type sets, which
	// only constrain type parameters and have no implementations.
	ErrConstraintInterface = errors.New("synth: constraint interfaces cannot be stubbed")
)

// DuplicateStubError is returned when the file already holds a stub with the same name.
type DuplicateStubError struct{ Name string }

// Error implements the error interface.
func (e DuplicateStubError) Error() string {
	// Example: synth: duplicate stub "StubStore"
	return "synth: duplicate stub " + strconv.Quote(e.Name)
}

// UnexportedMethodError is returned when an interface of another package has an
// unexported method, which no type outside that package can implement.
type UnexportedMethodError struct {
	Contract string
	Method   string
}

// Error implements the error interface.
func (e UnexportedMethodError) Error() string {
	return "synth: " + e.Contract + " has unexported method " + strconv.Quote(e.Method) + " and is declared in another package"
}

// UnexportedContractError is returned when an unexported interface is declared
// in a package other than the output package.
type UnexportedContractError struct{ Contract string }

// Error implements the error interface.
func (e UnexportedContractError) Error() string {
	// Example: synth: "example.com/app/store.cache" is unexported and declared in another package
	return "synth: " + strconv.Quote(e.Contract) + " is unexported and declared in another package"
}

// FieldCollisionError is returned when a method name equals the function field of another method.
type FieldCollisionError struct{ Field string }

// Error implements the error interface.
func (e FieldCollisionError) Error() string {
	return "synth: method " + strconv.Quote(e.Field) + " collides with a generated field"
}

// Options configures a Synthesizer.
type Options struct {
	// NameFormat is a fmt format with one %s verb for the interface name.
	// DefaultNameFormat when empty.
	NameFormat string
}

// Synthesizer implements stub.Synthesizer for File.
type Synthesizer struct {
	nameFormat string
}

// New returns a Synthesizer.
func New(opts Options) *Synthesizer {
	nameFormat := opts.NameFormat
	if nameFormat == "" {
		nameFormat = DefaultNameFormat
	}
	return &Synthesizer{nameFormat: nameFormat}
}

// Synthesize implements stub.Synthesizer. On error out is returned unchanged.
func (s *Synthesizer) Synthesize(out File, decl stub.Declaration, model stub.SemanticModel, _ stub.Config) (File, error) {
	contract, ok := decl.(goproject.Contract)
	if !ok {
		return out, ErrUnsupportedDeclaration
	}
	m, ok := model.(*goproject.Model)
	if !ok {
		return out, ErrUnsupportedModel
	}

	tn, err := m.Lookup(contract)
	if err != nil {
		return out, err
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return out, ErrNotInterface
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return out, ErrNotInterface
	}
	if !iface.IsMethodSet() {
		return out, ErrConstraintInterface
	}

	name := fmt.Sprintf(s.nameFormat, tn.Name())
	if out.nameTaken(name) {
		return out, DuplicateStubError{Name: name}
	}

	q := newQualifier(out, name, m.Imports())
	data, err := buildStubData(name, named, iface, q)
	if err != nil {
		return out, err
	}

	var b strings.Builder
	if err := stubTpl.Execute(&b, data); err != nil {
		return out, fmt.Errorf("synth: execute template for %s: %w", name, err)
	}
	src, err := format.Source([]byte(b.String()))
	if err != nil {
		return out, fmt.Errorf("synth: format stub %s: %w", name, err)
	}

	return out.With(Stub{
		Name:     name,
		Contract: tn.Pkg().Path() + "." + tn.Name(),
		Source:   string(src),
	}, q.requires...), nil
}

// qualifier names packages for one stub. A package the file already binds
// keeps its name. A new package takes the source file's alias or its own name,
// with a number appended while that name is taken.
type qualifier struct {
	file     File
	stubName string
	aliases  map[string]string
	requires []Binding
}

func newQualifier(file File, stubName string, imports []stub.Import) *qualifier {
	q := &qualifier{file: file, stubName: stubName, aliases: make(map[string]string)}
	for _, imp := range imports {
		if imp.Static || imp.Alias == "_" {
			continue
		}
		if _, ok := q.aliases[imp.Path]; !ok {
			q.aliases[imp.Path] = imp.Alias
		}
	}
	return q
}

func (q *qualifier) qualify(p *types.Package) string {
	if p.Path() == q.file.ImportPath {
		return ""
	}
	if name, ok := q.file.Bound(p.Path()); ok {
		return name
	}
	if i := slices.IndexFunc(q.requires, func(b Binding) bool { return b.Import.Path == p.Path() }); i >= 0 {
		return q.requires[i].Name
	}

	base := p.Name()
	if alias := q.aliases[p.Path()]; alias != "" {
		base = alias
	}
	name := base
	for i := 2; q.taken(name); i++ {
		name = base + strconv.Itoa(i)
	}

	b := Binding{Name: name, Import: stub.Import{Path: p.Path()}}
	if name != p.Name() || path.Base(p.Path()) != name {
		b.Import.Alias = name
	}
	q.requires = append(q.requires, b)
	return name
}

// taken reports whether name is unavailable for a package in the file.
// Receiver, parameter and result names would shadow it inside methods.
func (q *qualifier) taken(name string) bool {
	if name == q.stubName || name == "s" || isGeneratedVar(name) || q.file.nameTaken(name) {
		return true
	}
	return slices.ContainsFunc(q.requires, func(b Binding) bool { return b.Name == name })
}

// isGeneratedVar matches p0, p1, ... and r0, r1, ...
func isGeneratedVar(name string) bool {
	if len(name) < 2 || (name[0] != 'p' && name[0] != 'r') {
		return false
	}
	_, err := strconv.Atoi(name[1:])
	return err == nil
}

func (q *qualifier) typeString(t types.Type) string {
	return types.TypeString(t, q.qualify)
}

type stubData struct {
	Name       string
	Contract   string
	TypeParams string
	TypeArgs   string
	Assert     bool
	Methods    []methodData
}

type methodData struct {
	Name         string
	Field        string
	Params       string
	Args         string
	FuncResults  string
	NamedResults string
	HasResults   bool
}

func buildStubData(name string, named *types.Named, iface *types.Interface, q *qualifier) (stubData, error) {
	obj := named.Obj()
	local := obj.Pkg().Path() == q.file.ImportPath
	if !obj.Exported() && !local {
		return stubData{}, UnexportedContractError{Contract: obj.Pkg().Path() + "." + obj.Name()}
	}

	data := stubData{Name: name}
	if prefix := q.qualify(obj.Pkg()); prefix != "" {
		data.Contract = prefix + "." + obj.Name()
	} else {
		data.Contract = obj.Name()
	}

	if tparams := named.TypeParams(); tparams.Len() > 0 {
		decls := make([]string, 0, tparams.Len())
		args := make([]string, 0, tparams.Len())
		for i := range tparams.Len() {
			tp := tparams.At(i)
			decls = append(decls, tp.Obj().Name()+" "+q.typeString(tp.Constraint()))
			args = append(args, tp.Obj().Name())
		}
		data.TypeParams = "[" + strings.Join(decls, ", ") + "]"
		data.TypeArgs = "[" + strings.Join(args, ", ") + "]"
	} else {
		data.Assert = true
	}

	fields := make(map[string]bool, iface.NumMethods())
	for i := range iface.NumMethods() {
		fields[iface.Method(i).Name()+"Func"] = true
	}

	for i := range iface.NumMethods() {
		fn := iface.Method(i)
		if !fn.Exported() && !local {
			return stubData{}, UnexportedMethodError{Contract: data.Contract, Method: fn.Name()}
		}
		if fields[fn.Name()] {
			return stubData{}, FieldCollisionError{Field: fn.Name()}
		}
		data.Methods = append(data.Methods, buildMethodData(fn, q))
	}
	return data, nil
}

func buildMethodData(fn *types.Func, q *qualifier) methodData {
	sig := fn.Type().(*types.Signature)
	md := methodData{Name: fn.Name(), Field: fn.Name() + "Func"}

	params := sig.Params()
	paramDecls := make([]string, 0, params.Len())
	args := make([]string, 0, params.Len())
	for i := range params.Len() {
		pname := "p" + strconv.Itoa(i)
		typ := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			elem := typ.(*types.Slice).Elem()
			paramDecls = append(paramDecls, pname+" ..."+q.typeString(elem))
			args = append(args, pname+"...")
			continue
		}
		paramDecls = append(paramDecls, pname+" "+q.typeString(typ))
		args = append(args, pname)
	}
	md.Params = strings.Join(paramDecls, ", ")
	md.Args = strings.Join(args, ", ")

	results := sig.Results()
	if results.Len() == 0 {
		return md
	}
	md.HasResults = true
	resultTypes := make([]string, 0, results.Len())
	namedResults := make([]string, 0, results.Len())
	for i := range results.Len() {
		ts := q.typeString(results.At(i).Type())
		resultTypes = append(resultTypes, ts)
		namedResults = append(namedResults, "r"+strconv.Itoa(i)+" "+ts)
	}
	if len(resultTypes) == 1 {
		md.FuncResults = " " + resultTypes[0]
	} else {
		md.FuncResults = " (" + strings.Join(resultTypes, ", ") + ")"
	}
	md.NamedResults = " (" + strings.Join(namedResults, ", ") + ")"
	return md
}

// stubTpl renders one stub. The output is a declaration list, formatted with
// go/format before it is stored.
var stubTpl = template.Must(
	template.New("stub").Parse(`// {{.Name}} is a stub implementation of {{.Contract}}.
type {{.Name}}{{.TypeParams}} struct {
{{- range .Methods}}
	{{.Field}} func({{.Params}}){{.FuncResults}}
{{- end}}
}
{{range .Methods}}
func (s *{{$.Name}}{{$.TypeArgs}}) {{.Name}}({{.Params}}){{.NamedResults}} {
{{- if .HasResults}}
	if s.{{.Field}} == nil {
		return
	}
	return s.{{.Field}}({{.Args}})
{{- else}}
	if s.{{.Field}} != nil {
		s.{{.Field}}({{.Args}})
	}
{{- end}}
}
{{end}}
{{- if .Assert}}
var _ {{.Contract}} = (*{{.Name}})(nil)
{{- end}}
`),
)
