package synth

import (
	"fmt"
	"slices"
	"strings"
	"text/template"

	goimports "golang.org/x/tools/imports"

	"github.com/sghaida/stubgen/stub"
)

// Header is the first line of every rendered file.
const Header = "// Code generated by stubgen; DO NOT EDIT."

// Render writes f as a complete Go file.
//
// The import block holds the bindings of f.Requires. Packages the source files
// imported come first, in the order of the run's ImportSet, followed by the
// remaining bindings in order. Source imports no stub refers to are left out,
// as are dot and blank imports and the output package itself. goimports then
// formats the result. filename is only used to resolve the package directory.
func Render(filename string, f File, imports *stub.ImportSet) ([]byte, error) {
	var ordered []Binding
	if imports != nil {
		for _, imp := range imports.Slice() {
			i := slices.IndexFunc(f.Requires, func(b Binding) bool { return b.Import.Path == imp.Path })
			if i >= 0 && !slices.Contains(ordered, f.Requires[i]) {
				ordered = append(ordered, f.Requires[i])
			}
		}
	}
	for _, b := range f.Requires {
		if !slices.Contains(ordered, b) {
			ordered = append(ordered, b)
		}
	}

	data := renderData{Header: Header, Package: f.Package, Stubs: f.Stubs}
	for _, b := range ordered {
		if b.Import.Static || b.Import.Alias == "_" || b.Import.Path == f.ImportPath {
			continue
		}
		data.Imports = append(data.Imports, b.Import.String())
	}

	var b strings.Builder
	if err := fileTpl.Execute(&b, data); err != nil {
		return nil, fmt.Errorf("synth: execute file template: %w", err)
	}

	out, err := goimports.Process(filename, []byte(b.String()), &goimports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("synth: format %s: %w", filename, err)
	}
	return out, nil
}

type renderData struct {
	Header  string
	Package string
	Imports []string
	Stubs   []Stub
}

var fileTpl = template.Must(
	template.New("file").Parse(`{{.Header}}

package {{.Package}}
{{- if .Imports}}

import (
{{- range .Imports}}
	{{.}}
{{- end}}
)
{{- end}}
{{range .Stubs}}
{{.Source}}
{{- end}}
`),
)
