// Command stubgen generates stub implementations for the interfaces of a Go project.
//
// stubgen loads every package matching a set of patterns, finds the interfaces
// that qualify under the configured policy and writes a single Go file holding
// one stub per interface:
//
//   - One struct per interface, named after it (StubStore for Store).
//   - One <Method>Func field per method; the method calls it when set and
//     returns zero values otherwise.
//   - A compile-time assertion that the stub implements the interface.
//
// There is no reflection and no runtime dependency. Generated files only
// import what they use.
//
// Commands
//
//	stubgen generate [patterns...]   write the stub file
//	stubgen list [patterns...]       show every interface and whether it is stubbed
//	stubgen init                     write a default stubgen.yaml
//
// Which interfaces are stubbed
//
//   - Exported interfaces always.
//   - Unexported interfaces only with stubs.stub_internal (or --internal).
//   - Interfaces declared inside functions never.
//   - Contracts listed in stubs.ignored_contracts (or --ignore) never. Names are
//     qualified by import path, e.g. example.com/app/store.Store.
//
// A contract that cannot be stubbed (a constraint interface, an interface with
// unexported methods in another package, a name collision) is reported and
// skipped; the rest of the file is still written. Use --strict to turn these
// reports into a failing exit code.
//
// Configuration (stubgen.yaml)
//
//	stubs:
//	  ignored_contracts: []
//	  stub_internal: false
//	output:
//	  file: stubs.gen.go        # relative to analysis.dir
//	  package: stubs
//	  import_path: ""           # inferred from go.mod when empty
//	  name_format: Stub%s
//	analysis:
//	  dir: .
//	  patterns: ["./..."]
//	  tests: false
//	  prefetch: 4               # documents analyzed ahead of the fold
//	  skip_broken_documents: false
//	logging:
//	  level: info
//	  format: console           # or json
//
// Every key can be overridden from the environment, e.g.
// STUBGEN_OUTPUT_PACKAGE=fakes.
//
// Typical go:generate usage
//
// Put this in any Go file of the output package:
//
//	//go:generate go run github.com/sghaida/stubgen/cmd/stubgen generate --dir ../.. --out internal/stubs/stubs.gen.go
//
// CI usage
//
//	stubgen generate --check
//
// exits 1 and prints a diff when the committed file is stale.
//
// Exit codes
//
//	0  success
//	1  generation failed, drift detected (--check) or contracts skipped (--strict)
//	2  invalid flags or configuration
package main
