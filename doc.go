// Package stubgen generates stub implementations for the interfaces of a Go project.
//
// A stub is a struct with one function field per interface method. Tests set
// the fields they care about and leave the rest nil, in which case the method
// returns zero values:
//
//	getter := &stubs.StubTransactionGetter{
//		GetTransactionFunc: func(ctx context.Context, id string) (*fraud.Transaction, error) {
//			return &fraud.Transaction{ID: id}, nil
//		},
//	}
//
// The repository is laid out as:
//   - stub: the project-wide engine (inclusion policy, failure isolation, import merging)
//   - stub/goproject: loads packages and exposes syntax trees and type information
//   - stub/synth: writes one stub per interface and renders the output file
//   - config: stubgen.yaml and STUBGEN_* environment handling
//   - cmd/stubgen: the command line tool
//   - examples/fraud: a small service tested with generated stubs
//
// The engine does not depend on Go source specifically: anything implementing
// stub.DocumentAnalyzer and stub.Synthesizer can be driven by stub.Generator.
package stubgen
