// Package stub generates substitute implementations ("stubs") for every
// interface declared across a project.
//
// The package is the project-wide engine. It does not parse source code and it
// does not know how a single stub is written; both concerns are injected:
//
//   - DocumentAnalyzer yields a syntax tree and a semantic model per document.
//   - Synthesizer folds one contract declaration into the accumulating output.
//
// Generator drives the run as an explicit fold over the documents of a project:
//
//	gen := stub.NewGenerator[synth.File](project, synth.New(synth.Options{}), cfg,
//		stub.WithLogger(logger),
//		stub.WithPrefetch(4),
//	)
//	res, err := gen.StubProject(ctx, project.Documents(), synth.NewFile("stubs", ""))
//
// For each document the generator:
//
//   - filters declarations through the inclusion policy (Eligible),
//   - resolves each declaration's qualified name and drops ignored contracts,
//   - synthesizes the stub inside a failure isolator, so an error or panic for
//     one contract becomes a Diagnostic instead of aborting the run,
//   - merges the document's imports into one ordered, de-duplicated ImportSet.
//
// Documents are folded strictly in project order and declarations in source
// order, so the result is deterministic for a deterministic synthesizer, with
// or without prefetching.
package stub
