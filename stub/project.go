package stub

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RunResult is the outcome of one project run.
type RunResult[U any] struct {
	// Output is the final output unit.
	Output U

	// Imports holds the imports of every processed document, first occurrence first.
	Imports *ImportSet

	// Diagnostics explains every skipped contract or document.
	Diagnostics []Diagnostic
}

// Option configures a Generator.
type Option func(*options)

type options struct {
	logger     *zap.Logger
	prefetch   int
	skipBroken bool
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPrefetch analyzes up to n documents concurrently ahead of the fold.
// Values below 2 keep the run sequential.
func WithPrefetch(n int) Option {
	return func(o *options) { o.prefetch = n }
}

// WithSkipBrokenDocuments controls what happens when a document cannot be analyzed.
//
// By default the run aborts with a *DocumentError. When skip is true the
// document is skipped and a warning diagnostic is recorded instead.
func WithSkipBrokenDocuments(skip bool) Option {
	return func(o *options) { o.skipBroken = skip }
}

// Generator stubs every eligible contract of a project into one output unit.
type Generator[U any] struct {
	analyzer DocumentAnalyzer
	synth    Synthesizer[U]
	cfg      Config
	opts     options
}

// NewGenerator returns a Generator using analyzer for parsing and synth for stub synthesis.
func NewGenerator[U any](analyzer DocumentAnalyzer, synth Synthesizer[U], cfg Config, opts ...Option) *Generator[U] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Generator[U]{
		analyzer: analyzer,
		synth:    synth,
		cfg:      cfg,
		opts:     o,
	}
}

// analysis is the parsing collaborator's output for one document.
type analysis struct {
	tree  SyntaxTree
	model SemanticModel
	err   error
}

// StubProject folds every document of project, in order, into initial.
//
// Per-contract failures are recorded in RunResult.Diagnostics. A document that
// cannot be analyzed aborts the run with a *DocumentError unless
// WithSkipBrokenDocuments was set. Cancelling ctx stops the run between documents.
func (g *Generator[U]) StubProject(ctx context.Context, project []Document, initial U) (RunResult[U], error) {
	next, err := g.analyses(ctx, project)
	if err != nil {
		return RunResult[U]{}, err
	}

	res := RunResult[U]{Output: initial, Imports: NewImportSet()}
	for i, doc := range project {
		if err := ctx.Err(); err != nil {
			return RunResult[U]{}, err
		}

		a := next(i)
		if a.err != nil {
			docErr := &DocumentError{Path: doc.Path, Err: a.err}
			if !g.opts.skipBroken {
				return RunResult[U]{}, docErr
			}
			g.opts.logger.Warn("skipping document", zap.String("document", doc.Path), zap.Error(a.err))
			res.Diagnostics = append(res.Diagnostics, Diagnostic{
				Severity: SeverityWarning,
				Document: doc.Path,
				Message:  "document skipped",
				Err:      docErr,
			})
			continue
		}

		res.Output = g.stubDocument(res.Output, doc, a, &res.Diagnostics)
		res.Imports.Merge(a.tree)
	}

	g.opts.logger.Debug("project stubbed",
		zap.Int("documents", len(project)),
		zap.Int("imports", res.Imports.Len()),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}

// stubDocument folds the eligible declarations of one document into out.
func (g *Generator[U]) stubDocument(out U, doc Document, a analysis, diags *[]Diagnostic) U {
	for _, decl := range a.tree.Declarations() {
		if !Eligible(decl, g.cfg) {
			continue
		}

		contract := decl.Name()
		next, err := isolate(out, func(cur U) (U, error) {
			name, err := a.model.ResolveDeclaredType(decl)
			if err != nil {
				return cur, err
			}
			contract = name

			if g.cfg.Ignored(name) {
				g.opts.logger.Debug("ignoring contract", zap.String("contract", name))
				return cur, nil
			}

			g.logDiagnostics(doc, a.model)
			return g.synth.Synthesize(cur, decl, a.model, g.cfg)
		})
		if err != nil {
			g.opts.logger.Error("could not generate stub",
				zap.String("document", doc.Path),
				zap.String("contract", contract),
				zap.Error(err))
			*diags = append(*diags, contractFailure(doc, contract, err))
			continue
		}
		out = next
	}
	return out
}

// logDiagnostics surfaces the semantic model's diagnostics as informational output.
func (g *Generator[U]) logDiagnostics(doc Document, model SemanticModel) {
	for _, d := range model.Diagnostics() {
		g.opts.logger.Info("semantic diagnostic",
			zap.String("document", doc.Path),
			zap.String("severity", d.Severity.String()),
			zap.String("message", d.Message))
	}
}

// analyses returns an accessor for the analysis of the i-th document.
//
// Without prefetch each document is analyzed when the fold reaches it. With
// prefetch all documents are analyzed up front, concurrently, each into its own
// slot, so the fold itself stays sequential.
func (g *Generator[U]) analyses(ctx context.Context, project []Document) (func(int) analysis, error) {
	if g.opts.prefetch < 2 || len(project) < 2 {
		return func(i int) analysis { return g.analyze(ctx, project[i]) }, nil
	}

	slots := make([]analysis, len(project))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(min(g.opts.prefetch, len(project)))
	for i, doc := range project {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slots[i] = g.analyze(gctx, doc)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	g.opts.logger.Debug("documents prefetched", zap.Int("documents", len(project)), zap.Int("workers", g.opts.prefetch))
	return func(i int) analysis { return slots[i] }, nil
}

func (g *Generator[U]) analyze(ctx context.Context, doc Document) analysis {
	tree, err := g.analyzer.SyntaxTree(ctx, doc)
	if err != nil {
		return analysis{err: err}
	}
	if tree == nil {
		return analysis{err: ErrNoSyntaxTree}
	}
	model, err := g.analyzer.SemanticModel(ctx, doc)
	if err != nil {
		return analysis{err: err}
	}
	if model == nil {
		return analysis{err: ErrNoSemanticModel}
	}
	return analysis{tree: tree, model: model}
}
