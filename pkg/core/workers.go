package core

import "context"

// Worker names as they appear in the sags_invoked log.
const (
	WorkerRetriever = "content-retriever-sag"
	WorkerValidator = "content-validator-sag"
	WorkerTaxonomy  = "taxonomy-manager-sag"
	WorkerUpdater   = "content-updater-sag"
	WorkerCrossref  = "crossref-analyzer-sag"
)

// The worker contracts below are the seams between the orchestrator and its
// collaborators. Each call is synchronous; a returned error is a fatal
// condition that propagates to the caller, while recoverable domain outcomes
// (a validation that did not pass, a question with no sources) are expressed
// in the result value.

// Retriever answers a question over the corpus. It never signals failure:
// absence of sources is a valid answer.
type Retriever interface {
	Retrieve(ctx context.Context, q QueryPayload) (*Answer, error)
}

// Validator lints Markdown content or a repository scope.
type Validator interface {
	Validate(ctx context.Context, req ValidationRequest) (*ValidationReport, error)
}

// TaxonomyManager checks content against the controlled vocabulary and
// analyzes term usage across the corpus.
type TaxonomyManager interface {
	CheckTerms(ctx context.Context, content string) (*TaxonomyCheck, error)
	AnalyzeUsage(ctx context.Context) (*TaxonomyAnalysis, error)
}

// Updater applies a content mutation and records it in version control.
// The run id seeds the working branch name.
type Updater interface {
	Apply(ctx context.Context, p UpdatePayload, runID string) (*UpdateResult, error)
}

// CrossrefAnalyzer builds the document link graph and derives orphan and
// cycle reports. The graph is rebuilt fresh on every call.
type CrossrefAnalyzer interface {
	Analyze(ctx context.Context) (*CrossrefReport, error)
}
