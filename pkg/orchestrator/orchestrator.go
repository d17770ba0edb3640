// Package orchestrator routes requests to worker pipelines and assembles the
// response envelope.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/quarrydocs/quarry/pkg/core"
	"github.com/quarrydocs/quarry/pkg/taxonomy"
)

const timestampLayout = "2006-01-02T15:04:05.000Z"

// Workers bundles the typed pipelines the orchestrator delegates to. Every
// field must be non-nil.
type Workers struct {
	Retriever core.Retriever
	Validator core.Validator
	Taxonomy  core.TaxonomyManager
	Updater   core.Updater
	Crossref  core.CrossrefAnalyzer
}

// Orchestrator implements the four request pipelines.
type Orchestrator struct {
	workers Workers
	logger  *slog.Logger
}

// New creates an orchestrator over the given workers.
func New(workers Workers, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{workers: workers, logger: logger}
}

// Run dispatches one request and stamps the response metadata. Worker
// failures surface as errors; pipeline-level failures (validation, taxonomy)
// surface as failure responses.
func (o *Orchestrator) Run(ctx context.Context, req core.Request, rc *core.RunContext) (*core.Response, error) {
	start := time.Now()
	o.logger.Info("request started", "run_id", rc.RunID, "request_type", req.RequestType)

	var (
		resp *core.Response
		err  error
	)
	switch req.RequestType {
	case core.RequestQuery:
		resp, err = o.handleQuery(ctx, req, rc)
	case core.RequestUpdate:
		resp, err = o.handleUpdate(ctx, req, rc)
	case core.RequestValidate:
		resp, err = o.handleValidate(ctx, req, rc)
	case core.RequestAnalyze:
		resp, err = o.handleAnalyze(ctx, req, rc)
	default:
		err = fmt.Errorf("%w: %q", core.ErrUnknownRequestType, req.RequestType)
	}

	durationMS := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		o.logger.Error("request failed",
			"run_id", rc.RunID,
			"error", err,
			"duration_ms", durationMS,
		)
		return nil, err
	}

	resp.Metadata = core.Metadata{
		RunID:       rc.RunID,
		Timestamp:   time.Now().UTC().Format(timestampLayout),
		SAGsInvoked: rc.Invoked(),
		DurationMS:  durationMS,
	}

	o.logger.Info("request completed",
		"run_id", rc.RunID,
		"status", resp.Status,
		"response_type", resp.ResponseType,
		"duration_ms", durationMS,
	)
	return resp, nil
}

func (o *Orchestrator) handleQuery(ctx context.Context, req core.Request, rc *core.RunContext) (*core.Response, error) {
	var q core.QueryPayload
	if req.Query != nil {
		q = *req.Query
	}

	answer, err := o.workers.Retriever.Retrieve(ctx, q)
	if err != nil {
		return nil, err
	}
	rc.Record(core.WorkerRetriever)

	return &core.Response{
		ResponseType: core.ResponseAnswer,
		Status:       core.StatusSuccess,
		Answer:       answer,
	}, nil
}

func (o *Orchestrator) handleValidate(ctx context.Context, req core.Request, rc *core.RunContext) (*core.Response, error) {
	scope := req.Scope
	if scope == "" {
		scope = req.ValidationScope
	}
	if scope == "" {
		scope = "all"
	}

	report, err := o.workers.Validator.Validate(ctx, core.ValidationRequest{
		Scope:      scope,
		Content:    req.Content,
		TargetFile: req.TargetFile,
		Category:   req.Category,
	})
	if err != nil {
		return nil, err
	}
	rc.Record(core.WorkerValidator)

	status := core.StatusSuccess
	if !report.Passed {
		status = core.StatusFailure
	}
	return &core.Response{
		ResponseType:     core.ResponseValidationReport,
		Status:           status,
		ValidationReport: report,
	}, nil
}

// handleUpdate runs the three-stage update pipeline: content validation,
// taxonomy check, then the mutation itself. Deletes skip content validation
// because there is nothing left to lint.
func (o *Orchestrator) handleUpdate(ctx context.Context, req core.Request, rc *core.RunContext) (*core.Response, error) {
	if req.Update == nil {
		return nil, fmt.Errorf("update payload is required")
	}
	payload := *req.Update
	isDelete := payload.Operation == core.OpDelete

	if !isDelete {
		report, err := o.workers.Validator.Validate(ctx, core.ValidationRequest{
			Content:    payload.Content,
			TargetFile: payload.TargetFile,
		})
		if err != nil {
			return nil, err
		}
		rc.Record(core.WorkerValidator)

		if !report.Passed {
			return updateFailure(payload, false, map[string]any{
				"validation_errors": report.Errors,
			}), nil
		}
	}

	check, err := o.workers.Taxonomy.CheckTerms(ctx, payload.Content)
	if err != nil {
		return nil, err
	}
	rc.Record(core.WorkerTaxonomy)

	if !check.Passed {
		return updateFailure(payload, true, map[string]any{
			"taxonomy_issues": check.Issues,
		}), nil
	}

	result, err := o.workers.Updater.Apply(ctx, payload, rc.RunID)
	if err != nil {
		return nil, err
	}
	rc.Record(core.WorkerUpdater)
	result.ValidationPassed = true

	return &core.Response{
		ResponseType: core.ResponseUpdateResult,
		Status:       core.StatusSuccess,
		UpdateResult: result,
	}, nil
}

// updateFailure assembles a contract-compliant failure response for the
// update pipeline's short-circuit paths.
func updateFailure(payload core.UpdatePayload, validationPassed bool, data map[string]any) *core.Response {
	filesModified := []string{}
	if payload.TargetFile != "" {
		filesModified = []string{payload.TargetFile}
	}

	return &core.Response{
		ResponseType: core.ResponseUpdateResult,
		Status:       core.StatusFailure,
		UpdateResult: &core.UpdateResult{
			FilesModified:    filesModified,
			CommitSHA:        "",
			Branch:           payload.Branch,
			ValidationPassed: validationPassed,
		},
		Data: data,
	}
}

func (o *Orchestrator) handleAnalyze(ctx context.Context, req core.Request, rc *core.RunContext) (*core.Response, error) {
	analysisType := req.AnalysisType
	if analysisType == "" {
		analysisType = core.AnalysisFull
	}

	report := &core.AnalysisReport{
		Type:            analysisType,
		Findings:        []any{},
		Recommendations: []string{},
	}

	crossrefRequested := analysisType == core.AnalysisCrossref ||
		analysisType == core.AnalysisFull ||
		analysisType == core.AnalysisOrphans
	taxonomyRequested := analysisType == core.AnalysisTaxonomy ||
		analysisType == core.AnalysisFull

	if crossrefRequested {
		crossref, err := o.workers.Crossref.Analyze(ctx)
		if err != nil {
			return nil, err
		}
		rc.Record(core.WorkerCrossref)
		addCrossrefFindings(report, crossref, analysisType)
	}

	if taxonomyRequested {
		analysis, err := o.workers.Taxonomy.AnalyzeUsage(ctx)
		if err != nil {
			return nil, err
		}
		rc.Record(core.WorkerTaxonomy)
		addTaxonomyFindings(report, analysis)
	}

	return &core.Response{
		ResponseType:   core.ResponseAnalysisReport,
		Status:         core.StatusSuccess,
		AnalysisReport: report,
	}, nil
}

func addCrossrefFindings(report *core.AnalysisReport, crossref *core.CrossrefReport, analysisType string) {
	report.Findings = append(report.Findings, &core.CrossrefFinding{
		Agent:         core.WorkerCrossref,
		OrphanCount:   len(crossref.Orphans),
		SampleOrphans: head(crossref.Orphans, 5),
		CycleCount:    len(crossref.Cycles),
		SampleCycles:  headCycles(crossref.Cycles, 3),
	})

	if len(crossref.Orphans) > 0 {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Review %d orphan documents (e.g. %s).",
				len(crossref.Orphans), joinHead(crossref.Orphans, 3)))
	}
	// Orphan-only analysis keeps cycle counts in findings but does not
	// recommend acting on them.
	if len(crossref.Cycles) > 0 && analysisType != core.AnalysisOrphans {
		report.Recommendations = append(report.Recommendations,
			fmt.Sprintf("Resolve %d circular reference chains (first cycle starts at %s).",
				len(crossref.Cycles), crossref.Cycles[0][0]))
	}
}

func addTaxonomyFindings(report *core.AnalysisReport, analysis *core.TaxonomyAnalysis) {
	report.Findings = append(report.Findings, &core.TaxonomyFinding{
		Agent:         core.WorkerTaxonomy,
		UnusedTerms:   taxonomy.UnusedTerms(analysis.TermUsage, 5),
		FrequentTerms: taxonomy.TopTerms(analysis.TermUsage, 5),
	})
	report.Recommendations = append(report.Recommendations, analysis.Recommendations...)
}

func head(s []string, n int) []string {
	if len(s) > n {
		s = s[:n]
	}
	return append([]string{}, s...)
}

func headCycles(cycles [][]string, n int) [][]string {
	if len(cycles) > n {
		cycles = cycles[:n]
	}
	out := make([][]string, 0, len(cycles))
	for _, c := range cycles {
		out = append(out, append([]string{}, c...))
	}
	return out
}

func joinHead(s []string, n int) string {
	if len(s) > n {
		s = s[:n]
	}
	return strings.Join(s, ", ")
}
