// Package core defines the domain model of the SSOT manager: the typed
// request/response envelope exchanged with callers and the contracts the
// orchestrator uses to delegate work.
package core

// Request types accepted by the orchestrator.
const (
	RequestQuery    = "query"
	RequestUpdate   = "update"
	RequestValidate = "validate"
	RequestAnalyze  = "analyze"
)

// Response types, one per pipeline.
const (
	ResponseAnswer           = "answer"
	ResponseUpdateResult     = "update_result"
	ResponseValidationReport = "validation_report"
	ResponseAnalysisReport   = "analysis_report"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Analysis types accepted by the analyze pipeline.
const (
	AnalysisCrossref = "crossref"
	AnalysisTaxonomy = "taxonomy"
	AnalysisOrphans  = "orphans"
	AnalysisFull     = "full"
)

// Update operations accepted by the update pipeline.
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Request is the discriminated union over request_type. Exactly one
// type-specific payload is meaningful per request; the flat scope fields
// belong to the validate and analyze variants.
type Request struct {
	RequestType     string         `json:"request_type"`
	Query           *QueryPayload  `json:"query,omitempty"`
	Update          *UpdatePayload `json:"update,omitempty"`
	Scope           string         `json:"scope,omitempty"`
	ValidationScope string         `json:"validation_scope,omitempty"`
	AnalysisType    string         `json:"analysis_type,omitempty"`
	Category        string         `json:"category,omitempty"`
	TargetFile      string         `json:"target_file,omitempty"`
	Content         string         `json:"content,omitempty"`
}

// QueryPayload carries a question against the corpus.
type QueryPayload struct {
	Category string `json:"category"`
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

// UpdatePayload describes a content mutation.
type UpdatePayload struct {
	TargetFile string `json:"target_file"`
	Operation  string `json:"operation"`
	Content    string `json:"content,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Branch     string `json:"branch,omitempty"`
}

// Response is the uniform envelope returned by every pipeline. The
// response_type tag determines which single payload field is set,
// independent of status.
type Response struct {
	ResponseType     string            `json:"response_type"`
	Status           string            `json:"status"`
	Answer           *Answer           `json:"answer,omitempty"`
	UpdateResult     *UpdateResult     `json:"update_result,omitempty"`
	ValidationReport *ValidationReport `json:"validation_report,omitempty"`
	AnalysisReport   *AnalysisReport   `json:"analysis_report,omitempty"`
	Data             map[string]any    `json:"data,omitempty"`
	Metadata         Metadata          `json:"metadata"`
}

// Metadata correlates a response with its run.
type Metadata struct {
	RunID       string   `json:"run_id"`
	Timestamp   string   `json:"timestamp"`
	SAGsInvoked []string `json:"sags_invoked"`
	DurationMS  float64  `json:"duration_ms"`
}

// Answer is the query pipeline payload.
type Answer struct {
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Sources    []Source `json:"sources"`
	Confidence float64  `json:"confidence"`
}

// Source is one ranked hit backing an answer.
type Source struct {
	File      string  `json:"file"`
	Section   string  `json:"section"`
	Content   string  `json:"content"`
	Relevance float64 `json:"relevance"`
}

// ValidationRequest is the validator's input. A non-empty Content switches
// the validator into content mode; otherwise Scope selects what part of the
// repository is walked.
type ValidationRequest struct {
	Scope      string `json:"scope,omitempty"`
	Content    string `json:"content,omitempty"`
	TargetFile string `json:"target_file,omitempty"`
	Category   string `json:"category,omitempty"`
}

// ValidationReport is the validator's result. Passed is true iff Errors is
// empty; warnings never fail a validation.
type ValidationReport struct {
	Passed     bool    `json:"passed"`
	Errors     []Issue `json:"errors"`
	Warnings   []Issue `json:"warnings"`
	TotalFiles int     `json:"total_files"`
}

// Issue is a single lint finding.
type Issue struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

// TaxonomyCheck is the taxonomy manager's validate-mode result.
type TaxonomyCheck struct {
	Operation string      `json:"operation"`
	Passed    bool        `json:"passed"`
	Issues    []TermIssue `json:"issues"`
}

// TermIssue flags a term outside the controlled vocabulary.
type TermIssue struct {
	Term        string   `json:"term"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

// TaxonomyAnalysis is the taxonomy manager's analyze-mode result.
type TaxonomyAnalysis struct {
	Operation       string         `json:"operation"`
	TermUsage       map[string]int `json:"term_usage"`
	Recommendations []string       `json:"recommendations"`
}

// UpdateResult is the updater's result and the update pipeline payload.
type UpdateResult struct {
	FilesModified    []string `json:"files_modified"`
	CommitSHA        string   `json:"commit_sha"`
	Branch           string   `json:"branch"`
	PRURL            string   `json:"pr_url,omitempty"`
	ValidationPassed bool     `json:"validation_passed"`
}

// CrossrefReport is the graph engine's result.
type CrossrefReport struct {
	ReferenceGraph map[string][]string `json:"reference_graph"`
	Orphans        []string            `json:"orphans"`
	Cycles         [][]string          `json:"cycles"`
	Statistics     GraphStats          `json:"statistics"`
}

// GraphStats summarizes one graph build.
type GraphStats struct {
	TotalFiles      int `json:"total_files"`
	TotalReferences int `json:"total_references"`
	OrphanCount     int `json:"orphan_count"`
}

// AnalysisReport is the analyze pipeline payload. Findings holds one entry
// per worker invoked: *CrossrefFinding or *TaxonomyFinding.
type AnalysisReport struct {
	Type            string   `json:"type"`
	Findings        []any    `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

// CrossrefFinding summarizes a graph-engine run inside an analysis report.
type CrossrefFinding struct {
	Agent         string     `json:"agent"`
	OrphanCount   int        `json:"orphan_count"`
	SampleOrphans []string   `json:"sample_orphans"`
	CycleCount    int        `json:"cycle_count"`
	SampleCycles  [][]string `json:"sample_cycles"`
}

// TaxonomyFinding summarizes a taxonomy analysis inside an analysis report.
type TaxonomyFinding struct {
	Agent         string      `json:"agent"`
	UnusedTerms   []string    `json:"unused_terms"`
	FrequentTerms []TermCount `json:"frequent_terms"`
}

// TermCount pairs a controlled term with its corpus occurrence count.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}
